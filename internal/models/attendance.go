package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent      AttendanceStatus = "Present"
	AttendanceStatusAbsent       AttendanceStatus = "Absent"
	AttendanceStatusWorkFromHome AttendanceStatus = "Work From Home"
	AttendanceStatusLeave        AttendanceStatus = "Leave"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusWorkFromHome, AttendanceStatusLeave:
		return true
	default:
		return false
	}
}

// ValidForIntern restricts interns to the Present/Absent pair.
func (s AttendanceStatus) ValidForIntern() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusAbsent
}

// AttendanceEntry is one dated ledger record. At most one entry exists per
// (person kind, person id, calendar day); writes are upsert-by-date.
type AttendanceEntry struct {
	ID               string           `db:"id" json:"id"`
	PersonKind       PersonKind       `db:"person_kind" json:"-"`
	PersonID         string           `db:"person_id" json:"person_id"`
	Date             time.Time        `db:"date" json:"date"`
	Status           AttendanceStatus `db:"status" json:"status"`
	LoginTime        *time.Time       `db:"login_time" json:"login_time,omitempty"`
	LogoutTime       *time.Time       `db:"logout_time" json:"logout_time,omitempty"`
	WorkingHours     *float64         `db:"working_hours" json:"working_hours,omitempty"`
	NotificationSent bool             `db:"notification_sent" json:"notification_sent"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// TeacherRollup is the per-date present/absent roll-up stored against the
// batch's teacher after a bulk intern mark.
type TeacherRollup struct {
	ID           string    `db:"id" json:"id"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id"`
	Date         time.Time `db:"date" json:"date"`
	PresentCount int       `db:"present_count" json:"present_count"`
	AbsentCount  int       `db:"absent_count" json:"absent_count"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ReportPeriod selects the aggregation window for range reports.
type ReportPeriod string

const (
	PeriodDaily   ReportPeriod = "daily"
	PeriodWeekly  ReportPeriod = "weekly"
	PeriodMonthly ReportPeriod = "monthly"
)

// Valid returns true when the period is a supported value.
func (p ReportPeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	default:
		return false
	}
}

// PersonAttendanceRow projects one person's ledger over a date range: every
// calendar date in range maps to a status, or null for days without a record.
type PersonAttendanceRow struct {
	ID         string                       `json:"id"`
	Identifier string                       `json:"identifier,omitempty"`
	Name       string                       `json:"name"`
	Email      string                       `json:"email"`
	Attendance map[string]*AttendanceStatus `json:"attendance"`
}

// RangeSummary aggregates totals per status across all people and dates in
// the window.
type RangeSummary struct {
	TotalPeople       int          `json:"total_people"`
	TotalPresent      int          `json:"total_present"`
	TotalAbsent       int          `json:"total_absent"`
	TotalWorkFromHome int          `json:"total_work_from_home"`
	TotalLeave        int          `json:"total_leave"`
	Period            ReportPeriod `json:"period"`
	StartDate         time.Time    `json:"start_date"`
	EndDate           time.Time    `json:"end_date"`
	Dates             []string     `json:"dates"`
}

// RangeReport is the full read-side aggregation response.
type RangeReport struct {
	Rows    []PersonAttendanceRow `json:"attendance"`
	Summary RangeSummary          `json:"summary"`
}

// BatchDayStatus is one roster member's status for a given date, with
// "Not Marked" for missing records.
type BatchDayStatus struct {
	InternID string `json:"intern_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Status   string `json:"status"`
}
