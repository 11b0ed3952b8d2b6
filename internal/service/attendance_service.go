package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/workbridge/ims-api/internal/models"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
	"github.com/workbridge/ims-api/pkg/export"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, entry *models.AttendanceEntry) error
	FindForDate(ctx context.Context, kind models.PersonKind, personID string, date time.Time) (*models.AttendanceEntry, error)
	ListForPerson(ctx context.Context, kind models.PersonKind, personID string) ([]models.AttendanceEntry, error)
	ListInRange(ctx context.Context, kind models.PersonKind, from, to time.Time) ([]models.AttendanceEntry, error)
	ClearForPerson(ctx context.Context, kind models.PersonKind, personID string) (int64, error)
	ClearKind(ctx context.Context, kind models.PersonKind) (int64, error)
}

type attendanceInternRepository interface {
	List(ctx context.Context) ([]models.Intern, error)
	ListByBatch(ctx context.Context, batchID string) ([]models.Intern, error)
}

type attendanceEmployeeRepository interface {
	List(ctx context.Context) ([]models.Employee, error)
}

type attendanceBatchRepository interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
}

type attendanceRollupRepository interface {
	UpsertRollup(ctx context.Context, rollup *models.TeacherRollup) error
}

// MarkRequest sets one person's status for one date.
type MarkRequest struct {
	Date   time.Time               `json:"date" validate:"required"`
	Status models.AttendanceStatus `json:"status" validate:"required"`
}

// BulkMark is one line of a bulk attendance request. Employee marks with a
// working status must carry both clock times.
type BulkMark struct {
	PersonID   string                  `json:"person_id" validate:"required"`
	Status     models.AttendanceStatus `json:"status" validate:"required"`
	LoginTime  *time.Time              `json:"login_time,omitempty"`
	LogoutTime *time.Time              `json:"logout_time,omitempty"`
}

// NotificationTask describes an absence alert owed after a bulk mark. The
// dispatcher consumes these outside the attendance write path.
type NotificationTask struct {
	EntryID  string
	Kind     models.PersonKind
	PersonID string
	Name     string
	Email    string
	Mobile   string
	Date     time.Time
}

// AttendanceService owns the per-person per-date ledger: single marks,
// employee clock-in/out, bulk marks with teacher roll-ups, and range
// aggregation reports.
type AttendanceService struct {
	repo      attendanceRepository
	interns   attendanceInternRepository
	employees attendanceEmployeeRepository
	batches   attendanceBatchRepository
	rollups   attendanceRollupRepository
	cache     *redis.Client
	exporter  *export.PDFExporter
	location  *time.Location
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service. The cache client
// may be nil, which disables report caching.
func NewAttendanceService(repo attendanceRepository, interns attendanceInternRepository, employees attendanceEmployeeRepository, batches attendanceBatchRepository, rollups attendanceRollupRepository, cache *redis.Client, location *time.Location, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &AttendanceService{
		repo:      repo,
		interns:   interns,
		employees: employees,
		batches:   batches,
		rollups:   rollups,
		cache:     cache,
		exporter:  export.NewPDFExporter(),
		location:  location,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
	}
}

// dateOnly truncates a timestamp to midnight UTC of its calendar day in the
// reference timezone. All ledger dates are stored this way.
func (s *AttendanceService) dateOnly(t time.Time) time.Time {
	local := t.In(s.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Mark writes one person's status for one date, replacing any earlier entry
// for that day.
func (s *AttendanceService) Mark(ctx context.Context, kind models.PersonKind, personID string, req MarkRequest) (*models.AttendanceEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid attendance status")
	}
	if kind == models.KindIntern && !req.Status.ValidForIntern() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "interns can only be marked Present or Absent")
	}
	entry := &models.AttendanceEntry{
		PersonKind: kind,
		PersonID:   personID,
		Date:       s.dateOnly(req.Date),
		Status:     req.Status,
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write attendance")
	}
	s.invalidateReports(ctx, kind)
	return entry, nil
}

// ClockIn opens an employee's working day. A second clock-in the same day is
// rejected, as is clocking in on a day already marked Absent.
func (s *AttendanceService) ClockIn(ctx context.Context, employeeID string, at time.Time) (*models.AttendanceEntry, error) {
	date := s.dateOnly(at)
	existing, err := s.repo.FindForDate(ctx, models.KindEmployee, employeeID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	if existing != nil {
		if existing.LoginTime != nil {
			return nil, appErrors.ErrAlreadyClockedIn
		}
		if existing.Status == models.AttendanceStatusAbsent {
			return nil, appErrors.ErrDayClosed
		}
	}
	login := at.UTC()
	entry := &models.AttendanceEntry{
		PersonKind: models.KindEmployee,
		PersonID:   employeeID,
		Date:       date,
		Status:     models.AttendanceStatusPresent,
		LoginTime:  &login,
	}
	if existing != nil {
		entry.ID = existing.ID
		entry.Status = existing.Status
		entry.CreatedAt = existing.CreatedAt
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write attendance")
	}
	s.invalidateReports(ctx, models.KindEmployee)
	return entry, nil
}

// ClockOut closes an employee's working day and computes worked hours
// rounded to two decimals. The entry is left untouched when the interval is
// invalid.
func (s *AttendanceService) ClockOut(ctx context.Context, employeeID string, at time.Time) (*models.AttendanceEntry, error) {
	date := s.dateOnly(at)
	existing, err := s.repo.FindForDate(ctx, models.KindEmployee, employeeID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	if existing == nil || existing.LoginTime == nil {
		return nil, appErrors.ErrNoClockIn
	}
	if existing.Status != models.AttendanceStatusPresent && existing.Status != models.AttendanceStatusWorkFromHome {
		return nil, appErrors.ErrStatusMismatch
	}
	if existing.LogoutTime != nil {
		return nil, appErrors.ErrAlreadyClockedOut
	}
	logout := at.UTC()
	if !logout.After(*existing.LoginTime) {
		return nil, appErrors.ErrInvalidInterval
	}
	hours := math.Round(logout.Sub(*existing.LoginTime).Hours()*100) / 100
	existing.LogoutTime = &logout
	existing.WorkingHours = &hours
	if err := s.repo.Upsert(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write attendance")
	}
	s.invalidateReports(ctx, models.KindEmployee)
	return existing, nil
}

// Ledger returns a person's full attendance history, newest first.
func (s *AttendanceService) Ledger(ctx context.Context, kind models.PersonKind, personID string) ([]models.AttendanceEntry, error) {
	entries, err := s.repo.ListForPerson(ctx, kind, personID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return entries, nil
}

// ClearLedger wipes one person's attendance history and returns the number
// of entries removed.
func (s *AttendanceService) ClearLedger(ctx context.Context, kind models.PersonKind, personID string) (int64, error) {
	removed, err := s.repo.ClearForPerson(ctx, kind, personID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear attendance")
	}
	if removed > 0 {
		s.invalidateReports(ctx, kind)
	}
	return removed, nil
}

// ClearAll wipes every ledger entry of one person kind.
func (s *AttendanceService) ClearAll(ctx context.Context, kind models.PersonKind) (int64, error) {
	removed, err := s.repo.ClearKind(ctx, kind)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear attendance")
	}
	if removed > 0 {
		s.invalidateReports(ctx, kind)
	}
	return removed, nil
}

// BulkMarkInterns writes a batch roster's marks for one date, rolls up the
// counters onto the batch's teacher, and returns the absence alerts owed.
func (s *AttendanceService) BulkMarkInterns(ctx context.Context, batchID string, date time.Time, marks []BulkMark) (*models.BulkMarkResult, []NotificationTask, error) {
	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
	}
	roster, err := s.interns.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batch interns")
	}
	rosterByID := make(map[string]models.Intern, len(roster))
	for _, intern := range roster {
		rosterByID[intern.ID] = intern
	}

	day := s.dateOnly(date)
	result := &models.BulkMarkResult{}
	var tasks []NotificationTask
	for _, mark := range marks {
		intern, onRoster := rosterByID[mark.PersonID]
		if !onRoster {
			result.Results = append(result.Results, models.EntryOutcome{PersonID: mark.PersonID, Message: "not on batch roster"})
			continue
		}
		if !mark.Status.ValidForIntern() {
			result.Results = append(result.Results, models.EntryOutcome{PersonID: mark.PersonID, Message: "invalid status"})
			continue
		}
		existing, err := s.repo.FindForDate(ctx, models.KindIntern, mark.PersonID, day)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
		}
		entry := &models.AttendanceEntry{
			PersonKind: models.KindIntern,
			PersonID:   mark.PersonID,
			Date:       day,
			Status:     mark.Status,
		}
		if existing != nil {
			entry.ID = existing.ID
			entry.CreatedAt = existing.CreatedAt
			entry.NotificationSent = existing.NotificationSent
		}
		if err := s.repo.Upsert(ctx, entry); err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write attendance")
		}
		switch mark.Status {
		case models.AttendanceStatusPresent:
			result.Summary.PresentCount++
		case models.AttendanceStatusAbsent:
			result.Summary.AbsentCount++
			if !entry.NotificationSent {
				tasks = append(tasks, NotificationTask{
					EntryID:  entry.ID,
					Kind:     models.KindIntern,
					PersonID: intern.ID,
					Name:     intern.Name,
					Email:    intern.Email,
					Date:     day,
				})
			}
		}
		result.Results = append(result.Results, models.EntryOutcome{PersonID: mark.PersonID, Message: "marked " + string(mark.Status)})
		result.Summary.Total++
	}

	if batch.TeacherID != nil {
		rollup := &models.TeacherRollup{
			TeacherID:    *batch.TeacherID,
			Date:         day,
			PresentCount: result.Summary.PresentCount,
			AbsentCount:  result.Summary.AbsentCount,
		}
		if err := s.rollups.UpsertRollup(ctx, rollup); err != nil {
			s.logger.Warn("teacher roll-up write failed", zap.String("batch_id", batchID), zap.Error(err))
		}
	}
	s.invalidateReports(ctx, models.KindIntern)
	return result, tasks, nil
}

// BulkMarkEmployees writes marks for a set of employees on one date and
// returns the absence alerts owed.
func (s *AttendanceService) BulkMarkEmployees(ctx context.Context, date time.Time, marks []BulkMark) (*models.BulkMarkResult, []NotificationTask, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	byID := make(map[string]models.Employee, len(employees))
	for _, employee := range employees {
		byID[employee.ID] = employee
	}

	day := s.dateOnly(date)
	result := &models.BulkMarkResult{}
	var tasks []NotificationTask
	for _, mark := range marks {
		employee, known := byID[mark.PersonID]
		if !known {
			result.Results = append(result.Results, models.EntryOutcome{PersonID: mark.PersonID, Message: "unknown employee"})
			continue
		}
		if !mark.Status.Valid() {
			result.Results = append(result.Results, models.EntryOutcome{PersonID: mark.PersonID, Message: "invalid status"})
			continue
		}
		working := mark.Status == models.AttendanceStatusPresent || mark.Status == models.AttendanceStatusWorkFromHome
		if working {
			if mark.LoginTime == nil || mark.LogoutTime == nil {
				result.Results = append(result.Results, models.EntryOutcome{PersonID: mark.PersonID, Message: "login and logout times are required"})
				continue
			}
			if !mark.LogoutTime.After(*mark.LoginTime) {
				result.Results = append(result.Results, models.EntryOutcome{PersonID: mark.PersonID, Message: "logout must follow login"})
				continue
			}
		}
		existing, err := s.repo.FindForDate(ctx, models.KindEmployee, mark.PersonID, day)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
		}
		entry := &models.AttendanceEntry{
			PersonKind: models.KindEmployee,
			PersonID:   mark.PersonID,
			Date:       day,
			Status:     mark.Status,
		}
		if existing != nil {
			entry.ID = existing.ID
			entry.CreatedAt = existing.CreatedAt
			entry.NotificationSent = existing.NotificationSent
			entry.LoginTime = existing.LoginTime
			entry.LogoutTime = existing.LogoutTime
			entry.WorkingHours = existing.WorkingHours
		}
		if working {
			login := mark.LoginTime.UTC()
			logout := mark.LogoutTime.UTC()
			hours := math.Round(logout.Sub(login).Hours()*100) / 100
			entry.LoginTime = &login
			entry.LogoutTime = &logout
			entry.WorkingHours = &hours
		}
		if err := s.repo.Upsert(ctx, entry); err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write attendance")
		}
		switch mark.Status {
		case models.AttendanceStatusPresent:
			result.Summary.PresentCount++
		case models.AttendanceStatusAbsent:
			result.Summary.AbsentCount++
			if !entry.NotificationSent {
				tasks = append(tasks, NotificationTask{
					EntryID:  entry.ID,
					Kind:     models.KindEmployee,
					PersonID: employee.ID,
					Name:     employee.Name,
					Email:    employee.Email,
					Mobile:   employee.MobileNo,
					Date:     day,
				})
			}
		}
		result.Results = append(result.Results, models.EntryOutcome{PersonID: mark.PersonID, Message: "marked " + string(mark.Status)})
		result.Summary.Total++
	}
	s.invalidateReports(ctx, models.KindEmployee)
	return result, tasks, nil
}

// reportWindow resolves the inclusive date window for a period anchored at
// the reference date. Weeks run Sunday through Saturday.
func (s *AttendanceService) reportWindow(period models.ReportPeriod, ref time.Time) (time.Time, time.Time, error) {
	day := s.dateOnly(ref)
	switch period {
	case models.PeriodDaily:
		return day, day, nil
	case models.PeriodWeekly:
		start := day.AddDate(0, 0, -int(day.Weekday()))
		return start, start.AddDate(0, 0, 6), nil
	case models.PeriodMonthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1), nil
	default:
		return time.Time{}, time.Time{}, appErrors.ErrInvalidPeriod
	}
}

// Report aggregates the ledger for a person kind over the period containing
// the reference date. Results are cached until the next write to the kind.
func (s *AttendanceService) Report(ctx context.Context, kind models.PersonKind, period models.ReportPeriod, ref time.Time) (*models.RangeReport, error) {
	from, to, err := s.reportWindow(period, ref)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("reports:%s:%s:%s", kind, period, from.Format("2006-01-02"))
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached models.RangeReport
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	rows, err := s.reportRows(ctx, kind)
	if err != nil {
		return nil, err
	}

	dates := make([]string, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	for i := range rows {
		rows[i].Attendance = make(map[string]*models.AttendanceStatus, len(dates))
		for _, key := range dates {
			rows[i].Attendance[key] = nil
		}
	}
	rowIndex := make(map[string]int, len(rows))
	for i, row := range rows {
		rowIndex[row.ID] = i
	}

	entries, err := s.repo.ListInRange(ctx, kind, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	summary := models.RangeSummary{
		TotalPeople: len(rows),
		Period:      period,
		StartDate:   from,
		EndDate:     to,
		Dates:       dates,
	}
	for _, entry := range entries {
		idx, known := rowIndex[entry.PersonID]
		if !known {
			continue
		}
		status := entry.Status
		rows[idx].Attendance[entry.Date.Format("2006-01-02")] = &status
		switch entry.Status {
		case models.AttendanceStatusPresent:
			summary.TotalPresent++
		case models.AttendanceStatusAbsent:
			summary.TotalAbsent++
		case models.AttendanceStatusWorkFromHome:
			summary.TotalWorkFromHome++
		case models.AttendanceStatusLeave:
			summary.TotalLeave++
		}
	}

	report := &models.RangeReport{Rows: rows, Summary: summary}
	if s.cache != nil && s.cacheTTL > 0 {
		if raw, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Debug("report cache write failed", zap.Error(err))
			}
		}
	}
	return report, nil
}

// ExportReportPDF renders a range report as a tabular PDF.
func (s *AttendanceService) ExportReportPDF(ctx context.Context, kind models.PersonKind, period models.ReportPeriod, ref time.Time) ([]byte, error) {
	report, err := s.Report(ctx, kind, period, ref)
	if err != nil {
		return nil, err
	}
	headers := append([]string{"Name", "Email"}, report.Summary.Dates...)
	rows := make([]map[string]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		line := map[string]string{"Name": row.Name, "Email": row.Email}
		for _, date := range report.Summary.Dates {
			if status := row.Attendance[date]; status != nil {
				line[date] = string(*status)
			} else {
				line[date] = "-"
			}
		}
		rows = append(rows, line)
	}
	title := fmt.Sprintf("%s attendance %s", kind, report.Summary.StartDate.Format("2006-01-02"))
	pdf, err := s.exporter.Render(export.Dataset{Headers: headers, Rows: rows}, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return pdf, nil
}

func (s *AttendanceService) reportRows(ctx context.Context, kind models.PersonKind) ([]models.PersonAttendanceRow, error) {
	switch kind {
	case models.KindIntern:
		interns, err := s.interns.List(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list interns")
		}
		rows := make([]models.PersonAttendanceRow, 0, len(interns))
		for _, intern := range interns {
			rows = append(rows, models.PersonAttendanceRow{ID: intern.ID, Name: intern.Name, Email: intern.Email})
		}
		return rows, nil
	case models.KindEmployee:
		employees, err := s.employees.List(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
		}
		rows := make([]models.PersonAttendanceRow, 0, len(employees))
		for _, employee := range employees {
			rows = append(rows, models.PersonAttendanceRow{ID: employee.ID, Identifier: employee.EmployeeID, Name: employee.Name, Email: employee.Email})
		}
		return rows, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported person kind for reports")
	}
}

// invalidateReports drops cached reports for a kind after any ledger write.
func (s *AttendanceService) invalidateReports(ctx context.Context, kind models.PersonKind) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("reports:%s:*", kind)
	iter := s.cache.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.cache.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Debug("report cache invalidation failed", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Debug("report cache scan failed", zap.Error(err))
	}
}
