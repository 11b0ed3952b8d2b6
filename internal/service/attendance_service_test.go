package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workbridge/ims-api/internal/models"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
)

type mockAttendanceRepo struct {
	entries map[string]models.AttendanceEntry
	upserts int
}

func attendanceKey(kind models.PersonKind, personID string, date time.Time) string {
	return string(kind) + "|" + personID + "|" + date.Format("2006-01-02")
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, entry *models.AttendanceEntry) error {
	if m.entries == nil {
		m.entries = make(map[string]models.AttendanceEntry)
	}
	if entry.ID == "" {
		entry.ID = "entry-" + entry.PersonID + "-" + entry.Date.Format("20060102")
	}
	m.entries[attendanceKey(entry.PersonKind, entry.PersonID, entry.Date)] = *entry
	m.upserts++
	return nil
}

func (m *mockAttendanceRepo) FindForDate(ctx context.Context, kind models.PersonKind, personID string, date time.Time) (*models.AttendanceEntry, error) {
	if e, ok := m.entries[attendanceKey(kind, personID, date)]; ok {
		stored := e
		return &stored, nil
	}
	return nil, nil
}

func (m *mockAttendanceRepo) ListForPerson(ctx context.Context, kind models.PersonKind, personID string) ([]models.AttendanceEntry, error) {
	var out []models.AttendanceEntry
	for _, e := range m.entries {
		if e.PersonKind == kind && e.PersonID == personID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) ListInRange(ctx context.Context, kind models.PersonKind, from, to time.Time) ([]models.AttendanceEntry, error) {
	var out []models.AttendanceEntry
	for _, e := range m.entries {
		if e.PersonKind == kind && !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) ClearForPerson(ctx context.Context, kind models.PersonKind, personID string) (int64, error) {
	var removed int64
	for k, e := range m.entries {
		if e.PersonKind == kind && e.PersonID == personID {
			delete(m.entries, k)
			removed++
		}
	}
	return removed, nil
}

func (m *mockAttendanceRepo) ClearKind(ctx context.Context, kind models.PersonKind) (int64, error) {
	var removed int64
	for k, e := range m.entries {
		if e.PersonKind == kind {
			delete(m.entries, k)
			removed++
		}
	}
	return removed, nil
}

type mockInternLister struct {
	interns []models.Intern
	roster  map[string][]models.Intern
}

func (m *mockInternLister) List(ctx context.Context) ([]models.Intern, error) {
	return m.interns, nil
}

func (m *mockInternLister) ListByBatch(ctx context.Context, batchID string) ([]models.Intern, error) {
	return m.roster[batchID], nil
}

type mockEmployeeLister struct {
	employees []models.Employee
}

func (m *mockEmployeeLister) List(ctx context.Context) ([]models.Employee, error) {
	return m.employees, nil
}

type mockBatchFinder struct {
	batches map[string]models.Batch
}

func (m *mockBatchFinder) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	if b, ok := m.batches[id]; ok {
		stored := b
		return &stored, nil
	}
	return nil, assert.AnError
}

type mockRollupRepo struct {
	rollups []models.TeacherRollup
}

func (m *mockRollupRepo) UpsertRollup(ctx context.Context, rollup *models.TeacherRollup) error {
	m.rollups = append(m.rollups, *rollup)
	return nil
}

func newAttendanceService(repo *mockAttendanceRepo, interns *mockInternLister, employees *mockEmployeeLister, batches *mockBatchFinder, rollups *mockRollupRepo) *AttendanceService {
	return NewAttendanceService(repo, interns, employees, batches, rollups, nil, time.UTC, 0, nil, nil)
}

func TestMarkReplacesSameDay(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &mockInternLister{}, &mockEmployeeLister{}, &mockBatchFinder{}, &mockRollupRepo{})

	date := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	first, err := svc.Mark(context.Background(), models.KindIntern, "i1", MarkRequest{Date: date, Status: models.AttendanceStatusPresent})
	require.NoError(t, err)

	second, err := svc.Mark(context.Background(), models.KindIntern, "i1", MarkRequest{Date: date, Status: models.AttendanceStatusAbsent})
	require.NoError(t, err)

	assert.Equal(t, first.Date, second.Date)
	assert.Len(t, repo.entries, 1)
	stored := repo.entries[attendanceKey(models.KindIntern, "i1", first.Date)]
	assert.Equal(t, models.AttendanceStatusAbsent, stored.Status)
}

func TestMarkRejectsInternLeave(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &mockInternLister{}, &mockEmployeeLister{}, &mockBatchFinder{}, &mockRollupRepo{})

	_, err := svc.Mark(context.Background(), models.KindIntern, "i1", MarkRequest{Date: time.Now(), Status: models.AttendanceStatusLeave})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestClockInTwiceRejected(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &mockInternLister{}, &mockEmployeeLister{}, &mockBatchFinder{}, &mockRollupRepo{})

	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := svc.ClockIn(context.Background(), "emp-1", at)
	require.NoError(t, err)

	_, err = svc.ClockIn(context.Background(), "emp-1", at.Add(time.Hour))
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyClockedIn))
	assert.Equal(t, 1, repo.upserts)
}

func TestClockInOnAbsentDayRejected(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &mockInternLister{}, &mockEmployeeLister{}, &mockBatchFinder{}, &mockRollupRepo{})

	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := svc.Mark(context.Background(), models.KindEmployee, "emp-1", MarkRequest{Date: at, Status: models.AttendanceStatusAbsent})
	require.NoError(t, err)

	_, err = svc.ClockIn(context.Background(), "emp-1", at)
	assert.True(t, appErrors.Is(err, appErrors.ErrDayClosed))
}

func TestClockOutComputesHours(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &mockInternLister{}, &mockEmployeeLister{}, &mockBatchFinder{}, &mockRollupRepo{})

	in := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := svc.ClockIn(context.Background(), "emp-1", in)
	require.NoError(t, err)

	entry, err := svc.ClockOut(context.Background(), "emp-1", in.Add(8*time.Hour+30*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, entry.WorkingHours)
	assert.Equal(t, 8.5, *entry.WorkingHours)
}

func TestClockOutWithoutClockIn(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &mockInternLister{}, &mockEmployeeLister{}, &mockBatchFinder{}, &mockRollupRepo{})

	_, err := svc.ClockOut(context.Background(), "emp-1", time.Now())
	assert.True(t, appErrors.Is(err, appErrors.ErrNoClockIn))
}

func TestClockOutInvalidIntervalLeavesEntry(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &mockInternLister{}, &mockEmployeeLister{}, &mockBatchFinder{}, &mockRollupRepo{})

	in := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := svc.ClockIn(context.Background(), "emp-1", in)
	require.NoError(t, err)
	writes := repo.upserts

	_, err = svc.ClockOut(context.Background(), "emp-1", in.Add(-time.Hour))
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidInterval))
	assert.Equal(t, writes, repo.upserts)

	stored := repo.entries[attendanceKey(models.KindEmployee, "emp-1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))]
	assert.Nil(t, stored.LogoutTime)
	assert.Nil(t, stored.WorkingHours)
}

func TestClockOutTwiceRejected(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &mockInternLister{}, &mockEmployeeLister{}, &mockBatchFinder{}, &mockRollupRepo{})

	in := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := svc.ClockIn(context.Background(), "emp-1", in)
	require.NoError(t, err)
	_, err = svc.ClockOut(context.Background(), "emp-1", in.Add(8*time.Hour))
	require.NoError(t, err)

	_, err = svc.ClockOut(context.Background(), "emp-1", in.Add(9*time.Hour))
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyClockedOut))
}

func TestBulkMarkInternsRollsUpAndQueuesAlerts(t *testing.T) {
	repo := &mockAttendanceRepo{}
	teacherID := "t1"
	batches := &mockBatchFinder{batches: map[string]models.Batch{
		"b1": {ID: "b1", TeacherID: &teacherID},
	}}
	interns := &mockInternLister{roster: map[string][]models.Intern{
		"b1": {
			{ID: "i1", Name: "One", Email: "one@corp.test"},
			{ID: "i2", Name: "Two", Email: "two@corp.test"},
			{ID: "i3", Name: "Three", Email: "three@corp.test"},
		},
	}}
	rollups := &mockRollupRepo{}
	svc := newAttendanceService(repo, interns, &mockEmployeeLister{}, batches, rollups)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	result, tasks, err := svc.BulkMarkInterns(context.Background(), "b1", date, []BulkMark{
		{PersonID: "i1", Status: models.AttendanceStatusPresent},
		{PersonID: "i2", Status: models.AttendanceStatusAbsent},
		{PersonID: "i3", Status: models.AttendanceStatusAbsent},
		{PersonID: "stranger", Status: models.AttendanceStatusPresent},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.PresentCount)
	assert.Equal(t, 2, result.Summary.AbsentCount)
	assert.Equal(t, 3, result.Summary.Total)
	assert.Len(t, result.Results, 4)
	assert.Len(t, tasks, 2)

	require.Len(t, rollups.rollups, 1)
	assert.Equal(t, "t1", rollups.rollups[0].TeacherID)
	assert.Equal(t, 1, rollups.rollups[0].PresentCount)
	assert.Equal(t, 2, rollups.rollups[0].AbsentCount)
}

func TestBulkMarkSkipsAlreadyNotified(t *testing.T) {
	repo := &mockAttendanceRepo{}
	batches := &mockBatchFinder{batches: map[string]models.Batch{"b1": {ID: "b1"}}}
	interns := &mockInternLister{roster: map[string][]models.Intern{
		"b1": {{ID: "i1", Name: "One", Email: "one@corp.test"}},
	}}
	svc := newAttendanceService(repo, interns, &mockEmployeeLister{}, batches, &mockRollupRepo{})

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, tasks, err := svc.BulkMarkInterns(context.Background(), "b1", date, []BulkMark{{PersonID: "i1", Status: models.AttendanceStatusAbsent}})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	// flag the entry as notified and re-mark the same day
	entry := repo.entries[attendanceKey(models.KindIntern, "i1", date)]
	entry.NotificationSent = true
	repo.entries[attendanceKey(models.KindIntern, "i1", date)] = entry

	_, tasks, err = svc.BulkMarkInterns(context.Background(), "b1", date, []BulkMark{{PersonID: "i1", Status: models.AttendanceStatusAbsent}})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestReportWeeklyWindowSundayToSaturday(t *testing.T) {
	repo := &mockAttendanceRepo{}
	interns := &mockInternLister{interns: []models.Intern{{ID: "i1", Name: "One", Email: "one@corp.test"}}}
	svc := newAttendanceService(repo, interns, &mockEmployeeLister{}, &mockBatchFinder{}, &mockRollupRepo{})

	// 2026-03-04 is a Wednesday; its week runs Sun 2026-03-01 .. Sat 2026-03-07
	ref := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	report, err := svc.Report(context.Background(), models.KindIntern, models.PeriodWeekly, ref)
	require.NoError(t, err)

	require.Len(t, report.Summary.Dates, 7)
	assert.Equal(t, "2026-03-01", report.Summary.Dates[0])
	assert.Equal(t, "2026-03-07", report.Summary.Dates[6])
	assert.Equal(t, time.Sunday, report.Summary.StartDate.Weekday())
	assert.Equal(t, time.Saturday, report.Summary.EndDate.Weekday())

	require.Len(t, report.Rows, 1)
	assert.Len(t, report.Rows[0].Attendance, 7)
	for _, status := range report.Rows[0].Attendance {
		assert.Nil(t, status)
	}
}

func TestReportCountsStatuses(t *testing.T) {
	repo := &mockAttendanceRepo{}
	interns := &mockInternLister{interns: []models.Intern{
		{ID: "i1", Name: "One", Email: "one@corp.test"},
		{ID: "i2", Name: "Two", Email: "two@corp.test"},
	}}
	svc := newAttendanceService(repo, interns, &mockEmployeeLister{}, &mockBatchFinder{}, &mockRollupRepo{})

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err := svc.Mark(context.Background(), models.KindIntern, "i1", MarkRequest{Date: date, Status: models.AttendanceStatusPresent})
	require.NoError(t, err)
	_, err = svc.Mark(context.Background(), models.KindIntern, "i2", MarkRequest{Date: date, Status: models.AttendanceStatusAbsent})
	require.NoError(t, err)

	report, err := svc.Report(context.Background(), models.KindIntern, models.PeriodDaily, date)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Summary.TotalPeople)
	assert.Equal(t, 1, report.Summary.TotalPresent)
	assert.Equal(t, 1, report.Summary.TotalAbsent)
	require.Len(t, report.Summary.Dates, 1)
	require.NotNil(t, report.Rows[0].Attendance["2026-03-02"])
}

func TestReportInvalidPeriod(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &mockInternLister{}, &mockEmployeeLister{}, &mockBatchFinder{}, &mockRollupRepo{})

	_, err := svc.Report(context.Background(), models.KindIntern, models.ReportPeriod("yearly"), time.Now())
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidPeriod))
}

func TestBulkMarkEmployeesWithTimes(t *testing.T) {
	repo := &mockAttendanceRepo{}
	employees := &mockEmployeeLister{employees: []models.Employee{
		{ID: "e1", Name: "Priya", Email: "priya@corp.test"},
		{ID: "e2", Name: "Dev", Email: "dev@corp.test"},
		{ID: "e3", Name: "Sam", Email: "sam@corp.test"},
	}}
	svc := newAttendanceService(repo, &mockInternLister{}, employees, &mockBatchFinder{}, &mockRollupRepo{})

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	login := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	logout := time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)
	result, _, err := svc.BulkMarkEmployees(context.Background(), date, []BulkMark{
		{PersonID: "e1", Status: models.AttendanceStatusPresent, LoginTime: &login, LogoutTime: &logout},
		{PersonID: "e2", Status: models.AttendanceStatusPresent, LoginTime: &logout, LogoutTime: &login},
		{PersonID: "e3", Status: models.AttendanceStatusWorkFromHome},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.Total)
	stored := repo.entries[attendanceKey(models.KindEmployee, "e1", date)]
	require.NotNil(t, stored.WorkingHours)
	assert.InDelta(t, 8.5, *stored.WorkingHours, 0.001)

	outcomes := make(map[string]string, len(result.Results))
	for _, outcome := range result.Results {
		outcomes[outcome.PersonID] = outcome.Message
	}
	assert.Equal(t, "logout must follow login", outcomes["e2"])
	assert.Equal(t, "login and logout times are required", outcomes["e3"])
	_, written := repo.entries[attendanceKey(models.KindEmployee, "e2", date)]
	assert.False(t, written)
	_, written = repo.entries[attendanceKey(models.KindEmployee, "e3", date)]
	assert.False(t, written)
}

func TestClearLedgerRemovesOnlyOnePerson(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo, &mockInternLister{}, &mockEmployeeLister{}, &mockBatchFinder{}, &mockRollupRepo{})

	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 3; day++ {
		_, err := svc.Mark(context.Background(), models.KindIntern, "i1", MarkRequest{Date: base.AddDate(0, 0, day), Status: models.AttendanceStatusPresent})
		require.NoError(t, err)
	}
	_, err := svc.Mark(context.Background(), models.KindIntern, "i2", MarkRequest{Date: base, Status: models.AttendanceStatusAbsent})
	require.NoError(t, err)

	removed, err := svc.ClearLedger(context.Background(), models.KindIntern, "i1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	remaining, err := svc.Ledger(context.Background(), models.KindIntern, "i2")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
