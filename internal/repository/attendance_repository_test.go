package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workbridge/ims-api/internal/models"
)

func newAttendanceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAttendanceRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO attendance_entries").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.AttendanceEntry{
		PersonKind: models.KindIntern,
		PersonID:   "intern-1",
		Date:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status:     models.AttendanceStatusPresent,
	}
	err := repo.Upsert(context.Background(), entry)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsertKeepsID(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO attendance_entries").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.AttendanceEntry{
		ID:         "fixed-id",
		PersonKind: models.KindEmployee,
		PersonID:   "emp-1",
		Date:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status:     models.AttendanceStatusAbsent,
	}
	err := repo.Upsert(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryFindForDate(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "person_kind", "person_id", "date", "status", "login_time", "logout_time", "working_hours", "notification_sent", "created_at", "updated_at"}).
		AddRow("e1", "intern", "intern-1", date, "Present", nil, nil, nil, false, time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM attendance_entries WHERE person_kind").
		WithArgs(models.KindIntern, "intern-1", date).
		WillReturnRows(rows)

	entry, err := repo.FindForDate(context.Background(), models.KindIntern, "intern-1", date)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, models.AttendanceStatusPresent, entry.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryFindForDateMissing(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM attendance_entries WHERE person_kind").
		WithArgs(models.KindIntern, "intern-1", date).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	entry, err := repo.FindForDate(context.Background(), models.KindIntern, "intern-1", date)
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListInRange(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "person_kind", "person_id", "date", "status", "login_time", "logout_time", "working_hours", "notification_sent", "created_at", "updated_at"}).
		AddRow("e1", "employee", "emp-1", from, "Present", nil, nil, nil, false, time.Now(), time.Now()).
		AddRow("e2", "employee", "emp-1", from.AddDate(0, 0, 1), "Absent", nil, nil, nil, true, time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM attendance_entries").
		WithArgs(models.KindEmployee, from, to).
		WillReturnRows(rows)

	entries, err := repo.ListInRange(context.Background(), models.KindEmployee, from, to)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.True(t, entries[1].NotificationSent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositorySetNotificationSent(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("UPDATE attendance_entries SET notification_sent = TRUE").
		WithArgs(sqlmock.AnyArg(), "e1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetNotificationSent(context.Background(), "e1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
