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

func newBatchMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBatchRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newBatchMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectExec("INSERT INTO batches").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	batch := &models.Batch{
		BatchName:      "Spring Cohort",
		SequenceNumber: 1,
		StartDate:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		Status:         models.BatchStatusUpcoming,
	}
	err := repo.Create(context.Background(), batch)
	require.NoError(t, err)
	assert.NotEmpty(t, batch.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepositoryExistsByNameAndSequence(t *testing.T) {
	db, mock, cleanup := newBatchMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectQuery("SELECT 1 FROM batches WHERE batch_name").
		WithArgs("Spring Cohort", 1).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByNameAndSequence(context.Background(), "Spring Cohort", 1)
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM batches WHERE batch_name").
		WithArgs("Spring Cohort", 2).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.ExistsByNameAndSequence(context.Background(), "Spring Cohort", 2)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepositoryAddStudentIdempotent(t *testing.T) {
	db, mock, cleanup := newBatchMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectExec("INSERT INTO batch_students").
		WithArgs("batch-1", "intern-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO batch_students").
		WithArgs("batch-1", "intern-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.AddStudent(context.Background(), "batch-1", "intern-1"))
	require.NoError(t, repo.AddStudent(context.Background(), "batch-1", "intern-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepositoryDeleteClearsRoster(t *testing.T) {
	db, mock, cleanup := newBatchMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectExec("DELETE FROM batch_students WHERE batch_id").
		WithArgs("batch-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM batches WHERE id").
		WithArgs("batch-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "batch-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepositoryUpdateStatusMissing(t *testing.T) {
	db, mock, cleanup := newBatchMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectExec("UPDATE batches SET status").
		WithArgs(models.BatchStatusCompleted, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.BatchStatusCompleted)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
