package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workbridge/ims-api/internal/models"
)

func newInternMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestInternRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newInternMock(t)
	defer cleanup()
	repo := NewInternRepository(db)

	mock.ExpectExec("INSERT INTO interns").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	intern := &models.Intern{Name: "Jane Doe", Email: "jane@corp.test", PasswordHash: "hash"}
	err := repo.Create(context.Background(), intern)
	require.NoError(t, err)
	assert.NotEmpty(t, intern.ID)
	assert.Equal(t, models.RoleIntern, intern.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInternRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newInternMock(t)
	defer cleanup()
	repo := NewInternRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}).
		AddRow("i1", "Jane Doe", "jane@corp.test", "hash", "intern", time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM interns WHERE email").
		WithArgs("jane@corp.test").
		WillReturnRows(rows)

	intern, err := repo.FindByEmail(context.Background(), "jane@corp.test")
	require.NoError(t, err)
	assert.Equal(t, "i1", intern.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInternRepositoryFindByEmailMissing(t *testing.T) {
	db, mock, cleanup := newInternMock(t)
	defer cleanup()
	repo := NewInternRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM interns WHERE email").
		WithArgs("nobody@corp.test").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@corp.test")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInternRepositoryHasBatch(t *testing.T) {
	db, mock, cleanup := newInternMock(t)
	defer cleanup()
	repo := NewInternRepository(db)

	mock.ExpectQuery("SELECT 1 FROM intern_batches").
		WithArgs("i1", "b1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM intern_batches").
		WithArgs("i1", "b2").
		WillReturnError(sql.ErrNoRows)

	linked, err := repo.HasBatch(context.Background(), "i1", "b1")
	require.NoError(t, err)
	assert.True(t, linked)

	linked, err = repo.HasBatch(context.Background(), "i1", "b2")
	require.NoError(t, err)
	assert.False(t, linked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInternRepositoryDeleteUnlinksFirst(t *testing.T) {
	db, mock, cleanup := newInternMock(t)
	defer cleanup()
	repo := NewInternRepository(db)

	mock.ExpectExec("DELETE FROM intern_batches WHERE intern_id").
		WithArgs("i1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM interns WHERE id").
		WithArgs("i1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "i1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
