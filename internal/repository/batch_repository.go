package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workbridge/ims-api/internal/models"
)

// BatchRepository manages persistence for batches and the batch-side roster.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs a BatchRepository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

const batchColumns = `id, batch_name, schedule_title, mode_of_batch, sequence_number, location, subject, duration, start_date, end_date, time_slot, teacher_id, description, status, created_at, updated_at`

// Create inserts a new batch.
func (r *BatchRepository) Create(ctx context.Context, batch *models.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = now
	}
	batch.UpdatedAt = now
	const query = `INSERT INTO batches (id, batch_name, schedule_title, mode_of_batch, sequence_number, location, subject, duration, start_date, end_date, time_slot, teacher_id, description, status, created_at, updated_at)
        VALUES (:id, :batch_name, :schedule_title, :mode_of_batch, :sequence_number, :location, :subject, :duration, :start_date, :end_date, :time_slot, :teacher_id, :description, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// ExistsByNameAndSequence reports whether a batch already claims the
// (batch_name, sequence_number) pair.
func (r *BatchRepository) ExistsByNameAndSequence(ctx context.Context, batchName string, sequenceNumber int) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM batches WHERE batch_name = $1 AND sequence_number = $2 LIMIT 1`, batchName, sequenceNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check batch exists: %w", err)
	}
	return true, nil
}

// FindByID fetches a batch with its roster.
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, `SELECT `+batchColumns+` FROM batches WHERE id = $1`, id); err != nil {
		return nil, err
	}
	studentIDs, err := r.StudentIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	batch.StudentIDs = studentIDs
	return &batch, nil
}

// List returns every batch ordered by start date.
func (r *BatchRepository) List(ctx context.Context) ([]models.Batch, error) {
	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, `SELECT `+batchColumns+` FROM batches ORDER BY start_date DESC`); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// ListByStatus returns batches in a lifecycle state.
func (r *BatchRepository) ListByStatus(ctx context.Context, status models.BatchStatus) ([]models.Batch, error) {
	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, `SELECT `+batchColumns+` FROM batches WHERE status = $1 ORDER BY start_date DESC`, status); err != nil {
		return nil, fmt.Errorf("list batches by status: %w", err)
	}
	return batches, nil
}

// ListByTeacher returns batches assigned to a teacher.
func (r *BatchRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Batch, error) {
	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, `SELECT `+batchColumns+` FROM batches WHERE teacher_id = $1 ORDER BY start_date DESC`, teacherID); err != nil {
		return nil, fmt.Errorf("list batches by teacher: %w", err)
	}
	return batches, nil
}

// Update modifies the mutable batch fields.
func (r *BatchRepository) Update(ctx context.Context, batch *models.Batch) error {
	batch.UpdatedAt = time.Now().UTC()
	const query = `UPDATE batches SET batch_name = :batch_name, schedule_title = :schedule_title,
        mode_of_batch = :mode_of_batch, sequence_number = :sequence_number, location = :location,
        subject = :subject, duration = :duration, start_date = :start_date, end_date = :end_date,
        time_slot = :time_slot, teacher_id = :teacher_id, description = :description,
        status = :status, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return nil
}

// UpdateStatus moves a batch through its lifecycle.
func (r *BatchRepository) UpdateStatus(ctx context.Context, id string, status models.BatchStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE batches SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetTeacher assigns or clears the batch's teacher.
func (r *BatchRepository) SetTeacher(ctx context.Context, id string, teacherID *string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE batches SET teacher_id = $1, updated_at = $2 WHERE id = $3`, teacherID, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("set batch teacher: %w", err)
	}
	return nil
}

// UnassignTeacher clears the teacher pointer on every batch the teacher held.
func (r *BatchRepository) UnassignTeacher(ctx context.Context, teacherID string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE batches SET teacher_id = NULL, updated_at = $1 WHERE teacher_id = $2`, time.Now().UTC(), teacherID); err != nil {
		return fmt.Errorf("unassign teacher: %w", err)
	}
	return nil
}

// Delete removes a batch and its batch-side roster rows. The intern-side
// links are cleared by the caller.
func (r *BatchRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM batch_students WHERE batch_id = $1`, id); err != nil {
		return fmt.Errorf("clear batch roster: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM batches WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}

// DeleteAll removes every batch and roster row, returning the removed count.
func (r *BatchRepository) DeleteAll(ctx context.Context) (int64, error) {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM batch_students`); err != nil {
		return 0, fmt.Errorf("clear rosters: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM batches`)
	if err != nil {
		return 0, fmt.Errorf("delete batches: %w", err)
	}
	count, _ := res.RowsAffected()
	return count, nil
}

// StudentIDs returns the batch-side roster.
func (r *BatchRepository) StudentIDs(ctx context.Context, batchID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT intern_id FROM batch_students WHERE batch_id = $1`, batchID); err != nil {
		return nil, fmt.Errorf("batch roster: %w", err)
	}
	return ids, nil
}

// HasStudent reports whether the batch-side roster row exists.
func (r *BatchRepository) HasStudent(ctx context.Context, batchID, internID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM batch_students WHERE batch_id = $1 AND intern_id = $2 LIMIT 1`, batchID, internID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check roster: %w", err)
	}
	return true, nil
}

// AddStudent records the batch-side roster row.
func (r *BatchRepository) AddStudent(ctx context.Context, batchID, internID string) error {
	const query = `INSERT INTO batch_students (batch_id, intern_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, batchID, internID); err != nil {
		return fmt.Errorf("add to roster: %w", err)
	}
	return nil
}

// RemoveStudent drops the batch-side roster row.
func (r *BatchRepository) RemoveStudent(ctx context.Context, batchID, internID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM batch_students WHERE batch_id = $1 AND intern_id = $2`, batchID, internID); err != nil {
		return fmt.Errorf("remove from roster: %w", err)
	}
	return nil
}

// RemoveStudentFromAll drops every batch-side roster row for an intern.
func (r *BatchRepository) RemoveStudentFromAll(ctx context.Context, internID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM batch_students WHERE intern_id = $1`, internID); err != nil {
		return fmt.Errorf("remove intern from rosters: %w", err)
	}
	return nil
}
