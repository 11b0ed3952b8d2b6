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

// TeacherRepository manages persistence for teacher records, their batch
// links, and the per-date class roll-up counters.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// Create inserts a new teacher record.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now
	if teacher.Role == "" {
		teacher.Role = models.RoleTeacher
	}
	const query = `INSERT INTO teachers (id, name, email, password_hash, role, created_at, updated_at)
        VALUES (:id, :name, :email, :password_hash, :role, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// FindByID fetches a teacher with their batch links.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, `SELECT id, name, email, password_hash, role, created_at, updated_at FROM teachers WHERE id = $1`, id); err != nil {
		return nil, err
	}
	batchIDs, err := r.BatchIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	teacher.BatchIDs = batchIDs
	return &teacher, nil
}

// FindByEmail fetches a teacher by email. Returns sql.ErrNoRows when absent.
func (r *TeacherRepository) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, `SELECT id, name, email, password_hash, role, created_at, updated_at FROM teachers WHERE email = $1`, email); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// List returns every teacher ordered by creation time.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, `SELECT id, name, email, password_hash, role, created_at, updated_at FROM teachers ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// Update modifies name/email and optionally the password hash.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET name = :name, email = :email, password_hash = :password_hash, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// Delete removes a teacher together with their links and roll-ups.
func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM teacher_batches WHERE teacher_id = $1`, id); err != nil {
		return fmt.Errorf("unlink teacher: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM teacher_attendance WHERE teacher_id = $1`, id); err != nil {
		return fmt.Errorf("clear teacher roll-ups: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return nil
}

// BatchIDs returns the teacher-side batch links.
func (r *TeacherRepository) BatchIDs(ctx context.Context, teacherID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT batch_id FROM teacher_batches WHERE teacher_id = $1`, teacherID); err != nil {
		return nil, fmt.Errorf("teacher batch ids: %w", err)
	}
	return ids, nil
}

// AddBatch records the teacher-side link.
func (r *TeacherRepository) AddBatch(ctx context.Context, teacherID, batchID string) error {
	const query = `INSERT INTO teacher_batches (teacher_id, batch_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, teacherID, batchID); err != nil {
		return fmt.Errorf("add teacher batch: %w", err)
	}
	return nil
}

// RemoveBatch drops the teacher-side link.
func (r *TeacherRepository) RemoveBatch(ctx context.Context, teacherID, batchID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM teacher_batches WHERE teacher_id = $1 AND batch_id = $2`, teacherID, batchID); err != nil {
		return fmt.Errorf("remove teacher batch: %w", err)
	}
	return nil
}

// RemoveBatchFromAll drops every teacher-side link for a batch.
func (r *TeacherRepository) RemoveBatchFromAll(ctx context.Context, batchID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM teacher_batches WHERE batch_id = $1`, batchID); err != nil {
		return fmt.Errorf("remove batch from teachers: %w", err)
	}
	return nil
}

// UpsertRollup replaces the present/absent counters for a teacher and date.
func (r *TeacherRepository) UpsertRollup(ctx context.Context, rollup *models.TeacherRollup) error {
	if rollup.ID == "" {
		rollup.ID = uuid.NewString()
	}
	rollup.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO teacher_attendance (id, teacher_id, date, present_count, absent_count, updated_at)
        VALUES (:id, :teacher_id, :date, :present_count, :absent_count, :updated_at)
        ON CONFLICT (teacher_id, date) DO UPDATE SET
            present_count = EXCLUDED.present_count,
            absent_count = EXCLUDED.absent_count,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, rollup); err != nil {
		return fmt.Errorf("upsert teacher roll-up: %w", err)
	}
	return nil
}

// FindRollup fetches the roll-up for a teacher and date, or nil when the
// class has not been marked that day.
func (r *TeacherRepository) FindRollup(ctx context.Context, teacherID string, date time.Time) (*models.TeacherRollup, error) {
	var rollup models.TeacherRollup
	err := r.db.GetContext(ctx, &rollup, `SELECT id, teacher_id, date, present_count, absent_count, updated_at FROM teacher_attendance WHERE teacher_id = $1 AND date = $2`, teacherID, date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find teacher roll-up: %w", err)
	}
	return &rollup, nil
}

// ListRollups returns roll-ups for a teacher within an inclusive date range.
func (r *TeacherRepository) ListRollups(ctx context.Context, teacherID string, from, to time.Time) ([]models.TeacherRollup, error) {
	var rollups []models.TeacherRollup
	const query = `SELECT id, teacher_id, date, present_count, absent_count, updated_at
        FROM teacher_attendance
        WHERE teacher_id = $1 AND date BETWEEN $2 AND $3
        ORDER BY date`
	if err := r.db.SelectContext(ctx, &rollups, query, teacherID, from, to); err != nil {
		return nil, fmt.Errorf("list teacher roll-ups: %w", err)
	}
	return rollups, nil
}
