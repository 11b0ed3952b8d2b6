package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workbridge/ims-api/internal/models"
)

// NoticeRepository manages batch-scoped notices.
type NoticeRepository struct {
	db *sqlx.DB
}

// NewNoticeRepository constructs a NoticeRepository.
func NewNoticeRepository(db *sqlx.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// Create inserts a notice.
func (r *NoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	if notice.ID == "" {
		notice.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if notice.CreatedAt.IsZero() {
		notice.CreatedAt = now
	}
	notice.UpdatedAt = now
	const query = `INSERT INTO notices (id, batch_id, title, details, date, created_at, updated_at)
        VALUES (:id, :batch_id, :title, :details, :date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notice); err != nil {
		return fmt.Errorf("create notice: %w", err)
	}
	return nil
}

// ListByBatch returns a batch's notices, newest first.
func (r *NoticeRepository) ListByBatch(ctx context.Context, batchID string) ([]models.Notice, error) {
	var notices []models.Notice
	const query = `SELECT id, batch_id, title, details, date, created_at, updated_at
        FROM notices WHERE batch_id = $1 ORDER BY date DESC, created_at DESC`
	if err := r.db.SelectContext(ctx, &notices, query, batchID); err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return notices, nil
}

// Update rewrites a notice's title, details, and date.
func (r *NoticeRepository) Update(ctx context.Context, notice *models.Notice) error {
	notice.UpdatedAt = time.Now().UTC()
	const query = `UPDATE notices SET title = :title, details = :details, date = :date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, notice); err != nil {
		return fmt.Errorf("update notice: %w", err)
	}
	return nil
}

// Delete removes a notice.
func (r *NoticeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	return nil
}

// DeleteByBatch removes every notice attached to a batch.
func (r *NoticeRepository) DeleteByBatch(ctx context.Context, batchID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notices WHERE batch_id = $1`, batchID); err != nil {
		return fmt.Errorf("delete batch notices: %w", err)
	}
	return nil
}
