package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workbridge/ims-api/internal/models"
)

// NoteRepository manages study material notes attached to batches.
type NoteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository constructs a NoteRepository.
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create inserts a note record.
func (r *NoteRepository) Create(ctx context.Context, note *models.BatchNote) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now
	const query = `INSERT INTO batch_notes (id, batch_id, title, content, file_path, uploaded_by, created_at, updated_at)
        VALUES (:id, :batch_id, :title, :content, :file_path, :uploaded_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, note); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// FindByID fetches a note by id.
func (r *NoteRepository) FindByID(ctx context.Context, id string) (*models.BatchNote, error) {
	var note models.BatchNote
	if err := r.db.GetContext(ctx, &note, `SELECT id, batch_id, title, content, file_path, uploaded_by, created_at, updated_at FROM batch_notes WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &note, nil
}

// ListByBatch returns a batch's notes, newest first.
func (r *NoteRepository) ListByBatch(ctx context.Context, batchID string) ([]models.BatchNote, error) {
	var notes []models.BatchNote
	const query = `SELECT id, batch_id, title, content, file_path, uploaded_by, created_at, updated_at
        FROM batch_notes WHERE batch_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &notes, query, batchID); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Delete removes a note record. The stored file is removed by the caller.
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM batch_notes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// DeleteByBatch removes every note attached to a batch.
func (r *NoteRepository) DeleteByBatch(ctx context.Context, batchID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM batch_notes WHERE batch_id = $1`, batchID); err != nil {
		return fmt.Errorf("delete batch notes: %w", err)
	}
	return nil
}
