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

// InternRepository manages persistence for intern records and their side of
// the batch link.
type InternRepository struct {
	db *sqlx.DB
}

// NewInternRepository constructs an InternRepository.
func NewInternRepository(db *sqlx.DB) *InternRepository {
	return &InternRepository{db: db}
}

// Create inserts a new intern record.
func (r *InternRepository) Create(ctx context.Context, intern *models.Intern) error {
	if intern.ID == "" {
		intern.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if intern.CreatedAt.IsZero() {
		intern.CreatedAt = now
	}
	intern.UpdatedAt = now
	if intern.Role == "" {
		intern.Role = models.RoleIntern
	}
	const query = `INSERT INTO interns (id, name, email, password_hash, role, created_at, updated_at)
        VALUES (:id, :name, :email, :password_hash, :role, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, intern); err != nil {
		return fmt.Errorf("create intern: %w", err)
	}
	return nil
}

// FindByID fetches an intern with their batch links.
func (r *InternRepository) FindByID(ctx context.Context, id string) (*models.Intern, error) {
	var intern models.Intern
	if err := r.db.GetContext(ctx, &intern, `SELECT id, name, email, password_hash, role, created_at, updated_at FROM interns WHERE id = $1`, id); err != nil {
		return nil, err
	}
	batchIDs, err := r.BatchIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	intern.BatchIDs = batchIDs
	return &intern, nil
}

// FindByEmail fetches an intern by email. Returns sql.ErrNoRows when absent.
func (r *InternRepository) FindByEmail(ctx context.Context, email string) (*models.Intern, error) {
	var intern models.Intern
	if err := r.db.GetContext(ctx, &intern, `SELECT id, name, email, password_hash, role, created_at, updated_at FROM interns WHERE email = $1`, email); err != nil {
		return nil, err
	}
	return &intern, nil
}

// List returns every intern ordered by creation time.
func (r *InternRepository) List(ctx context.Context) ([]models.Intern, error) {
	var interns []models.Intern
	if err := r.db.SelectContext(ctx, &interns, `SELECT id, name, email, password_hash, role, created_at, updated_at FROM interns ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("list interns: %w", err)
	}
	return interns, nil
}

// ListByBatch returns interns linked to a batch.
func (r *InternRepository) ListByBatch(ctx context.Context, batchID string) ([]models.Intern, error) {
	const query = `SELECT i.id, i.name, i.email, i.password_hash, i.role, i.created_at, i.updated_at
        FROM interns i
        JOIN intern_batches ib ON ib.intern_id = i.id
        WHERE ib.batch_id = $1
        ORDER BY i.name`
	var interns []models.Intern
	if err := r.db.SelectContext(ctx, &interns, query, batchID); err != nil {
		return nil, fmt.Errorf("list interns by batch: %w", err)
	}
	return interns, nil
}

// Update modifies name/email and optionally the password hash.
func (r *InternRepository) Update(ctx context.Context, intern *models.Intern) error {
	intern.UpdatedAt = time.Now().UTC()
	const query = `UPDATE interns SET name = :name, email = :email, password_hash = :password_hash, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, intern); err != nil {
		return fmt.Errorf("update intern: %w", err)
	}
	return nil
}

// Delete removes an intern. Ledger entries are cleaned up by the caller,
// which owns the cascade ordering.
func (r *InternRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM intern_batches WHERE intern_id = $1`, id); err != nil {
		return fmt.Errorf("unlink intern: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM interns WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete intern: %w", err)
	}
	return nil
}

// DeleteAll removes every intern and link row, returning the removed count.
func (r *InternRepository) DeleteAll(ctx context.Context) (int64, error) {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM intern_batches`); err != nil {
		return 0, fmt.Errorf("unlink interns: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM interns`)
	if err != nil {
		return 0, fmt.Errorf("delete interns: %w", err)
	}
	count, _ := res.RowsAffected()
	return count, nil
}

// BatchIDs returns the intern-side batch links.
func (r *InternRepository) BatchIDs(ctx context.Context, internID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT batch_id FROM intern_batches WHERE intern_id = $1`, internID); err != nil {
		return nil, fmt.Errorf("intern batch ids: %w", err)
	}
	return ids, nil
}

// HasBatch reports whether the intern-side link exists.
func (r *InternRepository) HasBatch(ctx context.Context, internID, batchID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM intern_batches WHERE intern_id = $1 AND batch_id = $2 LIMIT 1`, internID, batchID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check intern batch: %w", err)
	}
	return true, nil
}

// AddBatch records the intern-side link.
func (r *InternRepository) AddBatch(ctx context.Context, internID, batchID string) error {
	const query = `INSERT INTO intern_batches (intern_id, batch_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, internID, batchID); err != nil {
		return fmt.Errorf("add intern batch: %w", err)
	}
	return nil
}

// RemoveBatch drops the intern-side link.
func (r *InternRepository) RemoveBatch(ctx context.Context, internID, batchID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM intern_batches WHERE intern_id = $1 AND batch_id = $2`, internID, batchID); err != nil {
		return fmt.Errorf("remove intern batch: %w", err)
	}
	return nil
}

// RemoveBatchFromAll drops every intern-side link for a batch, returning the
// number of interns affected.
func (r *InternRepository) RemoveBatchFromAll(ctx context.Context, batchID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM intern_batches WHERE batch_id = $1`, batchID)
	if err != nil {
		return 0, fmt.Errorf("remove batch from interns: %w", err)
	}
	count, _ := res.RowsAffected()
	return count, nil
}
