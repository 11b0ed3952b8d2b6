package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workbridge/ims-api/internal/models"
)

// AdminRepository manages persistence for administrator accounts.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Create inserts a new admin record.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = now
	}
	admin.UpdatedAt = now
	if admin.Role == "" {
		admin.Role = models.RoleAdmin
	}
	const query = `INSERT INTO admins (id, name, email, password_hash, role, created_at, updated_at)
        VALUES (:id, :name, :email, :password_hash, :role, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// FindByID fetches an admin by id.
func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, `SELECT id, name, email, password_hash, role, created_at, updated_at FROM admins WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindByEmail fetches an admin by email. Returns sql.ErrNoRows when absent.
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, `SELECT id, name, email, password_hash, role, created_at, updated_at FROM admins WHERE email = $1`, email); err != nil {
		return nil, err
	}
	return &admin, nil
}

// List returns every admin ordered by creation time.
func (r *AdminRepository) List(ctx context.Context) ([]models.Admin, error) {
	var admins []models.Admin
	if err := r.db.SelectContext(ctx, &admins, `SELECT id, name, email, password_hash, role, created_at, updated_at FROM admins ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}
