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

// EmployeeRepository manages persistence for employee records.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create inserts a new employee record.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now
	if employee.Role == "" {
		employee.Role = models.RoleEmployee
	}
	const query = `INSERT INTO employees (id, employee_id, name, email, password_hash, role, designation, department, skills, mobile_no, joining_date, address, admin_id, created_at, updated_at)
        VALUES (:id, :employee_id, :name, :email, :password_hash, :role, :designation, :department, :skills, :mobile_no, :joining_date, :address, :admin_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

const employeeColumns = `id, employee_id, name, email, password_hash, role, designation, department, skills, mobile_no, joining_date, address, admin_id, created_at, updated_at`

// FindByID fetches an employee by id.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindByEmail fetches an employee by email. Returns sql.ErrNoRows when absent.
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, `SELECT `+employeeColumns+` FROM employees WHERE email = $1`, email); err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindByEmployeeID fetches an employee by their human-assigned identifier.
func (r *EmployeeRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, `SELECT `+employeeColumns+` FROM employees WHERE employee_id = $1`, employeeID); err != nil {
		return nil, err
	}
	return &employee, nil
}

// ExistsByEmailOrEmployeeID reports whether a record already claims either
// identifier. Bulk registration rejects duplicates on both.
func (r *EmployeeRepository) ExistsByEmailOrEmployeeID(ctx context.Context, email, employeeID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM employees WHERE email = $1 OR employee_id = $2 LIMIT 1`, email, employeeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check employee exists: %w", err)
	}
	return true, nil
}

// List returns every employee ordered by creation time.
func (r *EmployeeRepository) List(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, `SELECT `+employeeColumns+` FROM employees ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// ListByAdmin returns employees registered by a given admin.
func (r *EmployeeRepository) ListByAdmin(ctx context.Context, adminID string) ([]models.Employee, error) {
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, `SELECT `+employeeColumns+` FROM employees WHERE admin_id = $1 ORDER BY created_at DESC`, adminID); err != nil {
		return nil, fmt.Errorf("list employees by admin: %w", err)
	}
	return employees, nil
}

// Update modifies the mutable profile fields.
func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	employee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE employees SET name = :name, email = :email, password_hash = :password_hash,
        designation = :designation, department = :department, skills = :skills, mobile_no = :mobile_no,
        joining_date = :joining_date, address = :address, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

// Delete removes an employee. Ledger entries are cleaned up by the caller.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return nil
}
