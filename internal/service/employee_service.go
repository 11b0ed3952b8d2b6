package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/workbridge/ims-api/internal/models"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
	"github.com/workbridge/ims-api/pkg/notify"
)

type employeeRepository interface {
	Create(ctx context.Context, employee *models.Employee) error
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)
	ExistsByEmailOrEmployeeID(ctx context.Context, email, employeeID string) (bool, error)
	List(ctx context.Context) ([]models.Employee, error)
	ListByAdmin(ctx context.Context, adminID string) ([]models.Employee, error)
	Update(ctx context.Context, employee *models.Employee) error
	Delete(ctx context.Context, id string) error
}

type employeeLedgerRepository interface {
	ClearForPerson(ctx context.Context, kind models.PersonKind, personID string) (int64, error)
}

// CreateEmployeeRequest holds payload for registering one employee. When the
// password is omitted it defaults to the email's local part.
type CreateEmployeeRequest struct {
	EmployeeID  string     `json:"employee_id" validate:"required"`
	Name        string     `json:"name" validate:"required"`
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password"`
	Designation string     `json:"designation"`
	Department  string     `json:"department"`
	Skills      []string   `json:"skills"`
	MobileNo    string     `json:"mobile_no"`
	JoiningDate *time.Time `json:"joining_date"`
	Address     string     `json:"address"`
}

// UpdateEmployeeRequest holds payload for updating an employee's profile.
type UpdateEmployeeRequest struct {
	Name        string     `json:"name" validate:"required"`
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password"`
	Designation string     `json:"designation"`
	Department  string     `json:"department"`
	Skills      []string   `json:"skills"`
	MobileNo    string     `json:"mobile_no"`
	JoiningDate *time.Time `json:"joining_date"`
	Address     string     `json:"address"`
}

// EmployeeService handles employee accounts.
type EmployeeService struct {
	repo      employeeRepository
	ledger    employeeLedgerRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs the employee service.
func NewEmployeeService(repo employeeRepository, ledger employeeLedgerRepository, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, ledger: ledger, validator: validate, logger: logger}
}

// Create registers a new employee under the acting admin. Both the email
// and the human-assigned employee id must be unused.
func (s *EmployeeService) Create(ctx context.Context, adminID string, req CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	if req.MobileNo != "" && !notify.ValidMobile(req.MobileNo) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mobile number must be 10 digits")
	}
	exists, err := s.repo.ExistsByEmailOrEmployeeID(ctx, req.Email, req.EmployeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email or employee id already registered")
	}
	password := req.Password
	if password == "" {
		password = emailLocalPart(req.Email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	employee := &models.Employee{
		EmployeeID:   req.EmployeeID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Designation:  req.Designation,
		Department:   req.Department,
		Skills:       req.Skills,
		MobileNo:     req.MobileNo,
		JoiningDate:  req.JoiningDate,
		Address:      req.Address,
		Role:         models.RoleEmployee,
		AdminID:      adminID,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}
	return employee, nil
}

// Get returns one employee.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return employee, nil
}

// List returns every employee, optionally scoped to a registering admin.
func (s *EmployeeService) List(ctx context.Context, adminID string) ([]models.Employee, error) {
	var (
		employees []models.Employee
		err       error
	)
	if adminID != "" {
		employees, err = s.repo.ListByAdmin(ctx, adminID)
	} else {
		employees, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	return employees, nil
}

// Update modifies an employee's profile.
func (s *EmployeeService) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	if req.MobileNo != "" && !notify.ValidMobile(req.MobileNo) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mobile number must be 10 digits")
	}
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	if req.Email != employee.Email {
		if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
	}
	employee.Name = req.Name
	employee.Email = req.Email
	employee.Designation = req.Designation
	employee.Department = req.Department
	employee.Skills = req.Skills
	employee.MobileNo = req.MobileNo
	employee.JoiningDate = req.JoiningDate
	employee.Address = req.Address
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		employee.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	return employee, nil
}

// Delete removes an employee and their attendance ledger.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	if _, err := s.ledger.ClearForPerson(ctx, models.KindEmployee, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear attendance")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete employee")
	}
	return nil
}
