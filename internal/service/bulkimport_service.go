package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/workbridge/ims-api/internal/models"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
	"github.com/workbridge/ims-api/pkg/spreadsheet"
)

var internColumns = []spreadsheet.ColumnSpec{
	{Field: "name", Aliases: []string{"Name", "Full Name", "Student Name"}, Required: true},
	{Field: "email", Aliases: []string{"Email", "Email Id", "Username"}, Required: true},
	{Field: "password", Aliases: []string{"Password"}},
}

var employeeColumns = []spreadsheet.ColumnSpec{
	{Field: "employee_id", Aliases: []string{"Employee Id", "Emp Id", "Id"}, Required: true},
	{Field: "name", Aliases: []string{"Name", "Full Name", "Employee Name"}, Required: true},
	{Field: "email", Aliases: []string{"Email", "Email Id"}, Required: true},
	{Field: "designation", Aliases: []string{"Designation", "Title"}, Required: true},
	{Field: "department", Aliases: []string{"Department", "Dept"}, Required: true},
	{Field: "mobile_no", Aliases: []string{"Mobile No", "Mobile", "Phone"}},
	{Field: "joining_date", Aliases: []string{"Joining Date", "Date Of Joining", "DOJ"}},
	{Field: "skills", Aliases: []string{"Skills"}},
	{Field: "address", Aliases: []string{"Address"}},
	{Field: "password", Aliases: []string{"Password"}},
}

var joiningDateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006"}

func parseJoiningDate(cell string) (time.Time, error) {
	for _, layout := range joiningDateLayouts {
		if parsed, err := time.Parse(layout, cell); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", cell)
}

func splitSkills(cell string) pq.StringArray {
	var skills pq.StringArray
	for _, part := range strings.Split(cell, ",") {
		if skill := strings.TrimSpace(part); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

// rowPassword prefers a supplied password cell, falling back to the email
// local part.
func rowPassword(row spreadsheet.Row, email string) string {
	if supplied := row.Get("password"); supplied != "" {
		return supplied
	}
	return emailLocalPart(email)
}

type bulkInternRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Intern, error)
	Create(ctx context.Context, intern *models.Intern) error
	AddBatch(ctx context.Context, internID, batchID string) error
	HasBatch(ctx context.Context, internID, batchID string) (bool, error)
}

type bulkRosterRepository interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	AddStudent(ctx context.Context, batchID, internID string) error
}

type bulkEmployeeRepository interface {
	ExistsByEmailOrEmployeeID(ctx context.Context, email, employeeID string) (bool, error)
	Create(ctx context.Context, employee *models.Employee) error
}

// BulkImportService registers interns and employees from uploaded
// spreadsheets. Every data row lands in exactly one of the result lists;
// one bad row never aborts the rest of the file.
type BulkImportService struct {
	interns   bulkInternRepository
	batches   bulkRosterRepository
	employees bulkEmployeeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBulkImportService constructs the bulk import service.
func NewBulkImportService(interns bulkInternRepository, batches bulkRosterRepository, employees bulkEmployeeRepository, validate *validator.Validate, logger *zap.Logger) *BulkImportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkImportService{interns: interns, batches: batches, employees: employees, validator: validate, logger: logger}
}

// RegisterInterns provisions intern accounts from a spreadsheet and links
// them to the target batch. A row whose email already belongs to an intern
// is not an error: the existing account is linked to the batch instead.
// An existing intern already on the roster is a row error. Accounts get the
// supplied password, or the email local part when the column is absent.
func (s *BulkImportService) RegisterInterns(ctx context.Context, batchID string, fileData []byte) (*models.BulkRegistrationResult, error) {
	if _, err := s.batches.FindByID(ctx, batchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}

	sheet, err := spreadsheet.Decode(fileData, internColumns)
	if err != nil {
		return nil, err
	}

	result := &models.BulkRegistrationResult{Registered: []models.RegisteredRow{}, Errors: []string{}}
	for _, row := range sheet.Rows() {
		name := row.Get("name")
		email := normalizeEmail(row.Get("email"))
		switch {
		case name == "":
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: name is required", row.Number))
			continue
		case email == "":
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: email is required", row.Number))
			continue
		case !validEmail(email):
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid email %q", row.Number, row.Get("email")))
			continue
		}

		existing, err := s.interns.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: lookup failed", row.Number))
			continue
		}

		if existing != nil {
			linked, err := s.interns.HasBatch(ctx, existing.ID, batchID)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: lookup failed", row.Number))
				continue
			}
			if linked {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s already assigned to this batch", row.Number, existing.Email))
				continue
			}
			if err := s.link(ctx, existing.ID, batchID); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: failed to link existing intern", row.Number))
				continue
			}
			result.Registered = append(result.Registered, models.RegisteredRow{Name: existing.Name, Email: existing.Email, Status: "linked"})
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(rowPassword(row, email)), bcrypt.DefaultCost)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: failed to provision account", row.Number))
			continue
		}
		intern := &models.Intern{Name: name, Email: email, PasswordHash: string(hash), Role: models.RoleIntern}
		if err := s.interns.Create(ctx, intern); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: failed to create intern", row.Number))
			continue
		}
		if err := s.link(ctx, intern.ID, batchID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: intern created but batch link failed", row.Number))
			continue
		}
		result.Registered = append(result.Registered, models.RegisteredRow{Name: name, Email: email, Status: "registered"})
	}
	return result, nil
}

// RegisterEmployees provisions employee accounts from a spreadsheet under
// the acting admin. Rows whose email or employee id is already taken are
// reported as row errors, never silently merged.
func (s *BulkImportService) RegisterEmployees(ctx context.Context, adminID string, fileData []byte) (*models.BulkRegistrationResult, error) {
	sheet, err := spreadsheet.Decode(fileData, employeeColumns)
	if err != nil {
		return nil, err
	}

	result := &models.BulkRegistrationResult{Registered: []models.RegisteredRow{}, Errors: []string{}}
	for _, row := range sheet.Rows() {
		employeeID := row.Get("employee_id")
		name := row.Get("name")
		email := normalizeEmail(row.Get("email"))
		switch {
		case employeeID == "":
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: employee id is required", row.Number))
			continue
		case name == "":
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: name is required", row.Number))
			continue
		case email == "":
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: email is required", row.Number))
			continue
		case !validEmail(email):
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid email %q", row.Number, row.Get("email")))
			continue
		case row.Get("designation") == "":
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: designation is required", row.Number))
			continue
		case row.Get("department") == "":
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: department is required", row.Number))
			continue
		}

		var joiningDate *time.Time
		if cell := row.Get("joining_date"); cell != "" {
			parsed, err := parseJoiningDate(cell)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid joining date %q", row.Number, cell))
				continue
			}
			joiningDate = &parsed
		}

		exists, err := s.employees.ExistsByEmailOrEmployeeID(ctx, email, employeeID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: lookup failed", row.Number))
			continue
		}
		if exists {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: email or employee id already registered", row.Number))
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(rowPassword(row, email)), bcrypt.DefaultCost)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: failed to provision account", row.Number))
			continue
		}
		employee := &models.Employee{
			EmployeeID:   employeeID,
			Name:         name,
			Email:        email,
			PasswordHash: string(hash),
			Designation:  row.Get("designation"),
			Department:   row.Get("department"),
			Skills:       splitSkills(row.Get("skills")),
			MobileNo:     row.Get("mobile_no"),
			JoiningDate:  joiningDate,
			Address:      row.Get("address"),
			Role:         models.RoleEmployee,
			AdminID:      adminID,
		}
		if err := s.employees.Create(ctx, employee); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: failed to create employee", row.Number))
			continue
		}
		result.Registered = append(result.Registered, models.RegisteredRow{EmployeeID: employeeID, Name: name, Email: email, Status: "registered"})
	}
	return result, nil
}

// link writes both sides of the intern/batch membership.
func (s *BulkImportService) link(ctx context.Context, internID, batchID string) error {
	if err := s.interns.AddBatch(ctx, internID, batchID); err != nil {
		return err
	}
	return s.batches.AddStudent(ctx, batchID, internID)
}
