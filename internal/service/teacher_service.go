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
)

type teacherRepository interface {
	Create(ctx context.Context, teacher *models.Teacher) error
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindByEmail(ctx context.Context, email string) (*models.Teacher, error)
	List(ctx context.Context) ([]models.Teacher, error)
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
	AddBatch(ctx context.Context, teacherID, batchID string) error
	RemoveBatch(ctx context.Context, teacherID, batchID string) error
	FindRollup(ctx context.Context, teacherID string, date time.Time) (*models.TeacherRollup, error)
	ListRollups(ctx context.Context, teacherID string, from, to time.Time) ([]models.TeacherRollup, error)
}

type teacherBatchRepository interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Batch, error)
	SetTeacher(ctx context.Context, id string, teacherID *string) error
	UnassignTeacher(ctx context.Context, teacherID string) error
}

// CreateTeacherRequest holds payload for registering a teacher. When the
// password is omitted it defaults to the email's local part.
type CreateTeacherRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password"`
	BatchID  *string `json:"batch_id"`
}

// UpdateTeacherRequest holds payload for updating a teacher's profile.
type UpdateTeacherRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
}

// TeacherService handles teacher accounts, batch assignment, and class
// roll-up reporting.
type TeacherService struct {
	repo      teacherRepository
	batches   teacherBatchRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(repo teacherRepository, batches teacherBatchRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, batches: batches, validator: validate, logger: logger}
}

// Create registers a new teacher account.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if req.BatchID != nil {
		if _, err := s.batches.FindByID(ctx, *req.BatchID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
		}
	}
	password := req.Password
	if password == "" {
		password = emailLocalPart(req.Email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	teacher := &models.Teacher{Name: req.Name, Email: req.Email, PasswordHash: string(hash), Role: models.RoleTeacher}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	if req.BatchID != nil {
		if err := s.repo.AddBatch(ctx, teacher.ID, *req.BatchID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "teacher created but batch link failed")
		}
		if err := s.batches.SetTeacher(ctx, *req.BatchID, &teacher.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "teacher linked but batch update failed")
		}
		teacher.BatchIDs = append(teacher.BatchIDs, *req.BatchID)
	}
	return teacher, nil
}

// Get returns one teacher with their batch links.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// List returns every teacher.
func (s *TeacherService) List(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

// Update modifies a teacher's profile.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if req.Email != teacher.Email {
		if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
	}
	teacher.Name = req.Name
	teacher.Email = req.Email
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		teacher.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return teacher, nil
}

// Delete removes a teacher and clears the teacher pointer on their batches.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if err := s.batches.UnassignTeacher(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unassign batches")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	return nil
}

// AssignBatch gives a teacher a batch, writing both the link row and the
// batch's teacher pointer.
func (s *TeacherService) AssignBatch(ctx context.Context, teacherID, batchID string) error {
	if _, err := s.repo.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if _, err := s.batches.FindByID(ctx, batchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if err := s.repo.AddBatch(ctx, teacherID, batchID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link teacher")
	}
	if err := s.batches.SetTeacher(ctx, batchID, &teacherID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "teacher linked but batch update failed")
	}
	return nil
}

// UnassignBatch removes the teacher from a batch on both sides.
func (s *TeacherService) UnassignBatch(ctx context.Context, teacherID, batchID string) error {
	if err := s.repo.RemoveBatch(ctx, teacherID, batchID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unlink teacher")
	}
	if err := s.batches.SetTeacher(ctx, batchID, nil); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "teacher unlinked but batch update failed")
	}
	return nil
}

// Batches returns the batches a teacher currently holds.
func (s *TeacherService) Batches(ctx context.Context, teacherID string) ([]models.Batch, error) {
	batches, err := s.batches.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher batches")
	}
	return batches, nil
}

// Rollup returns the class counters for one date, or nil when unmarked.
func (s *TeacherService) Rollup(ctx context.Context, teacherID string, date time.Time) (*models.TeacherRollup, error) {
	rollup, err := s.repo.FindRollup(ctx, teacherID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roll-up")
	}
	return rollup, nil
}

// Rollups returns the class counters across an inclusive date window.
func (s *TeacherService) Rollups(ctx context.Context, teacherID string, from, to time.Time) ([]models.TeacherRollup, error) {
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrInvalidDate, "end date precedes start date")
	}
	rollups, err := s.repo.ListRollups(ctx, teacherID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roll-ups")
	}
	return rollups, nil
}
