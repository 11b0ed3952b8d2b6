package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/workbridge/ims-api/internal/models"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
)

type internRepository interface {
	Create(ctx context.Context, intern *models.Intern) error
	FindByID(ctx context.Context, id string) (*models.Intern, error)
	FindByEmail(ctx context.Context, email string) (*models.Intern, error)
	List(ctx context.Context) ([]models.Intern, error)
	ListByBatch(ctx context.Context, batchID string) ([]models.Intern, error)
	Update(ctx context.Context, intern *models.Intern) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	AddBatch(ctx context.Context, internID, batchID string) error
	RemoveBatch(ctx context.Context, internID, batchID string) error
	BatchIDs(ctx context.Context, internID string) ([]string, error)
	HasBatch(ctx context.Context, internID, batchID string) (bool, error)
}

type internRosterRepository interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	AddStudent(ctx context.Context, batchID, internID string) error
	RemoveStudent(ctx context.Context, batchID, internID string) error
	RemoveStudentFromAll(ctx context.Context, internID string) error
}

type internLedgerRepository interface {
	ClearForPerson(ctx context.Context, kind models.PersonKind, personID string) (int64, error)
	ClearKind(ctx context.Context, kind models.PersonKind) (int64, error)
}

// CreateInternRequest holds payload for registering an intern. When the
// password is omitted it defaults to the email's local part.
type CreateInternRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password"`
	BatchIDs []string `json:"batch_ids"`
}

// UpdateInternRequest holds payload for updating an intern's profile. A
// non-nil BatchIDs replaces the intern's batch set, adding and removing
// links on both sides.
type UpdateInternRequest struct {
	Name     string    `json:"name" validate:"required"`
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password"`
	BatchIDs *[]string `json:"batch_ids"`
}

// InternService handles intern accounts and their batch membership. Roster
// membership is written on both sides of the link; a failure on the second
// write is reported to the caller rather than rolled back.
type InternService struct {
	repo      internRepository
	batches   internRosterRepository
	ledger    internLedgerRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInternService constructs the intern service.
func NewInternService(repo internRepository, batches internRosterRepository, ledger internLedgerRepository, validate *validator.Validate, logger *zap.Logger) *InternService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InternService{repo: repo, batches: batches, ledger: ledger, validator: validate, logger: logger}
}

// Create registers a new intern account.
func (s *InternService) Create(ctx context.Context, req CreateInternRequest) (*models.Intern, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid intern payload")
	}
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	password := req.Password
	if password == "" {
		password = emailLocalPart(req.Email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	for _, batchID := range req.BatchIDs {
		if _, err := s.batches.FindByID(ctx, batchID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
		}
	}
	intern := &models.Intern{Name: req.Name, Email: req.Email, PasswordHash: string(hash), Role: models.RoleIntern}
	if err := s.repo.Create(ctx, intern); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create intern")
	}
	for _, batchID := range req.BatchIDs {
		if err := s.link(ctx, intern.ID, batchID); err != nil {
			return nil, err
		}
	}
	intern.BatchIDs = req.BatchIDs
	return intern, nil
}

// Get returns one intern with their batch links.
func (s *InternService) Get(ctx context.Context, id string) (*models.Intern, error) {
	intern, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intern")
	}
	return intern, nil
}

// List returns every intern.
func (s *InternService) List(ctx context.Context) ([]models.Intern, error) {
	interns, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list interns")
	}
	return interns, nil
}

// ListByBatch returns the interns on a batch's roster.
func (s *InternService) ListByBatch(ctx context.Context, batchID string) ([]models.Intern, error) {
	if _, err := s.batches.FindByID(ctx, batchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	interns, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batch interns")
	}
	return interns, nil
}

// Update modifies an intern's profile. The password changes only when the
// request supplies one.
func (s *InternService) Update(ctx context.Context, id string, req UpdateInternRequest) (*models.Intern, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid intern payload")
	}
	intern, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intern")
	}
	if req.Email != intern.Email {
		if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
	}
	intern.Name = req.Name
	intern.Email = req.Email
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		intern.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, intern); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update intern")
	}
	if req.BatchIDs != nil {
		if err := s.reconcileBatches(ctx, id, *req.BatchIDs); err != nil {
			return nil, err
		}
		intern.BatchIDs = *req.BatchIDs
	}
	return intern, nil
}

// reconcileBatches replaces the intern's batch set, adding missing links and
// removing stale ones on both sides.
func (s *InternService) reconcileBatches(ctx context.Context, internID string, want []string) error {
	current, err := s.repo.BatchIDs(ctx, internID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch links")
	}
	wanted := make(map[string]struct{}, len(want))
	for _, id := range want {
		wanted[id] = struct{}{}
	}
	existing := make(map[string]struct{}, len(current))
	for _, id := range current {
		existing[id] = struct{}{}
	}
	for _, id := range want {
		if _, ok := existing[id]; ok {
			continue
		}
		if _, err := s.batches.FindByID(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
		}
		if err := s.link(ctx, internID, id); err != nil {
			return err
		}
	}
	for _, id := range current {
		if _, ok := wanted[id]; ok {
			continue
		}
		if err := s.unlink(ctx, internID, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an intern, their roster rows, and their ledger.
func (s *InternService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intern")
	}
	if err := s.batches.RemoveStudentFromAll(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear rosters")
	}
	if _, err := s.ledger.ClearForPerson(ctx, models.KindIntern, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear attendance")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete intern")
	}
	return nil
}

// DeleteAll removes every intern along with their ledgers, returning the
// removed count.
func (s *InternService) DeleteAll(ctx context.Context) (int64, error) {
	if _, err := s.ledger.ClearKind(ctx, models.KindIntern); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear attendance")
	}
	count, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete interns")
	}
	return count, nil
}

// AssignBatch links an intern to a batch on both sides. Linking twice is a
// conflict.
func (s *InternService) AssignBatch(ctx context.Context, internID, batchID string) error {
	if _, err := s.repo.FindByID(ctx, internID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intern")
	}
	if _, err := s.batches.FindByID(ctx, batchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	linked, err := s.repo.HasBatch(ctx, internID, batchID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check batch link")
	}
	if linked {
		return appErrors.Clone(appErrors.ErrConflict, "intern already assigned to this batch")
	}
	return s.link(ctx, internID, batchID)
}

// UnassignBatch removes the link on both sides. Removing an absent link is a
// conflict.
func (s *InternService) UnassignBatch(ctx context.Context, internID, batchID string) error {
	linked, err := s.repo.HasBatch(ctx, internID, batchID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check batch link")
	}
	if !linked {
		return appErrors.Clone(appErrors.ErrConflict, "intern is not assigned to this batch")
	}
	return s.unlink(ctx, internID, batchID)
}

// DeleteByBatch removes every intern on a batch's roster along with their
// links and ledgers, returning the removed count.
func (s *InternService) DeleteByBatch(ctx context.Context, batchID string) (int64, error) {
	if _, err := s.batches.FindByID(ctx, batchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	interns, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batch interns")
	}
	var removed int64
	for _, intern := range interns {
		if err := s.Delete(ctx, intern.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *InternService) link(ctx context.Context, internID, batchID string) error {
	if err := s.repo.AddBatch(ctx, internID, batchID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link intern")
	}
	if err := s.batches.AddStudent(ctx, batchID, internID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "intern linked but roster update failed")
	}
	return nil
}

func (s *InternService) unlink(ctx context.Context, internID, batchID string) error {
	if err := s.repo.RemoveBatch(ctx, internID, batchID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unlink intern")
	}
	if err := s.batches.RemoveStudent(ctx, batchID, internID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "intern unlinked but roster update failed")
	}
	return nil
}
