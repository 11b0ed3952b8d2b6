package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/workbridge/ims-api/internal/models"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
)

type noticeRepository interface {
	Create(ctx context.Context, notice *models.Notice) error
	ListByBatch(ctx context.Context, batchID string) ([]models.Notice, error)
	Update(ctx context.Context, notice *models.Notice) error
	Delete(ctx context.Context, id string) error
}

type noticeBatchRepository interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
}

// CreateNoticeRequest holds payload for posting a notice to a batch.
type CreateNoticeRequest struct {
	Title   string    `json:"title" validate:"required"`
	Details string    `json:"details" validate:"required"`
	Date    time.Time `json:"date" validate:"required"`
}

// NoticeService handles batch notice boards.
type NoticeService struct {
	repo      noticeRepository
	batches   noticeBatchRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoticeService constructs the notice service.
func NewNoticeService(repo noticeRepository, batches noticeBatchRepository, validate *validator.Validate, logger *zap.Logger) *NoticeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoticeService{repo: repo, batches: batches, validator: validate, logger: logger}
}

// Create posts a notice to a batch.
func (s *NoticeService) Create(ctx context.Context, batchID string, req CreateNoticeRequest) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}
	if _, err := s.batches.FindByID(ctx, batchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	notice := &models.Notice{
		BatchID: batchID,
		Title:   req.Title,
		Details: req.Details,
		Date:    req.Date,
	}
	if err := s.repo.Create(ctx, notice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notice")
	}
	return notice, nil
}

// ListByBatch returns a batch's notices, newest first.
func (s *NoticeService) ListByBatch(ctx context.Context, batchID string) ([]models.Notice, error) {
	notices, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notices")
	}
	return notices, nil
}

// Update rewrites a notice.
func (s *NoticeService) Update(ctx context.Context, id string, req CreateNoticeRequest) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}
	notice := &models.Notice{
		ID:      id,
		Title:   req.Title,
		Details: req.Details,
		Date:    req.Date,
	}
	if err := s.repo.Update(ctx, notice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notice")
	}
	return notice, nil
}

// Delete removes a notice.
func (s *NoticeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notice")
	}
	return nil
}
