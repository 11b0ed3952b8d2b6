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

type batchRepository interface {
	Create(ctx context.Context, batch *models.Batch) error
	ExistsByNameAndSequence(ctx context.Context, batchName string, sequenceNumber int) (bool, error)
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	List(ctx context.Context) ([]models.Batch, error)
	ListByStatus(ctx context.Context, status models.BatchStatus) ([]models.Batch, error)
	Update(ctx context.Context, batch *models.Batch) error
	UpdateStatus(ctx context.Context, id string, status models.BatchStatus) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	StudentIDs(ctx context.Context, batchID string) ([]string, error)
}

type batchInternRepository interface {
	ListByBatch(ctx context.Context, batchID string) ([]models.Intern, error)
	RemoveBatchFromAll(ctx context.Context, batchID string) (int64, error)
}

type batchTeacherLinkRepository interface {
	RemoveBatchFromAll(ctx context.Context, batchID string) error
}

type batchAttendanceRepository interface {
	ListForDate(ctx context.Context, kind models.PersonKind, personIDs []string, date time.Time) ([]models.AttendanceEntry, error)
}

// CreateBatchRequest holds payload for creating a batch.
type CreateBatchRequest struct {
	BatchName      string     `json:"batch_name" validate:"required"`
	ScheduleTitle  string     `json:"schedule_title"`
	ModeOfBatch    string     `json:"mode_of_batch" validate:"required"`
	SequenceNumber int        `json:"sequence_number" validate:"required,min=1"`
	Location       string     `json:"location"`
	Subject        string     `json:"subject"`
	Duration       string     `json:"duration"`
	StartDate      time.Time  `json:"start_date" validate:"required"`
	EndDate        time.Time  `json:"end_date" validate:"required"`
	TimeSlot       string     `json:"time"`
	TeacherID      *string    `json:"teacher_id"`
	Description    string     `json:"description"`
}

// UpdateBatchRequest holds payload for updating a batch.
type UpdateBatchRequest struct {
	BatchName      string    `json:"batch_name" validate:"required"`
	ScheduleTitle  string    `json:"schedule_title"`
	ModeOfBatch    string    `json:"mode_of_batch" validate:"required"`
	SequenceNumber int       `json:"sequence_number" validate:"required,min=1"`
	Location       string    `json:"location"`
	Subject        string    `json:"subject"`
	Duration       string    `json:"duration"`
	StartDate      time.Time `json:"start_date" validate:"required"`
	EndDate        time.Time `json:"end_date" validate:"required"`
	TimeSlot       string    `json:"time"`
	TeacherID      *string   `json:"teacher_id"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
}

// BatchService handles batch lifecycle and the roster day view.
type BatchService struct {
	repo       batchRepository
	interns    batchInternRepository
	teachers   batchTeacherLinkRepository
	attendance batchAttendanceRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewBatchService constructs the batch service.
func NewBatchService(repo batchRepository, interns batchInternRepository, teachers batchTeacherLinkRepository, attendance batchAttendanceRepository, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{repo: repo, interns: interns, teachers: teachers, attendance: attendance, validator: validate, logger: logger}
}

// Create registers a new batch. The (batch_name, sequence_number) pair must
// be unique.
func (s *BatchService) Create(ctx context.Context, req CreateBatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	if !models.BatchMode(req.ModeOfBatch).Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid mode of batch")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}
	exists, err := s.repo.ExistsByNameAndSequence(ctx, req.BatchName, req.SequenceNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check batch")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "batch with this name and sequence number already exists")
	}
	batch := &models.Batch{
		BatchName:      req.BatchName,
		ScheduleTitle:  req.ScheduleTitle,
		ModeOfBatch:    models.BatchMode(req.ModeOfBatch),
		SequenceNumber: req.SequenceNumber,
		Location:       req.Location,
		Subject:        req.Subject,
		Duration:       req.Duration,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		TimeSlot:       req.TimeSlot,
		TeacherID:      req.TeacherID,
		Description:    req.Description,
		Status:         models.BatchStatusUpcoming,
	}
	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create batch")
	}
	return batch, nil
}

// Get returns one batch with its roster ids.
func (s *BatchService) Get(ctx context.Context, id string) (*models.Batch, error) {
	batch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	return batch, nil
}

// List returns batches, optionally filtered by lifecycle status.
func (s *BatchService) List(ctx context.Context, status string) ([]models.Batch, error) {
	if status != "" {
		if !models.BatchStatus(status).Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid batch status")
		}
		batches, err := s.repo.ListByStatus(ctx, models.BatchStatus(status))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
		}
		return batches, nil
	}
	batches, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	return batches, nil
}

// Update modifies a batch. Changing the (batch_name, sequence_number) pair
// re-checks uniqueness.
func (s *BatchService) Update(ctx context.Context, id string, req UpdateBatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	if !models.BatchMode(req.ModeOfBatch).Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid mode of batch")
	}
	batch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if req.BatchName != batch.BatchName || req.SequenceNumber != batch.SequenceNumber {
		exists, err := s.repo.ExistsByNameAndSequence(ctx, req.BatchName, req.SequenceNumber)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check batch")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "batch with this name and sequence number already exists")
		}
	}
	batch.BatchName = req.BatchName
	batch.ScheduleTitle = req.ScheduleTitle
	batch.ModeOfBatch = models.BatchMode(req.ModeOfBatch)
	batch.SequenceNumber = req.SequenceNumber
	batch.Location = req.Location
	batch.Subject = req.Subject
	batch.Duration = req.Duration
	batch.StartDate = req.StartDate
	batch.EndDate = req.EndDate
	batch.TimeSlot = req.TimeSlot
	batch.TeacherID = req.TeacherID
	batch.Description = req.Description
	if req.Status != "" {
		if !models.BatchStatus(req.Status).Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid batch status")
		}
		batch.Status = models.BatchStatus(req.Status)
	}
	if err := s.repo.Update(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update batch")
	}
	return batch, nil
}

// UpdateStatus moves a batch through its lifecycle.
func (s *BatchService) UpdateStatus(ctx context.Context, id string, status string) error {
	if !models.BatchStatus(status).Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "invalid batch status")
	}
	if err := s.repo.UpdateStatus(ctx, id, models.BatchStatus(status)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}
	return nil
}

// Delete removes a batch with its roster rows and person-side links.
func (s *BatchService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if _, err := s.interns.RemoveBatchFromAll(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unlink interns")
	}
	if err := s.teachers.RemoveBatchFromAll(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unlink teachers")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete batch")
	}
	return nil
}

// DeleteAll removes every batch, returning the removed count.
func (s *BatchService) DeleteAll(ctx context.Context) (int64, error) {
	count, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete batches")
	}
	return count, nil
}

// DayView resolves each roster member's status for one date, reporting
// "Not Marked" for interns without a ledger entry.
func (s *BatchService) DayView(ctx context.Context, batchID string, date time.Time) ([]models.BatchDayStatus, error) {
	interns, err := s.interns.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batch interns")
	}
	ids := make([]string, 0, len(interns))
	for _, intern := range interns {
		ids = append(ids, intern.ID)
	}
	entries, err := s.attendance.ListForDate(ctx, models.KindIntern, ids, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	byPerson := make(map[string]models.AttendanceStatus, len(entries))
	for _, entry := range entries {
		byPerson[entry.PersonID] = entry.Status
	}
	view := make([]models.BatchDayStatus, 0, len(interns))
	for _, intern := range interns {
		status := "Not Marked"
		if st, ok := byPerson[intern.ID]; ok {
			status = string(st)
		}
		view = append(view, models.BatchDayStatus{
			InternID: intern.ID,
			Name:     intern.Name,
			Email:    intern.Email,
			Status:   status,
		})
	}
	return view, nil
}
