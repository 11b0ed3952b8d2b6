package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/workbridge/ims-api/internal/models"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
)

type noteRepository interface {
	Create(ctx context.Context, note *models.BatchNote) error
	FindByID(ctx context.Context, id string) (*models.BatchNote, error)
	ListByBatch(ctx context.Context, batchID string) ([]models.BatchNote, error)
	Delete(ctx context.Context, id string) error
}

type noteFileStore interface {
	Save(originalName string, data []byte) (string, error)
	Delete(path string) error
}

// CreateNoteRequest holds the text fields of a study material upload. The
// attachment bytes arrive separately from the multipart form.
type CreateNoteRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

// NoteService handles study materials attached to batches, storing uploaded
// files on the local filesystem.
type NoteService struct {
	repo      noteRepository
	batches   noticeBatchRepository
	files     noteFileStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoteService constructs the note service.
func NewNoteService(repo noteRepository, batches noticeBatchRepository, files noteFileStore, validate *validator.Validate, logger *zap.Logger) *NoteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{repo: repo, batches: batches, files: files, validator: validate, logger: logger}
}

// Create attaches a note to a batch, persisting the optional file first so a
// failed insert never leaves a dangling database row.
func (s *NoteService) Create(ctx context.Context, batchID, uploadedBy string, req CreateNoteRequest, fileName string, fileData []byte) (*models.BatchNote, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}
	if _, err := s.batches.FindByID(ctx, batchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	note := &models.BatchNote{
		BatchID:    batchID,
		Title:      req.Title,
		Content:    req.Content,
		UploadedBy: uploadedBy,
	}
	if len(fileData) > 0 {
		path, err := s.files.Save(fileName, fileData)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
		}
		note.FilePath = &path
	}
	if err := s.repo.Create(ctx, note); err != nil {
		if note.FilePath != nil {
			if cleanupErr := s.files.Delete(*note.FilePath); cleanupErr != nil {
				s.logger.Warn("orphaned note file left on disk", zap.String("path", *note.FilePath), zap.Error(cleanupErr))
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create note")
	}
	return note, nil
}

// Get returns one note.
func (s *NoteService) Get(ctx context.Context, id string) (*models.BatchNote, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load note")
	}
	return note, nil
}

// ListByBatch returns a batch's notes, newest first.
func (s *NoteService) ListByBatch(ctx context.Context, batchID string) ([]models.BatchNote, error) {
	notes, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notes")
	}
	return notes, nil
}

// Delete removes a note and its stored file.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load note")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete note")
	}
	if note.FilePath != nil {
		if err := s.files.Delete(*note.FilePath); err != nil {
			s.logger.Warn("failed to remove note file", zap.String("path", *note.FilePath), zap.Error(err))
		}
	}
	return nil
}
