package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workbridge/ims-api/internal/service"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
	"github.com/workbridge/ims-api/pkg/response"
)

// NoteHandler exposes batch study-material endpoints. Notes are uploaded as
// multipart forms carrying a title, optional content, and an attachment.
type NoteHandler struct {
	notes   *service.NoteService
	maxSize int64
}

// NewNoteHandler constructs NoteHandler.
func NewNoteHandler(notes *service.NoteService, maxSize int64) *NoteHandler {
	return &NoteHandler{notes: notes, maxSize: maxSize}
}

// Create godoc
// @Summary Upload a study note to a batch
// @Tags Notes
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Batch ID"
// @Param title formData string true "Title"
// @Param content formData string false "Content"
// @Param file formData file true "Attachment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id}/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req := service.CreateNoteRequest{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "attachment required"))
		return
	}
	if header.Size == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidFile, "uploaded file is empty"))
		return
	}
	if h.maxSize > 0 && header.Size > h.maxSize {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidFile, "uploaded file exceeds the size limit"))
		return
	}

	data, err := readAll(header)
	if err != nil {
		response.Error(c, err)
		return
	}

	note, err := h.notes.Create(c.Request.Context(), c.Param("id"), claims.UserID, req, header.Filename, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// ListByBatch godoc
// @Summary List a batch's study notes
// @Tags Notes
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/notes [get]
func (h *NoteHandler) ListByBatch(c *gin.Context) {
	notes, err := h.notes.ListByBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notes, nil)
}

// Get godoc
// @Summary Get one study note
// @Tags Notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notes/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	note, err := h.notes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, note, nil)
}

// Delete godoc
// @Summary Delete a study note and its file
// @Tags Notes
// @Param id path string true "Note ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	if err := h.notes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
