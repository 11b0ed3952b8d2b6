package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workbridge/ims-api/internal/service"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
	"github.com/workbridge/ims-api/pkg/response"
)

// NoticeHandler exposes batch notice-board endpoints.
type NoticeHandler struct {
	notices *service.NoticeService
}

// NewNoticeHandler constructs NoticeHandler.
func NewNoticeHandler(notices *service.NoticeService) *NoticeHandler {
	return &NoticeHandler{notices: notices}
}

// Create godoc
// @Summary Post a notice to a batch board
// @Tags Notices
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param payload body service.CreateNoticeRequest true "Notice payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id}/notices [post]
func (h *NoticeHandler) Create(c *gin.Context) {
	var req service.CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notice payload"))
		return
	}

	notice, err := h.notices.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, notice)
}

// ListByBatch godoc
// @Summary List a batch's notices, newest first
// @Tags Notices
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/notices [get]
func (h *NoticeHandler) ListByBatch(c *gin.Context) {
	notices, err := h.notices.ListByBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notices, nil)
}

// Update godoc
// @Summary Update a notice
// @Tags Notices
// @Accept json
// @Produce json
// @Param id path string true "Notice ID"
// @Param payload body service.CreateNoticeRequest true "Notice payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notices/{id} [put]
func (h *NoticeHandler) Update(c *gin.Context) {
	var req service.CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notice payload"))
		return
	}

	notice, err := h.notices.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notice, nil)
}

// Delete godoc
// @Summary Delete a notice
// @Tags Notices
// @Param id path string true "Notice ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notices/{id} [delete]
func (h *NoticeHandler) Delete(c *gin.Context) {
	if err := h.notices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
