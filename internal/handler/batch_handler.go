package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workbridge/ims-api/internal/service"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
	"github.com/workbridge/ims-api/pkg/response"
)

// BatchHandler exposes batch lifecycle and day-view endpoints.
type BatchHandler struct {
	batches *service.BatchService
}

// NewBatchHandler constructs BatchHandler.
func NewBatchHandler(batches *service.BatchService) *BatchHandler {
	return &BatchHandler{batches: batches}
}

// Create godoc
// @Summary Create a batch
// @Tags Batches
// @Accept json
// @Produce json
// @Param payload body service.CreateBatchRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /batches [post]
func (h *BatchHandler) Create(c *gin.Context) {
	var req service.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}

	batch, err := h.batches.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, batch)
}

// List godoc
// @Summary List batches
// @Tags Batches
// @Produce json
// @Param status query string false "Filter by lifecycle status"
// @Success 200 {object} response.Envelope
// @Router /batches [get]
func (h *BatchHandler) List(c *gin.Context) {
	batches, err := h.batches.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batches, nil)
}

// Get godoc
// @Summary Get batch detail with roster ids
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id} [get]
func (h *BatchHandler) Get(c *gin.Context) {
	batch, err := h.batches.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Update godoc
// @Summary Update a batch
// @Tags Batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param payload body service.UpdateBatchRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /batches/{id} [put]
func (h *BatchHandler) Update(c *gin.Context) {
	var req service.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}

	batch, err := h.batches.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// UpdateStatus godoc
// @Summary Move a batch through its lifecycle
// @Tags Batches
// @Accept json
// @Param id path string true "Batch ID"
// @Param payload body object true "Status payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id}/status [patch]
func (h *BatchHandler) UpdateStatus(c *gin.Context) {
	var payload struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "status required"))
		return
	}

	if err := h.batches.UpdateStatus(c.Request.Context(), c.Param("id"), payload.Status); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a batch and its roster links
// @Tags Batches
// @Param id path string true "Batch ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id} [delete]
func (h *BatchHandler) Delete(c *gin.Context) {
	if err := h.batches.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteAll godoc
// @Summary Delete every batch
// @Tags Batches
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /batches [delete]
func (h *BatchHandler) DeleteAll(c *gin.Context) {
	count, err := h.batches.DeleteAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": count}, nil)
}

// DayView godoc
// @Summary Roster statuses for one date
// @Description Each roster member with their attendance status, "Not Marked" when absent from the ledger.
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Param date query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/day [get]
func (h *BatchHandler) DayView(c *gin.Context) {
	date, ok := dateQuery(c, "date")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
		return
	}

	view, err := h.batches.DayView(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
