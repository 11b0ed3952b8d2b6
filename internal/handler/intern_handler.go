package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workbridge/ims-api/internal/service"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
	"github.com/workbridge/ims-api/pkg/response"
)

// InternHandler exposes intern account and batch membership endpoints.
type InternHandler struct {
	interns *service.InternService
}

// NewInternHandler constructs InternHandler.
func NewInternHandler(interns *service.InternService) *InternHandler {
	return &InternHandler{interns: interns}
}

// Create godoc
// @Summary Register an intern
// @Tags Interns
// @Accept json
// @Produce json
// @Param payload body service.CreateInternRequest true "Intern payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /interns [post]
func (h *InternHandler) Create(c *gin.Context) {
	var req service.CreateInternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid intern payload"))
		return
	}

	intern, err := h.interns.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, intern)
}

// List godoc
// @Summary List interns
// @Tags Interns
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /interns [get]
func (h *InternHandler) List(c *gin.Context) {
	interns, err := h.interns.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, interns, nil)
}

// Get godoc
// @Summary Get intern detail
// @Tags Interns
// @Produce json
// @Param id path string true "Intern ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interns/{id} [get]
func (h *InternHandler) Get(c *gin.Context) {
	intern, err := h.interns.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intern, nil)
}

// Update godoc
// @Summary Update an intern
// @Tags Interns
// @Accept json
// @Produce json
// @Param id path string true "Intern ID"
// @Param payload body service.UpdateInternRequest true "Intern payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interns/{id} [put]
func (h *InternHandler) Update(c *gin.Context) {
	var req service.UpdateInternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid intern payload"))
		return
	}

	intern, err := h.interns.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intern, nil)
}

// Delete godoc
// @Summary Delete an intern
// @Tags Interns
// @Param id path string true "Intern ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interns/{id} [delete]
func (h *InternHandler) Delete(c *gin.Context) {
	if err := h.interns.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteAll godoc
// @Summary Delete every intern
// @Tags Interns
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /interns [delete]
func (h *InternHandler) DeleteAll(c *gin.Context) {
	count, err := h.interns.DeleteAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": count}, nil)
}

// ListByBatch godoc
// @Summary List a batch's roster
// @Tags Interns
// @Param id path string true "Batch ID"
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id}/interns [get]
func (h *InternHandler) ListByBatch(c *gin.Context) {
	interns, err := h.interns.ListByBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, interns, nil)
}

// DeleteByBatch godoc
// @Summary Delete every intern on a batch's roster
// @Tags Interns
// @Param id path string true "Batch ID"
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id}/interns [delete]
func (h *InternHandler) DeleteByBatch(c *gin.Context) {
	count, err := h.interns.DeleteByBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": count}, nil)
}

// AssignBatch godoc
// @Summary Link an intern to a batch
// @Tags Interns
// @Param id path string true "Intern ID"
// @Param batchId path string true "Batch ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interns/{id}/batches/{batchId} [post]
func (h *InternHandler) AssignBatch(c *gin.Context) {
	if err := h.interns.AssignBatch(c.Request.Context(), c.Param("id"), c.Param("batchId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UnassignBatch godoc
// @Summary Unlink an intern from a batch
// @Tags Interns
// @Param id path string true "Intern ID"
// @Param batchId path string true "Batch ID"
// @Success 204 {object} response.Envelope
// @Router /interns/{id}/batches/{batchId} [delete]
func (h *InternHandler) UnassignBatch(c *gin.Context) {
	if err := h.interns.UnassignBatch(c.Request.Context(), c.Param("id"), c.Param("batchId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
