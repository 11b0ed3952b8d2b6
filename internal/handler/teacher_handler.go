package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workbridge/ims-api/internal/service"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
	"github.com/workbridge/ims-api/pkg/response"
)

// TeacherHandler exposes teacher account, assignment, and roll-up endpoints.
type TeacherHandler struct {
	teachers *service.TeacherService
}

// NewTeacherHandler constructs TeacherHandler.
func NewTeacherHandler(teachers *service.TeacherService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers}
}

// Create godoc
// @Summary Register a teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param payload body service.CreateTeacherRequest true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /teachers [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var req service.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher payload"))
		return
	}

	teacher, err := h.teachers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// List godoc
// @Summary List teachers
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, err := h.teachers.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// Get godoc
// @Summary Get teacher detail
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Update godoc
// @Summary Update a teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body service.UpdateTeacherRequest true "Teacher payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id} [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	var req service.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher payload"))
		return
	}

	teacher, err := h.teachers.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Delete godoc
// @Summary Delete a teacher
// @Tags Teachers
// @Param id path string true "Teacher ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id} [delete]
func (h *TeacherHandler) Delete(c *gin.Context) {
	if err := h.teachers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignBatch godoc
// @Summary Assign a teacher to a batch
// @Tags Teachers
// @Param id path string true "Teacher ID"
// @Param batchId path string true "Batch ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id}/batches/{batchId} [post]
func (h *TeacherHandler) AssignBatch(c *gin.Context) {
	if err := h.teachers.AssignBatch(c.Request.Context(), c.Param("id"), c.Param("batchId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UnassignBatch godoc
// @Summary Remove a teacher from a batch
// @Tags Teachers
// @Param id path string true "Teacher ID"
// @Param batchId path string true "Batch ID"
// @Success 204 {object} response.Envelope
// @Router /teachers/{id}/batches/{batchId} [delete]
func (h *TeacherHandler) UnassignBatch(c *gin.Context) {
	if err := h.teachers.UnassignBatch(c.Request.Context(), c.Param("id"), c.Param("batchId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Batches godoc
// @Summary List a teacher's batches
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/batches [get]
func (h *TeacherHandler) Batches(c *gin.Context) {
	batches, err := h.teachers.Batches(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batches, nil)
}

// Rollup godoc
// @Summary Get a teacher's class roll-up for one date
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Param date query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/rollup [get]
func (h *TeacherHandler) Rollup(c *gin.Context) {
	date, ok := dateQuery(c, "date")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
		return
	}

	rollup, err := h.teachers.Rollup(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rollup, nil)
}

// Rollups godoc
// @Summary List a teacher's class roll-ups over a range
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/rollups [get]
func (h *TeacherHandler) Rollups(c *gin.Context) {
	from, okFrom := dateQuery(c, "from")
	to, okTo := dateQuery(c, "to")
	if !okFrom || !okTo {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date range, expected YYYY-MM-DD"))
		return
	}

	rollups, err := h.teachers.Rollups(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rollups, nil)
}
