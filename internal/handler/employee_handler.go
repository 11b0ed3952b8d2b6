package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workbridge/ims-api/internal/service"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
	"github.com/workbridge/ims-api/pkg/response"
)

// EmployeeHandler exposes employee account endpoints. Writes are scoped to
// the admin who owns the record.
type EmployeeHandler struct {
	employees *service.EmployeeService
}

// NewEmployeeHandler constructs EmployeeHandler.
func NewEmployeeHandler(employees *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// Create godoc
// @Summary Register an employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param payload body service.CreateEmployeeRequest true "Employee payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid employee payload"))
		return
	}

	employee, err := h.employees.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, employee)
}

// List godoc
// @Summary List employees registered by the calling admin
// @Tags Employees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	employees, err := h.employees.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employees, nil)
}

// Get godoc
// @Summary Get employee detail
// @Tags Employees
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	employee, err := h.employees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Update godoc
// @Summary Update an employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param payload body service.UpdateEmployeeRequest true "Employee payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /employees/{id} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	var req service.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid employee payload"))
		return
	}

	employee, err := h.employees.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Delete godoc
// @Summary Delete an employee with their attendance
// @Tags Employees
// @Param id path string true "Employee ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) Delete(c *gin.Context) {
	if err := h.employees.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
