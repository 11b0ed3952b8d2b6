package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workbridge/ims-api/internal/models"
	"github.com/workbridge/ims-api/internal/service"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
	"github.com/workbridge/ims-api/pkg/response"
)

// AttendanceHandler exposes the ledger: single marks, employee clocking,
// bulk marks with absence alerts, and range reports.
type AttendanceHandler struct {
	attendance    *service.AttendanceService
	notifications *service.NotificationService
	metrics       *service.MetricsService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, notifications *service.NotificationService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, notifications: notifications, metrics: metrics}
}

type bulkMarkPayload struct {
	Date  string             `json:"date" binding:"required"`
	Marks []service.BulkMark `json:"marks" binding:"required"`
}

// Mark returns a single-mark handler fixed to one person kind.
func (h *AttendanceHandler) Mark(kind models.PersonKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.MarkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
			return
		}

		entry, err := h.attendance.Mark(c.Request.Context(), kind, c.Param("id"), req)
		if err != nil {
			response.Error(c, err)
			return
		}
		h.metrics.RecordAttendanceWrite(string(kind), string(entry.Status))
		response.JSON(c, http.StatusOK, entry, nil)
	}
}

// Ledger returns a ledger handler fixed to one person kind.
func (h *AttendanceHandler) Ledger(kind models.PersonKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := h.attendance.Ledger(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, entries, nil)
	}
}

// ClearLedger returns a handler wiping one person's ledger for one kind.
func (h *AttendanceHandler) ClearLedger(kind models.PersonKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		removed, err := h.attendance.ClearLedger(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"deleted": removed}, nil)
	}
}

// ClearAll returns a handler wiping every ledger entry of one kind.
func (h *AttendanceHandler) ClearAll(kind models.PersonKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		removed, err := h.attendance.ClearAll(c.Request.Context(), kind)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"deleted": removed}, nil)
	}
}

// ClockIn godoc
// @Summary Clock in the calling employee
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/clock-in [post]
func (h *AttendanceHandler) ClockIn(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	entry, err := h.attendance.ClockIn(c.Request.Context(), claims.UserID, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordAttendanceWrite(string(models.KindEmployee), string(entry.Status))
	response.JSON(c, http.StatusOK, entry, nil)
}

// ClockOut godoc
// @Summary Clock out the calling employee
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/clock-out [post]
func (h *AttendanceHandler) ClockOut(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	entry, err := h.attendance.ClockOut(c.Request.Context(), claims.UserID, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// MyLedger godoc
// @Summary Attendance history of the calling user
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance/me [get]
func (h *AttendanceHandler) MyLedger(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	kind, err := kindForRole(claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries, err := h.attendance.Ledger(c.Request.Context(), kind, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// BulkMarkInterns godoc
// @Summary Mark a whole batch roster for one date
// @Description Upserts a ledger entry per listed intern and dispatches absence alerts for entries not yet notified.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param payload body bulkMarkPayload true "Marks"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id}/attendance [post]
func (h *AttendanceHandler) BulkMarkInterns(c *gin.Context) {
	var payload bulkMarkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk mark payload"))
		return
	}
	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
		return
	}

	result, tasks, err := h.attendance.BulkMarkInterns(c.Request.Context(), c.Param("id"), date, payload.Marks)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.recordBulk(models.KindIntern, result)

	result.Notifications = h.notifications.DispatchAbsences(c.Request.Context(), tasks)
	result.Summary.Notified = len(result.Notifications) > 0
	for _, outcome := range result.Notifications {
		h.metrics.RecordNotification(outcome.Channel, outcome.Status)
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// BulkMarkEmployees godoc
// @Summary Mark listed employees for one date
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body bulkMarkPayload true "Marks"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /employees/attendance [post]
func (h *AttendanceHandler) BulkMarkEmployees(c *gin.Context) {
	var payload bulkMarkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk mark payload"))
		return
	}
	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
		return
	}

	result, tasks, err := h.attendance.BulkMarkEmployees(c.Request.Context(), date, payload.Marks)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.recordBulk(models.KindEmployee, result)

	result.Notifications = h.notifications.DispatchAbsences(c.Request.Context(), tasks)
	result.Summary.Notified = len(result.Notifications) > 0
	for _, outcome := range result.Notifications {
		h.metrics.RecordNotification(outcome.Channel, outcome.Status)
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// Report godoc
// @Summary Aggregate attendance over a daily, weekly, or monthly window
// @Tags Attendance
// @Produce json
// @Param kind path string true "Person kind (interns or employees)"
// @Param period query string false "daily, weekly, or monthly" default(daily)
// @Param date query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/{kind} [get]
func (h *AttendanceHandler) Report(c *gin.Context) {
	kind, period, ref, err := h.reportParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.attendance.Report(c.Request.Context(), kind, period, ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// ExportReport godoc
// @Summary Download a range report as PDF
// @Tags Attendance
// @Produce application/pdf
// @Param kind path string true "Person kind (interns or employees)"
// @Param period query string false "daily, weekly, or monthly" default(daily)
// @Param date query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /reports/{kind}/export [get]
func (h *AttendanceHandler) ExportReport(c *gin.Context) {
	kind, period, ref, err := h.reportParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	pdf, err := h.attendance.ExportReportPDF(c.Request.Context(), kind, period, ref)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s-%s-%s.pdf", kind, period, ref.Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *AttendanceHandler) reportParams(c *gin.Context) (models.PersonKind, models.ReportPeriod, time.Time, error) {
	kind, err := kindFromParam(c.Param("kind"))
	if err != nil {
		return "", "", time.Time{}, err
	}
	period := models.ReportPeriod(c.DefaultQuery("period", string(models.PeriodDaily)))
	ref, ok := dateQuery(c, "date")
	if !ok {
		return "", "", time.Time{}, appErrors.Clone(appErrors.ErrInvalidDate, "invalid date, expected YYYY-MM-DD")
	}
	return kind, period, ref, nil
}

func (h *AttendanceHandler) recordBulk(kind models.PersonKind, result *models.BulkMarkResult) {
	for i := 0; i < result.Summary.PresentCount; i++ {
		h.metrics.RecordAttendanceWrite(string(kind), string(models.AttendanceStatusPresent))
	}
	for i := 0; i < result.Summary.AbsentCount; i++ {
		h.metrics.RecordAttendanceWrite(string(kind), string(models.AttendanceStatusAbsent))
	}
}

func kindFromParam(param string) (models.PersonKind, error) {
	switch param {
	case "interns", "intern":
		return models.KindIntern, nil
	case "employees", "employee":
		return models.KindEmployee, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown person kind")
	}
}

func kindForRole(role string) (models.PersonKind, error) {
	switch role {
	case models.RoleIntern:
		return models.KindIntern, nil
	case models.RoleEmployee:
		return models.KindEmployee, nil
	case models.RoleTeacher:
		return models.KindTeacher, nil
	case models.RoleAdmin:
		return models.KindAdmin, nil
	default:
		return "", appErrors.ErrForbidden
	}
}
