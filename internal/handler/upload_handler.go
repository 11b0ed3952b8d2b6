package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/workbridge/ims-api/internal/models"
	"github.com/workbridge/ims-api/internal/service"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
	"github.com/workbridge/ims-api/pkg/response"
)

var spreadsheetExtensions = map[string]struct{}{
	".xlsx": {},
	".xls":  {},
}

// UploadHandler accepts bulk-registration spreadsheets.
type UploadHandler struct {
	imports *service.BulkImportService
	metrics *service.MetricsService
	maxSize int64
}

// NewUploadHandler constructs UploadHandler. maxSize bounds the accepted
// file size in bytes.
func NewUploadHandler(imports *service.BulkImportService, metrics *service.MetricsService, maxSize int64) *UploadHandler {
	return &UploadHandler{imports: imports, metrics: metrics, maxSize: maxSize}
}

// RegisterInterns godoc
// @Summary Bulk-register interns into a batch from a spreadsheet
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Batch ID"
// @Param file formData file true "Spreadsheet (.xlsx or .xls)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id}/interns/upload [post]
func (h *UploadHandler) RegisterInterns(c *gin.Context) {
	data, err := h.readSpreadsheet(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.imports.RegisterInterns(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.recordRows(models.KindIntern, result)
	response.JSON(c, http.StatusOK, result, nil)
}

// RegisterEmployees godoc
// @Summary Bulk-register employees from a spreadsheet
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet (.xlsx or .xls)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /employees/upload [post]
func (h *UploadHandler) RegisterEmployees(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	data, err := h.readSpreadsheet(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.imports.RegisterEmployees(c.Request.Context(), claims.UserID, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.recordRows(models.KindEmployee, result)
	response.JSON(c, http.StatusOK, result, nil)
}

// readSpreadsheet pulls the "file" form field, rejecting missing, empty,
// oversized, and non-spreadsheet uploads before any row is parsed.
func (h *UploadHandler) readSpreadsheet(c *gin.Context) ([]byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "spreadsheet file required")
	}
	if header.Size == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidFile, "uploaded file is empty")
	}
	if h.maxSize > 0 && header.Size > h.maxSize {
		return nil, appErrors.Clone(appErrors.ErrInvalidFile, "uploaded file exceeds the size limit")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := spreadsheetExtensions[ext]; !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidFile, "only .xlsx and .xls files are accepted")
	}

	return readAll(header)
}

func readAll(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidFile.Code, appErrors.ErrInvalidFile.Status, "unable to open upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidFile.Code, appErrors.ErrInvalidFile.Status, "unable to read upload")
	}
	return data, nil
}

func (h *UploadHandler) recordRows(kind models.PersonKind, result *models.BulkRegistrationResult) {
	for range result.Registered {
		h.metrics.RecordImportRow(string(kind), "registered")
	}
	for range result.Errors {
		h.metrics.RecordImportRow(string(kind), "rejected")
	}
}
