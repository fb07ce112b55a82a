package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"uiet-connect/backend/internal/service"
	"uiet-connect/backend/pkg/response"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler document download handlers
type ExportHandler struct {
	reportSvc service.ReportService
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(reportSvc service.ReportService, exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{reportSvc: reportSvc, exportSvc: exportSvc}
}

// GenerateAttendancePDF roster PDF of one subject on one date
// GET /api/v1/attendance/generateAttendancePDF/:subjectId/:date
func (h *ExportHandler) GenerateAttendancePDF(c *gin.Context) {
	scope, ok := MustGetScope(c)
	if !ok {
		return
	}

	buf, filename, err := h.reportSvc.GenerateAttendancePDF(c.Request.Context(), scope, c.Param("subjectId"), c.Param("date"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendFile(c, buf, filename, contentTypePDF)
}

// ExportSemester semester workbook
// GET /api/v1/attendance/semester/:semesterId/export
func (h *ExportHandler) ExportSemester(c *gin.Context) {
	scope, ok := MustGetScope(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportSemester(c.Request.Context(), scope, c.Param("semesterId"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendFile(c, buf, filename, contentTypeXLSX)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReportGenerateFail), errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 17301, "failed to generate document")
	default:
		handleAttendanceError(c, err)
	}
}

func sendFile(c *gin.Context, buf *bytes.Buffer, filename, contentType string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
