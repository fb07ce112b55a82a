package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"uiet-connect/backend/internal/dto"
	"uiet-connect/backend/internal/service"
	"uiet-connect/backend/pkg/response"

	pkgerrors "uiet-connect/backend/pkg/errors"
)

// AttendanceHandler attendance HTTP handlers
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler creates an AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Mark records a batch for one subject and date
// POST /api/v1/attendance/mark
func (h *AttendanceHandler) Mark(c *gin.Context) {
	scope, ok := MustGetScope(c)
	if !ok {
		return
	}

	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "malformed request body")
		return
	}

	result, err := h.attendanceSvc.Mark(c.Request.Context(), scope, &req)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// ListByStudent attendance history of one student
// GET /api/v1/attendance/student/:studentId
func (h *AttendanceHandler) ListByStudent(c *gin.Context) {
	scope, ok := MustGetScope(c)
	if !ok {
		return
	}

	items, err := h.attendanceSvc.ListByStudent(c.Request.Context(), scope, c.Param("studentId"))
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, items)
}

// ListBySubjectAndDate roster of one subject on one date
// GET /api/v1/attendance/subject/:subjectId/:date
func (h *AttendanceHandler) ListBySubjectAndDate(c *gin.Context) {
	scope, ok := MustGetScope(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.ListBySubjectAndDate(c.Request.Context(), scope, c.Param("subjectId"), c.Param("date"))
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// ListBySemester every subject's records in a semester
// GET /api/v1/attendance/semester/:semesterId
func (h *AttendanceHandler) ListBySemester(c *gin.Context) {
	scope, ok := MustGetScope(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.ListBySemester(c.Request.Context(), scope, c.Param("semesterId"))
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// Check whether attendance was already taken today for a semester
// GET /api/v1/attendance/check/:semesterId
func (h *AttendanceHandler) Check(c *gin.Context) {
	scope, ok := MustGetScope(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.Check(c.Request.Context(), scope, c.Param("semesterId"))
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// ListSubmissions recorded batches with their PDF links
// GET /api/v1/attendance/recordsWithPDF?page=1&page_size=20
func (h *AttendanceHandler) ListSubmissions(c *gin.Context) {
	scope, ok := MustGetScope(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "invalid pagination parameters")
		return
	}

	items, total, err := h.attendanceSvc.ListSubmissions(c.Request.Context(), scope, &page)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OKPage(c, items, total, page.GetPage(), page.GetPageSize())
}

// handleAttendanceError maps service errors to response codes. Specific
// errors first, then the category they wrap.
func handleAttendanceError(c *gin.Context, err error) {
	switch {
	// 400
	case errors.Is(err, service.ErrAttendanceSubjectRequired):
		invalidRequest(c, 17001, err)
	case errors.Is(err, service.ErrAttendanceDateRequired):
		invalidRequest(c, 17002, err)
	case errors.Is(err, service.ErrAttendanceDateInvalid):
		invalidRequest(c, 17003, err)
	case errors.Is(err, service.ErrAttendanceEntriesEmpty):
		invalidRequest(c, 17004, err)
	case errors.Is(err, service.ErrAttendanceEntryIncomplete):
		invalidRequest(c, 17005, err)
	case errors.Is(err, service.ErrAttendanceStatusInvalid):
		invalidRequest(c, 17006, err)
	case errors.Is(err, service.ErrAttendanceDuplicateStudent):
		invalidRequest(c, 17007, err)
	case errors.Is(err, service.ErrAttendanceBatchTooLarge):
		invalidRequest(c, 17008, err)
	case errors.Is(err, pkgerrors.ErrValidation):
		invalidRequest(c, 17009, err)

	// 404
	case errors.Is(err, service.ErrAttendanceSubjectNotFound):
		response.NotFound(c, 17101, "subject not found")
	case errors.Is(err, service.ErrAttendanceStudentNotFound):
		response.NotFound(c, 17102, "student not found")
	case errors.Is(err, service.ErrAttendanceSemesterNotFound):
		response.NotFound(c, 17103, "semester not found")
	case errors.Is(err, service.ErrExportNoSubjects):
		response.NotFound(c, 17104, "semester has no subjects")
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, 17109, "not found")

	// 403
	case errors.Is(err, pkgerrors.ErrForbidden):
		response.Forbidden(c, 10003, "permission denied")

	// 504
	case errors.Is(err, service.ErrAttendanceAggregationTimeout):
		response.GatewayTimeout(c, 17201, "attendance aggregation timed out, retry later")

	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// invalidRequest 400 with the validation failure in details
func invalidRequest(c *gin.Context, code int, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, code, "invalid attendance request", err.Error())
}
