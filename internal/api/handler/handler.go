package handler

import "uiet-connect/backend/internal/service"

// Handler aggregates every HTTP handler
type Handler struct {
	Auth       *AuthHandler
	Attendance *AttendanceHandler
	Export     *ExportHandler
	Health     *HealthHandler
}

// NewHandler builds the aggregate. checks feed GET /health.
func NewHandler(svc *service.Service, checks ...HealthCheck) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Export:     NewExportHandler(svc.Report, svc.Export),
		Health:     NewHealthHandler(checks...),
	}
}
