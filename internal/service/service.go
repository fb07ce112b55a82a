package service

import (
	"time"

	"go.uber.org/zap"

	"uiet-connect/backend/config"
	"uiet-connect/backend/internal/repository"
	"uiet-connect/backend/pkg/jwt"
	"uiet-connect/backend/pkg/metrics"
)

// Scope identity injected by the access gate. Every operation runs inside
// the caller's department.
type Scope struct {
	UserID       string
	DepartmentID string
	Role         string
}

// IsStudent reports whether the caller is a student
func (s Scope) IsStudent() bool {
	return s.Role == jwt.RoleStudent
}

// Clock returns the current instant
type Clock func() time.Time

// Service aggregates every service
type Service struct {
	Auth       AuthService
	Attendance AttendanceService
	Report     ReportService
	Export     ExportService
}

// NewService builds the aggregate. blacklist may be nil when Redis is down.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	blacklist TokenBlacklist,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	attendance := NewAttendanceService(cfg, repo, m, time.Now, logger)
	return &Service{
		Auth:       NewAuthService(cfg, repo, blacklist, logger),
		Attendance: attendance,
		Report:     NewReportService(attendance, &cfg.Attendance, m, logger),
		Export:     NewExportService(attendance, m, logger),
	}
}
