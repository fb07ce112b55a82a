package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"uiet-connect/backend/config"
	"uiet-connect/backend/internal/api/handler"
	"uiet-connect/backend/internal/api/middleware"
	"uiet-connect/backend/pkg/jwt"
	"uiet-connect/backend/pkg/metrics"
	"uiet-connect/backend/pkg/redis"
)

// Setup builds the Gin engine. rdb may be nil: the blacklist and the rate
// limiter then pass every request through.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	r.Use(middleware.RateLimit(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window, middleware.ByClientIP))

	// ── health and metrics ──
	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	v1.Use(middleware.RateLimit(rdb, cfg.RateLimit.DepartmentRequests, cfg.RateLimit.Window, middleware.ByDepartment))
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", h.Auth.Me)
		}

		staff := middleware.RoleAuth(jwt.RoleDepartment, jwt.RoleTeacher)

		attendance := v1.Group("/attendance")
		{
			attendance.POST("/mark", staff, h.Attendance.Mark)
			attendance.GET("/student/:studentId", h.Attendance.ListByStudent) // students: own records only (service layer)
			attendance.GET("/subject/:subjectId/:date", staff, h.Attendance.ListBySubjectAndDate)
			attendance.GET("/semester/:semesterId", staff, h.Attendance.ListBySemester)
			attendance.GET("/semester/:semesterId/export", staff, h.Export.ExportSemester)
			attendance.GET("/check/:semesterId", h.Attendance.Check)
			attendance.GET("/recordsWithPDF", staff, h.Attendance.ListSubmissions)
			attendance.GET("/generateAttendancePDF/:subjectId/:date", staff, h.Export.GenerateAttendancePDF)
		}
	}

	return r
}
