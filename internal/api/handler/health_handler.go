package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck one named dependency check
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler liveness and dependency status
type HealthHandler struct {
	checks []HealthCheck
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health reports "ok" when every check passes, otherwise 503 with the failing ones
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for _, hc := range h.checks {
		if err := hc.Check(ctx); err != nil {
			deps[hc.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[hc.Name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "dependencies": deps})
}
