package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"uiet-connect/backend/config"
	"uiet-connect/backend/internal/api/handler"
	"uiet-connect/backend/internal/service"
	"uiet-connect/backend/pkg/jwt"
	"uiet-connect/backend/pkg/metrics"
)

func newTestEngine(t *testing.T) (http.Handler, *jwt.Manager) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{MaxBodyBytes: 1 << 20},
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-key-for-unit-testing-2026",
			Issuer:         "uiet-connect",
			AccessTokenTTL: 15 * time.Minute,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	// routes exercised here are rejected before any service is reached
	h := handler.NewHandler(&service.Service{})
	return Setup(cfg, h, jwtMgr, nil, metrics.New(), zap.NewNop()), jwtMgr
}

func TestSetup_HealthAndMetrics(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "uiet_http_request_duration_seconds") {
		t.Error("expected request histogram in /metrics output")
	}
}

func TestSetup_AccessGate(t *testing.T) {
	engine, jwtMgr := newTestEngine(t)
	student, err := jwtMgr.GenerateAccessToken("3d5e7f9a-2b4c-4d6e-8f0a-1b2c3d4e5f60", jwt.RoleStudent, "0b7c5e2a-1d3f-4a6b-9c8d-7e6f5a4b3c2d")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"mark without token", http.MethodPost, "/api/v1/attendance/mark", "", http.StatusUnauthorized},
		{"check without token", http.MethodGet, "/api/v1/attendance/check/sem-1", "", http.StatusUnauthorized},
		{"pdf without token", http.MethodGet, "/api/v1/attendance/generateAttendancePDF/S1/2024-03-01", "", http.StatusUnauthorized},
		{"mark as student", http.MethodPost, "/api/v1/attendance/mark", student, http.StatusForbidden},
		{"semester as student", http.MethodGet, "/api/v1/attendance/semester/sem-1", student, http.StatusForbidden},
		{"export as student", http.MethodGet, "/api/v1/attendance/semester/sem-1/export", student, http.StatusForbidden},
		{"pdf as student", http.MethodGet, "/api/v1/attendance/generateAttendancePDF/S1/2024-03-01", student, http.StatusForbidden},
		{"submissions as student", http.MethodGet, "/api/v1/attendance/recordsWithPDF", student, http.StatusForbidden},
		{"unknown route", http.MethodGet, "/api/v1/nope", student, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}
