package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: test-secret-key-for-unit-testing
attendance:
  timezone: Asia/Kolkata
  max_batch_size: 50
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("expected default port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Attendance.MaxBatchSize != 50 {
		t.Errorf("expected max_batch_size 50, got %d", cfg.Attendance.MaxBatchSize)
	}
	if cfg.RateLimit.DepartmentRequests != 600 {
		t.Errorf("expected department_requests 600, got %d", cfg.RateLimit.DepartmentRequests)
	}
	if cfg.Attendance.AggregationTimeout != 10*time.Second {
		t.Errorf("expected aggregation_timeout 10s, got %v", cfg.Attendance.AggregationTimeout)
	}
	if got := cfg.Attendance.Location().String(); got != "Asia/Kolkata" {
		t.Errorf("expected Asia/Kolkata, got %s", got)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 3000
auth:
  jwt_secret: test-secret-key-for-unit-testing
`)
	t.Setenv("UIET_SERVER_PORT", "8081")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("expected env port 8081, got %d", cfg.Server.Port)
	}
}

func TestLoad_SecretFromEnv(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")
	t.Setenv("UIET_AUTH_JWT_SECRET", "env-secret-key-for-unit-testing")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Auth.JWTSecret != "env-secret-key-for-unit-testing" {
		t.Errorf("expected secret from env, got %q", cfg.Auth.JWTSecret)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:     ServerConfig{Port: 3000, MaxBodyBytes: 1 << 20},
			Auth:       AuthConfig{JWTSecret: "0123456789abcdef"},
			Attendance: AttendanceConfig{Timezone: "UTC", PDFRowsPerPage: 30, MaxBatchSize: 500},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"no body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }, true},
		{"unknown timezone", func(c *Config) { c.Attendance.Timezone = "Mars/Olympus" }, true},
		{"zero rows per page", func(c *Config) { c.Attendance.PDFRowsPerPage = 0 }, true},
		{"zero batch size", func(c *Config) { c.Attendance.MaxBatchSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLocation_Fallback(t *testing.T) {
	c := AttendanceConfig{}
	if c.Location() != time.UTC {
		t.Errorf("expected UTC for empty timezone, got %v", c.Location())
	}
}
