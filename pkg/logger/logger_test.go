package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"uiet-connect/backend/config"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(&config.LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("format %s: unexpected error %v", format, err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("format %s: debug level should be enabled", format)
		}
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
