package debug

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestWithDebug(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want bool
	}{
		{"default", context.Background(), false},
		{"enabled", WithDebug(context.Background(), true), true},
		{"disabled", WithDebug(context.Background(), false), false},
		{"override", WithDebug(WithDebug(context.Background(), true), false), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEnabled(tt.ctx); got != tt.want {
				t.Errorf("IsEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	quiet := NewLogger(&buf, false, false)
	quiet.Debug("hidden")
	quiet.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record leaked with tracing off: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn record missing: %s", out)
	}

	buf.Reset()
	NewLogger(&buf, true, false).Debug("request", "method", "GET")
	if !strings.Contains(buf.String(), "method=GET") {
		t.Errorf("debug record missing: %s", buf.String())
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, true, true).Debug("response", "status", 200)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("record is not JSON: %v (%s)", err, buf.String())
	}
	if rec["msg"] != "response" || rec["status"] != float64(200) {
		t.Errorf("record = %v", rec)
	}
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	SetupLogger(true)
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("SetupLogger(true) should enable debug level logging")
	}

	SetupLogger(false)
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("SetupLogger(false) should disable debug level logging")
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("SetupLogger(false) should keep warn level logging")
	}
}
