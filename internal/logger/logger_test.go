package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "production"})

	log.Info("daemon started", "port", "8080")

	line := buf.String()
	if !strings.HasPrefix(line, "{") {
		t.Errorf("production log line = %q, want JSON", line)
	}
	if !strings.Contains(line, `"msg":"daemon started"`) {
		t.Errorf("log line %q missing message", line)
	}
	if !strings.Contains(line, `"port":"8080"`) {
		t.Errorf("log line %q missing attribute", line)
	}
}

func TestNew_PrettyInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "development"})

	log.Info("daemon started", "port", "8080")

	line := buf.String()
	if strings.HasPrefix(line, "{") {
		t.Errorf("development log line = %q, want pretty format", line)
	}
	if !strings.Contains(line, "daemon started") || !strings.Contains(line, "port=8080") {
		t.Errorf("log line %q missing message or attribute", line)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: formatJSON, Level: slog.LevelWarn})

	log.Info("quiet")
	log.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info record leaked through warn filter: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).With("service", "space")

	log.Info("space created", "space", "quilting")

	line := buf.String()
	if !strings.Contains(line, "service=space") || !strings.Contains(line, "space=quilting") {
		t.Errorf("log line %q missing inherited or record attributes", line)
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError})
	if h.Enabled(t.Context(), slog.LevelWarn) {
		t.Error("warn enabled under error-level handler")
	}
	if !h.Enabled(t.Context(), slog.LevelError) {
		t.Error("error not enabled under error-level handler")
	}
}
