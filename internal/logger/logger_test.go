package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tc := range cases {
		if got := ParseLevel(tc.input); got != tc.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json", Level: slog.LevelInfo})

	log.Info("server started", "port", "8080")

	out := buf.String()
	if !strings.Contains(out, `"msg":"server started"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
	if !strings.Contains(out, `"port":"8080"`) {
		t.Errorf("expected port attr, got %q", out)
	}
}

func TestNewProductionDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "production"})

	log.Info("hello")

	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("production should default to JSON, got %q", buf.String())
	}
}

func TestPrettyHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "pretty", Level: slog.LevelWarn})

	log.Info("should be filtered")
	log.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "should appear") {
		t.Error("warn record should appear")
	}
}

func TestPrettyHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "pretty", Level: slog.LevelDebug})

	log.With("user_id", "usr-1").Info("task created", "task_id", "task-2")

	out := buf.String()
	for _, want := range []string{"task created", "user_id", "usr-1", "task_id", "task-2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}
