package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFromConfigStrings(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: " Warn ", Format: "JSON", Writer: &buf})

	logger.Info("token restored")
	logger.Warn("backend logout failed", "status", 503)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the warning, got %d lines: %s", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("json handler not selected: %v", err)
	}
	if rec["msg"] != "backend logout failed" || rec["status"] != float64(503) {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestComponentTagsEveryRecord(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Level: "debug", Writer: &buf})
	api := Component(base, "api")
	sess := Component(base, "session")

	api.Debug("HTTP response", "status", 401)
	sess.Info("session invalidated by backend")

	out := buf.String()
	for _, want := range []string{
		"component=api",
		"status=401",
		"component=session",
		`msg="session invalidated by backend"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
	if strings.Count(out, "component=") != 2 {
		t.Errorf("components leaked between loggers:\n%s", out)
	}
}

func TestNilLoggerFallsBackToDiscard(t *testing.T) {
	logger := Component(nil, "ui")
	if logger == nil {
		t.Fatal("Component(nil) returned nil")
	}
	logger.Error("dropped")
	Discard().Error("dropped")
}

func TestParseLevelToleratesConfigInput(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"  debug\n": slog.LevelDebug,
		"WARNING":   slog.LevelWarn,
		"Error ":    slog.LevelError,
		"verbose":   slog.LevelInfo,
		"":          slog.LevelInfo,
	} {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
