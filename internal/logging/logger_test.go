package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"factcheck/internal/config"
	"factcheck/internal/logging"
	"factcheck/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from test")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "factcheck.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from test") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")
	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", buf.String())
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Fatalf("expected caller information in debug-level logger, got %q", buf.String())
	}
}

func TestConsoleLoggerFormatsComponentSubjectAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRequestID(context.Background(), "0123456789abcdef")
	ctx = services.WithStage(ctx, "transcribe")
	component := logging.NewComponentLogger(logger, "pipeline")
	logging.WithContext(ctx, component).Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Int("units", 3),
		logging.String("audio_path", "/tmp/x.wav"),
	)

	out := buf.String()
	for _, fragment := range []string{"[pipeline]", "Req 01234567 (transcribe)", "stage completed", "- Event: stage_complete", "- Units: 3", "+ 1 more field hidden"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in console output %q", fragment, out)
		}
	}
	if strings.Contains(out, "/tmp/x.wav") {
		t.Fatalf("expected path hidden at info level, got %q", out)
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRequestID(context.Background(), "req-1")
	ctx = services.WithVideoURL(ctx, "https://youtu.be/abc")
	logging.WithContext(ctx, logger).Warn("boom", logging.Error(errors.New("bad")))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if payload["level"] != "warn" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload[logging.FieldCorrelationID] != "req-1" {
		t.Fatalf("expected correlation id, got %v", payload)
	}
	if payload[logging.FieldVideoURL] != "https://youtu.be/abc" {
		t.Fatalf("expected video url, got %v", payload)
	}
	if payload["error"] != "bad" {
		t.Fatalf("expected error field, got %v", payload["error"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "fragment dropped", "transcript_fragment_dropped")

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	for _, key := range []string{logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("expected %s in payload %v", key, payload)
		}
	}
}

func TestFormatSubject(t *testing.T) {
	cases := []struct {
		requestID string
		stage     string
		want      string
	}{
		{"", "", ""},
		{"", "fetch", "fetch"},
		{"abc", "", "Req abc"},
		{"abcdefghijk", "llm", "Req abcdefgh (llm)"},
	}
	for _, tc := range cases {
		if got := logging.FormatSubject(tc.requestID, tc.stage); got != tc.want {
			t.Fatalf("FormatSubject(%q, %q) = %q, want %q", tc.requestID, tc.stage, got, tc.want)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 100) {
		t.Fatal("expected nop logger to be disabled")
	}
	logging.NewComponentLogger(nil, "x").Info("ignored")
}
