package stageexec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"factcheck/internal/logging"
	"factcheck/internal/services"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestRunLogsStartAndCompletion(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var seenStage string
	err := Run(context.Background(), Options{
		Logger:    logger,
		StageName: "fetch",
		Attrs:     []logging.Attr{logging.String("engine", "whisperx")},
	}, func(ctx context.Context) error {
		seenStage, _ = services.StageFromContext(ctx)
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if seenStage != "fetch" {
		t.Fatalf("expected stage in context, got %q", seenStage)
	}
	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	if lines[0]["event_type"] != "stage_start" || lines[0]["engine"] != "whisperx" || lines[0]["stage"] != "fetch" {
		t.Fatalf("unexpected start line %v", lines[0])
	}
	if lines[1]["event_type"] != "stage_complete" {
		t.Fatalf("unexpected completion line %v", lines[1])
	}
}

func TestRunLogsFailureKind(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	stageErr := services.Wrap(services.ErrDownload, "fetch", "yt-dlp", "download failed", errors.New("exit status 1"))

	err := Run(context.Background(), Options{Logger: logger, StageName: "fetch"}, func(context.Context) error {
		return stageErr
	})
	if !errors.Is(err, stageErr) {
		t.Fatalf("expected stage error returned, got %v", err)
	}
	lines := decodeLines(t, &buf)
	last := lines[len(lines)-1]
	if last["event_type"] != "stage_failure" || last["error_kind"] != services.KindDownload || last["level"] != "ERROR" {
		t.Fatalf("unexpected failure line %v", last)
	}
	if last["error_hint"] == nil {
		t.Fatal("expected error hint on failure")
	}
}

func TestRunCanceledLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	err := Run(context.Background(), Options{Logger: logger, StageName: "transcribe"}, func(context.Context) error {
		return context.Canceled
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	lines := decodeLines(t, &buf)
	if lines[len(lines)-1]["level"] != "WARN" {
		t.Fatalf("expected warning for cancellation, got %v", lines[len(lines)-1])
	}
}
