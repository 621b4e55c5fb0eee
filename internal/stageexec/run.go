package stageexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"factcheck/internal/logging"
	"factcheck/internal/services"
)

const tracerName = "factcheck/stageexec"

// Options controls how a single pipeline stage is logged and traced.
type Options struct {
	Logger    *slog.Logger
	Tracer    trace.Tracer
	StageName string
	// Attrs are added to the start log line and the span.
	Attrs []logging.Attr
}

// Run executes fn as a named stage. The stage name is attached to the context
// passed to fn, and start, completion, and failure are logged with event types
// stage_start, stage_complete, and stage_failure. fn's error is returned as is.
func Run(ctx context.Context, opts Options, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("stage function unavailable: %s", opts.StageName)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	stageCtx := services.WithStage(ctx, opts.StageName)
	stageCtx, span := tracer.Start(stageCtx, "stage."+opts.StageName, trace.WithAttributes(spanAttributes(opts.Attrs)...))
	defer span.End()
	stageLogger := logging.WithContext(stageCtx, opts.Logger)

	startAttrs := append([]logging.Attr{logging.String(logging.FieldEventType, "stage_start")}, opts.Attrs...)
	stageLogger.Info("stage started", logging.Args(startAttrs...)...)

	started := time.Now()
	if err := fn(stageCtx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, services.Kind(err))
		return handleFailure(stageLogger, err, time.Since(started))
	}

	span.SetStatus(codes.Ok, "")
	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func handleFailure(logger *slog.Logger, stageErr error, elapsed time.Duration) error {
	kind := services.Kind(stageErr)
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String(logging.FieldErrorKind, kind),
		logging.Duration("elapsed", elapsed),
		logging.Error(stageErr),
	}
	if errors.Is(stageErr, context.Canceled) || errors.Is(stageErr, context.DeadlineExceeded) {
		logger.Warn("stage canceled", logging.Args(attrs...)...)
		return stageErr
	}
	if hint := errorHint(kind); hint != "" {
		attrs = append(attrs, logging.String(logging.FieldErrorHint, hint))
	}
	logger.Error("stage failed", logging.Args(attrs...)...)
	return stageErr
}

func errorHint(kind string) string {
	switch kind {
	case services.KindUnresolvableVideo:
		return "check the URL points to a public video"
	case services.KindDownload:
		return "check network access and update yt-dlp"
	case services.KindTranscode:
		return "check the ffmpeg installation"
	case services.KindAudioAccess:
		return "check work_dir permissions and free space"
	case services.KindTranscription:
		return "check the transcription backend settings"
	case services.KindGeneration:
		return "check llm.api_key, llm.base_url, and provider status"
	case services.KindConfiguration:
		return "run factcheck config validate"
	}
	return ""
}

func spanAttributes(attrs []logging.Attr) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		key := strings.TrimSpace(attr.Key)
		if key == "" {
			continue
		}
		out = append(out, attribute.String(key, attr.Value.String()))
	}
	return out
}
