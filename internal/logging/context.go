package logging

import (
	"context"
	"log/slog"

	"factcheck/internal/services"
)

// Standard structured logging keys.
const (
	FieldComponent     = "component"
	FieldStage         = "stage"
	FieldCorrelationID = "correlation_id"
	FieldVideoURL      = "video_url"
	// FieldEventType classifies a line for filtering (stage_start, stage_complete, ...).
	FieldEventType = "event_type"
	// FieldErrorKind carries services.Kind for failed operations.
	FieldErrorKind = "error_kind"
	// FieldErrorHint suggests the operator's next step.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	FieldAlert  = "alert"
)

var contextExtractors = []struct {
	key     string
	extract func(context.Context) (string, bool)
}{
	{FieldStage, services.StageFromContext},
	{FieldCorrelationID, services.RequestIDFromContext},
	{FieldVideoURL, services.VideoURLFromContext},
}

// ContextFields returns the request-scoped attributes carried by ctx.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	var fields []Attr
	for _, ex := range contextExtractors {
		if value, ok := ex.extract(ctx); ok {
			fields = append(fields, slog.String(ex.key, value))
		}
	}
	return fields
}

// WithContext returns logger tagged with the stage, request ID and video URL
// stored in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
