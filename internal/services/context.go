package services

import "context"

type contextKey int

const (
	stageKey contextKey = iota
	requestIDKey
	videoURLKey
)

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func valueFrom(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, _ := ctx.Value(key).(string)
	return value, value != ""
}

// WithStage records the pipeline stage (fetch, transcribe, extract) on ctx.
// Empty values leave ctx unchanged.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

func StageFromContext(ctx context.Context) (string, bool) {
	return valueFrom(ctx, stageKey)
}

// WithVideoURL records the video being processed on ctx.
func WithVideoURL(ctx context.Context, url string) context.Context {
	return withValue(ctx, videoURLKey, url)
}

func VideoURLFromContext(ctx context.Context) (string, bool) {
	return valueFrom(ctx, videoURLKey)
}

// WithRequestID records the HTTP request or CLI invocation identifier used to
// correlate log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return valueFrom(ctx, requestIDKey)
}
