package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"factcheck/internal/config"
	"factcheck/internal/logging"
)

// Exporter names accepted in tracing.exporter.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// InitTracing installs a global tracer provider when tracing is enabled. When
// disabled the global no-op provider stays in place and the returned shutdown
// does nothing.
func InitTracing(ctx context.Context, cfg config.Tracing, version string, logger *slog.Logger) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return noopShutdown, nil
	}
	logger = logging.NewComponentLogger(logger, "tracing")

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "factcheck"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(strings.TrimSpace(version)),
		),
	)
	if err != nil {
		logging.WarnWithContext(logger, "otel resource init failed", "otel_resource_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "spans carry no service attributes"),
		)
	}

	exporter, err := buildExporter(ctx, cfg)
	if err != nil {
		return noopShutdown, fmt.Errorf("tracing exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio(cfg.SampleRatio)))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	logger.Info("otel tracing initialized",
		logging.String("service", serviceName),
		logging.String("exporter", exporterName(cfg)),
		logging.String("endpoint", cfg.Endpoint),
	)
	return tp.Shutdown, nil
}

func exporterName(cfg config.Tracing) string {
	name := strings.ToLower(strings.TrimSpace(cfg.Exporter))
	if name == "" {
		return ExporterStdout
	}
	return name
}

func buildExporter(ctx context.Context, cfg config.Tracing) (sdktrace.SpanExporter, error) {
	switch exporterName(cfg) {
	case ExporterOTLP:
		opts := []otlptracehttp.Option{}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
		}
		return otlptracehttp.New(ctx, opts...)
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unknown exporter %q", cfg.Exporter)
	}
}

func sampleRatio(v float64) float64 {
	switch {
	case v <= 0:
		return 1
	case v > 1:
		return 1
	default:
		return v
	}
}
