package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"factcheck/internal/logging"
	"factcheck/internal/media"
	"factcheck/internal/pipeline"
	"factcheck/internal/transcription"
)

// Pipeline is the subset of pipeline.Pipeline served over HTTP.
type Pipeline interface {
	VideoInfo(ctx context.Context, url string) (media.VideoInfo, error)
	Transcribe(ctx context.Context, url string) (transcription.Transcript, error)
	Extract(ctx context.Context, url string) (pipeline.Result, error)
}

// StatusFunc reports service status for GET /status.
type StatusFunc func(ctx context.Context) ServiceStatus

// Options configures the router.
type Options struct {
	Logger            *slog.Logger
	Token             string
	AllowedOrigins    []string
	RequestsPerMinute int
	Burst             int
	ServiceName       string
	Status            StatusFunc
}

type handler struct {
	pipeline Pipeline
	status   StatusFunc
	logger   *slog.Logger
}

// NewRouter builds the HTTP surface around p.
func NewRouter(p Pipeline, opts Options) *gin.Engine {
	logger := logging.NewComponentLogger(opts.Logger, "api")
	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "factcheck"
	}
	h := &handler{pipeline: p, status: opts.Status, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(requestID())
	r.Use(requestLogger(logger))
	r.Use(corsMiddleware(opts.AllowedOrigins))

	r.GET("/health", h.health)

	api := r.Group("/api")
	api.Use(bearerAuth(opts.Token))
	api.Use(rateLimit(opts.RequestsPerMinute, opts.Burst))
	{
		api.POST("/video-info", h.videoInfo)
		api.POST("/factcheck", h.transcribe)
		api.POST("/transcribe", h.transcribe)
		api.POST("/extract-claims", h.extract)
		api.POST("/extract", h.extract)
	}

	protected := r.Group("/")
	protected.Use(bearerAuth(opts.Token))
	protected.GET("/status", h.serviceStatus)

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "not_found", errNotFound)
	})
	return r
}
