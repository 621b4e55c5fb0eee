package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"factcheck/internal/api"
	"factcheck/internal/config"
	"factcheck/internal/logging"
	"factcheck/internal/media"
	"factcheck/internal/preflight"
)

const (
	lockFileName    = "factcheck.lock"
	shutdownTimeout = 10 * time.Second
)

// Daemon owns the HTTP server lifecycle and enforces single-instance execution
// per work directory.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	version string

	pipeline    api.Pipeline
	engineName  string
	engineModel string
	llmModel    string
	closers     []io.Closer

	server   *http.Server
	listener net.Listener

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	running atomic.Bool
	started time.Time
}

// Option customizes daemon construction.
type Option func(*Daemon)

// WithPipeline replaces the pipeline built from configuration.
func WithPipeline(p api.Pipeline) Option {
	return func(d *Daemon) {
		if p != nil {
			d.pipeline = p
		}
	}
}

// WithVersion sets the version reported by GET /status.
func WithVersion(version string) Option {
	return func(d *Daemon) {
		d.version = strings.TrimSpace(version)
	}
}

// New constructs a daemon and, unless WithPipeline is supplied, the pipeline
// components selected by cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.WorkDir, lockFileName)
	d := &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		version:    "dev",
		engineName: cfg.Transcription.Backend,
		llmModel:   cfg.GetLLM().Model,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.pipeline == nil {
		components, err := BuildComponents(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		d.pipeline = components.Pipeline
		d.engineName = components.EngineName
		d.engineModel = components.EngineModel
		d.llmModel = components.LLMModel
		d.closers = append(d.closers, components)
	}

	router := api.NewRouter(d.pipeline, api.Options{
		Logger:            logger,
		Token:             cfg.API.Token,
		AllowedOrigins:    cfg.API.AllowedOrigins,
		RequestsPerMinute: cfg.API.RequestsPerMinute,
		Burst:             cfg.API.Burst,
		ServiceName:       cfg.Tracing.ServiceName,
		Status:            d.Status,
	})
	d.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       60 * time.Second,
	}
	return d, nil
}

// Start acquires the instance lock, sweeps stale audio directories, and binds
// the listener. Serving begins in Run.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(d.cfg.Paths.WorkDir, 0o755); err != nil {
		return fmt.Errorf("ensure work directory: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another factcheck server instance is already running")
	}

	if _, err := media.SweepStale(d.cfg.Paths.WorkDir, d.cfg.StaleAfter(), d.logger); err != nil {
		logging.WarnWithContext(d.logger, "stale audio sweep failed", "stale_sweep_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "leftover audio directories remain on disk"),
		)
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", d.cfg.API.Bind)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	d.listener = listener
	d.started = time.Now()
	d.running.Store(true)

	d.logger.Info("factcheck server started",
		logging.String(logging.FieldEventType, "server_started"),
		logging.String("address", listener.Addr().String()),
		logging.String("lock", d.lockPath),
		logging.String("engine", d.engineName),
		logging.String("llm_model", d.llmModel),
	)
	return nil
}

// Run starts the daemon and serves requests until ctx is done or the server
// fails. Shutdown drains in-flight requests before the lock is released.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	defer d.Stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := d.server.Serve(d.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api serve: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := d.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api shutdown: %w", err)
		}
		return nil
	})
	return group.Wait()
}

// Addr reports the bound listener address, or "" before Start.
func (d *Daemon) Addr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listener == nil {
		return ""
	}
	return d.listener.Addr().String()
}

// Handler exposes the HTTP handler for in-process use.
func (d *Daemon) Handler() http.Handler {
	return d.server.Handler
}

// Stop releases the instance lock. Run calls it after shutdown.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.Load() {
		return
	}
	if d.listener != nil {
		_ = d.listener.Close()
		d.listener = nil
	}
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release server lock", "lock_release_failed",
			logging.Error(err),
			logging.String("lock", d.lockPath),
		)
	}
	d.running.Store(false)
	d.logger.Info("factcheck server stopped", logging.String(logging.FieldEventType, "server_stopped"))
}

// Close stops the daemon and releases engine resources.
func (d *Daemon) Close() error {
	d.Stop()
	var errs []error
	for _, closer := range d.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

// Running reports whether the daemon holds the lock and listener.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status reports runtime information and dependency health.
func (d *Daemon) Status(ctx context.Context) api.ServiceStatus {
	status := api.ServiceStatus{
		Version:      d.version,
		PID:          os.Getpid(),
		Engine:       d.engineName,
		EngineModel:  d.engineModel,
		LLMModel:     d.llmModel,
		WorkDir:      d.cfg.Paths.WorkDir,
		LockFilePath: d.lockPath,
	}
	if d.running.Load() {
		status.Uptime = time.Since(d.started).Truncate(time.Second).String()
	}

	for _, result := range preflight.RunAll(ctx, d.cfg, preflight.Options{}) {
		status.Components = append(status.Components, api.StageHealth{
			Name:   result.Name,
			Ready:  result.Passed,
			Detail: result.Detail,
		})
	}
	for _, dep := range preflight.CheckSystemDeps(d.cfg) {
		status.Dependencies = append(status.Dependencies, api.DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		})
	}
	return status
}
