package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"factcheck/internal/config"
)

// LogFileName is the file created under paths.log_dir.
const LogFileName = "factcheck.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// OutputPaths accepts "stdout", "stderr" or file paths. Ignored when Writer is set.
	OutputPaths []string
	Writer      io.Writer
	Development bool
}

// New builds a logger from opts. Source locations are attached in development
// mode and whenever the level is debug.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(ParseLevel(opts.Level))

	w := opts.Writer
	if w == nil {
		var err error
		if w, err = openSinks(opts.OutputPaths); err != nil {
			return nil, err
		}
	}
	addSource := opts.Development || levelVar.Level() <= slog.LevelDebug

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		return slog.New(newConsoleHandler(w, levelVar, addSource)), nil
	case "json":
		return slog.New(newJSONHandler(w, levelVar, addSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig builds the application logger. Records go to stderr, keeping
// stdout free for command results, and to LogFileName under the log directory.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info"})
	}
	sinks := []string{"stderr"}
	if dir := cfg.Paths.LogDir; dir != "" {
		sinks = append(sinks, filepath.Join(dir, LogFileName))
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: sinks,
	})
}

// ParseLevel maps a level name to slog.Level. Unknown names yield info.
func ParseLevel(name string) slog.Level {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func openSinks(paths []string) (io.Writer, error) {
	var (
		writers []io.Writer
		errs    []error
		seen    = make(map[string]bool)
	)
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		switch path {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			file, err := openLogFile(path)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			writers = append(writers, file)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
