package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"factcheck/internal/config"
	"factcheck/internal/logging"
	"factcheck/internal/media/ffprobe"
)

const (
	defaultYTDLP   = "yt-dlp"
	defaultFFmpeg  = "ffmpeg"
	defaultFormat  = "bestaudio/best"
	scopedDirStem  = "factcheck-"
	audioFileName  = "audio.wav"
	sourceFileStem = "source"
)

// Config controls external tool invocation and the canonical waveform.
type Config struct {
	WorkDir       string
	YTDLPBinary   string
	FFmpegBinary  string
	FFprobeBinary string
	Format        string
	SampleRate    int
	Channels      int
}

// ConfigFrom extracts fetcher settings from the application config.
func ConfigFrom(cfg *config.Config) Config {
	if cfg == nil {
		return Config{}
	}
	return Config{
		WorkDir:       cfg.Paths.WorkDir,
		YTDLPBinary:   cfg.Media.YTDLPBinary,
		FFmpegBinary:  cfg.Media.FFmpegBinary,
		FFprobeBinary: cfg.Media.FFprobeBinary,
		Format:        cfg.Media.Format,
		SampleRate:    cfg.Media.SampleRate,
		Channels:      cfg.Media.Channels,
	}
}

// CommandRunner executes an external tool and returns its stdout and stderr.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// ProbeFunc inspects a produced audio file.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Fetcher resolves video metadata and materializes audio tracks with yt-dlp and ffmpeg.
type Fetcher struct {
	cfg    Config
	logger *slog.Logger
	run    CommandRunner
	probe  ProbeFunc
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithCommandRunner replaces process execution (for testing).
func WithCommandRunner(runner CommandRunner) Option {
	return func(f *Fetcher) {
		if runner != nil {
			f.run = runner
		}
	}
}

// WithProbe replaces the ffprobe inspection of transcoded audio.
func WithProbe(probe ProbeFunc) Option {
	return func(f *Fetcher) {
		f.probe = probe
	}
}

// NewFetcher constructs a fetcher. Zero-valued settings fall back to defaults.
func NewFetcher(cfg Config, logger *slog.Logger, opts ...Option) *Fetcher {
	if strings.TrimSpace(cfg.YTDLPBinary) == "" {
		cfg.YTDLPBinary = defaultYTDLP
	}
	if strings.TrimSpace(cfg.FFmpegBinary) == "" {
		cfg.FFmpegBinary = defaultFFmpeg
	}
	if strings.TrimSpace(cfg.Format) == "" {
		cfg.Format = defaultFormat
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	f := &Fetcher{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "media"),
		run:    execRunner,
	}
	if binary := strings.TrimSpace(cfg.FFprobeBinary); binary != "" {
		f.probe = func(ctx context.Context, path string) (ffprobe.Result, error) {
			return ffprobe.Inspect(ctx, binary, path)
		}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Config returns the effective fetcher configuration.
func (f *Fetcher) Config() Config {
	return f.cfg
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

// toolFailure folds the last line of stderr into the error detail.
func toolFailure(err error, stderr []byte) error {
	detail := lastLine(string(stderr))
	if detail == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, detail)
}

func lastLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
