package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"factcheck/internal/config"
	"factcheck/internal/deps"
	"factcheck/internal/services/llm"
)

const llmProbeTimeout = 30 * time.Second

func pass(name, format string, args ...any) Result {
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf(format, args...)}
}

func fail(name, format string, args ...any) Result {
	return Result{Name: name, Detail: fmt.Sprintf(format, args...)}
}

// CheckLLM sends one health prompt to the chat-completions endpoint without
// retries, bounded by llmProbeTimeout.
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return fail(name, "API key missing")
	}
	ctx, cancel := context.WithTimeout(ctx, llmProbeTimeout)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))
	if err := client.HealthCheck(ctx); err != nil {
		return fail(name, "%s", describeLLMFailure(err))
	}
	return pass(name, "API reachable (%s)", cfg.Model)
}

// CheckDirectoryAccess passes when path is a directory the process can list,
// create files in and enter.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fail(name, "%s (missing)", path)
	case err != nil:
		return fail(name, "%s (stat failed: %v)", path, err)
	case !info.IsDir():
		return fail(name, "%s (not a directory)", path)
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fail(name, "%s (not writable: %v)", path, err)
	}
	return pass(name, "%s (writable)", path)
}

// CheckSystemDeps probes the executables the configured pipeline runs. The
// server status endpoint and the CLI status command share this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	reqs := []deps.Requirement{
		{Name: "yt-dlp", Command: cfg.Media.YTDLPBinary, Description: "Resolves video metadata and downloads audio", VersionArgs: []string{"--version"}},
		{Name: "FFmpeg", Command: cfg.Media.FFmpegBinary, Description: "Transcodes audio to 16 kHz mono WAV", VersionArgs: []string{"-version"}},
		{Name: "FFprobe", Command: cfg.Media.FFprobeBinary, Description: "Verifies transcoded audio format", VersionArgs: []string{"-version"}, Optional: true},
	}
	if strings.EqualFold(cfg.Transcription.Backend, config.BackendWhisperX) {
		reqs = append(reqs, deps.Requirement{Name: "uvx", Command: "uvx", Description: "Launches WhisperX", VersionArgs: []string{"--version"}})
	}
	return deps.CheckBinaries(reqs)
}

func describeLLMFailure(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("no response within %s", llmProbeTimeout)
	case errors.As(err, &netErr) && netErr.Timeout():
		return "endpoint unreachable (network timeout)"
	}
	return err.Error()
}
