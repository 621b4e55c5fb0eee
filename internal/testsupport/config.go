package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"factcheck/internal/config"
)

// ConfigOption adjusts the config built by NewConfig.
type ConfigOption func(t testing.TB, root string, cfg *config.Config)

// NewConfig returns defaults rooted in a per-test temp directory: work and log
// dirs live under it, the API binds an ephemeral loopback port and the LLM key
// is a placeholder.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(root, "work")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.API.Bind = "127.0.0.1:0"
	cfg.LLM.APIKey = "test"

	for _, opt := range opts {
		opt(t, root, &cfg)
	}
	return &cfg
}

func WithBackend(backend string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) { cfg.Transcription.Backend = backend }
}

func WithAPIToken(token string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) { cfg.API.Token = token }
}

// WithStubbedBinaries installs no-op executables under <root>/bin and puts that
// directory first on PATH for the rest of the test. Without names it stubs
// yt-dlp, ffmpeg and ffprobe.
func WithStubbedBinaries(names ...string) ConfigOption {
	if len(names) == 0 {
		names = []string{"yt-dlp", "ffmpeg", "ffprobe"}
	}
	return func(t testing.TB, root string, _ *config.Config) {
		t.Helper()
		bin := filepath.Join(root, "bin")
		for _, name := range names {
			WriteScript(t, filepath.Join(bin, name), "exit 0")
		}
		t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// WriteScript writes an executable shell script with the given body.
func WriteScript(t testing.TB, path, body string) {
	t.Helper()
	writeBytes(t, path, []byte("#!/bin/sh\n"+body+"\n"))
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatalf("chmod %s: %v", path, err)
	}
}
