package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working directory locations.
type Paths struct {
	WorkDir string `toml:"work_dir"`
	LogDir  string `toml:"log_dir"`
}

// API contains HTTP server settings.
type API struct {
	Bind                string   `toml:"bind"`
	Token               string   `toml:"token"`
	AllowedOrigins      []string `toml:"allowed_origins"`
	RequestsPerMinute   int      `toml:"requests_per_minute"`
	Burst               int      `toml:"burst"`
	WriteTimeoutSeconds int      `toml:"write_timeout_seconds"`
}

// Media contains settings for audio acquisition.
type Media struct {
	YTDLPBinary   string `toml:"ytdlp_binary"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	Format        string `toml:"format"`
	SampleRate    int    `toml:"sample_rate"`
	Channels      int    `toml:"channels"`
	StaleAfterMin int    `toml:"stale_after_minutes"`
}

// Transcription contains speech-to-text engine settings.
type Transcription struct {
	Backend             string `toml:"backend"`
	Language            string `toml:"language"`
	WhisperXModel       string `toml:"whisperx_model"`
	WhisperXCUDAEnabled bool   `toml:"whisperx_cuda_enabled"`
	WhisperXVADMethod   string `toml:"whisperx_vad_method"`
	WhisperXHuggingFace string `toml:"whisperx_hf_token"`
	OpenAIModel         string `toml:"openai_model"`
	OpenAIAPIKey        string `toml:"openai_api_key"`
	OpenAIBaseURL       string `toml:"openai_base_url"`
	GCPCredentials      string `toml:"gcp_credentials"`
	GCPModel            string `toml:"gcp_model"`
	GCPBucket           string `toml:"gcp_bucket"`
}

// LLM contains the chat-completions connection used for claim extraction.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxTokens      int    `toml:"max_tokens"`
	Seed           *int   `toml:"seed"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Tracing contains OpenTelemetry exporter settings.
type Tracing struct {
	Enabled     bool    `toml:"enabled"`
	Exporter    string  `toml:"exporter"`
	Endpoint    string  `toml:"endpoint"`
	Insecure    bool    `toml:"insecure"`
	SampleRatio float64 `toml:"sample_ratio"`
	ServiceName string  `toml:"service_name"`
}

// Config encapsulates all configuration values.
//
// Configuration sections by subsystem:
//   - Paths: scoped audio work directory and log directory
//   - API: HTTP bind address, auth token, CORS origins, and rate limits
//   - Media: yt-dlp and ffmpeg invocation and the canonical waveform
//   - Transcription: speech-to-text backend selection and credentials
//   - LLM: claim extraction model connection
//   - Logging: log format and level
//   - Tracing: OpenTelemetry exporter
type Config struct {
	Paths         Paths         `toml:"paths"`
	API           API           `toml:"api"`
	Media         Media         `toml:"media"`
	Transcription Transcription `toml:"transcription"`
	LLM           LLM           `toml:"llm"`
	Logging       Logging       `toml:"logging"`
	Tracing       Tracing       `toml:"tracing"`
}

// DefaultConfigPath returns the expanded per-user config location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the config at path, or the first of the per-user and project
// files that exists when path is empty, then normalizes and validates it. It
// also reports the file it settled on and whether that file exists; a missing
// file yields defaults.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	if err := toml.NewDecoder(f).Decode(cfg); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return fmt.Errorf("parse config %s:%d:%d: %w", path, row, col, err)
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		exists, err := isFile(expanded)
		return expanded, exists, err
	}

	userPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		if ok, _ := isFile(candidate); ok {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	}
	return !info.IsDir(), nil
}

// EnsureDirectories creates the work and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WriteTimeout returns the HTTP server write timeout. Zero disables it.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(max(c.API.WriteTimeoutSeconds, 0)) * time.Second
}

// StaleAfter returns the age beyond which leftover scoped audio directories are swept.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Media.StaleAfterMin) * time.Minute
}

// expandPath resolves a leading "~" or "~/" to the home directory and returns
// a clean absolute path. Empty input stays empty.
func expandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = filepath.Join(home, p[1:])
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", p, err)
	}
	return abs, nil
}

// ExpandPath applies the config path rules (home expansion, absolute, clean)
// to a user-supplied path.
func ExpandPath(p string) (string, error) {
	return expandPath(p)
}

// SampleConfig returns the embedded, commented sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to path, creating parents.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the resolved chat-completions settings.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	MaxTokens      int
	Seed           *int
}

// GetLLM returns the claim extraction LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
		MaxTokens:      c.LLM.MaxTokens,
		Seed:           c.LLM.Seed,
	}
}

// Redacted returns a copy with credentials masked, suitable for display.
func (c Config) Redacted() Config {
	mask := func(s *string) {
		if strings.TrimSpace(*s) != "" {
			*s = "********"
		}
	}
	mask(&c.API.Token)
	mask(&c.Transcription.OpenAIAPIKey)
	mask(&c.Transcription.WhisperXHuggingFace)
	mask(&c.LLM.APIKey)
	c.API.AllowedOrigins = append([]string(nil), c.API.AllowedOrigins...)
	return c
}
