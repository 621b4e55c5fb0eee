package openaiwhisper

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	langpkg "factcheck/internal/language"
	"factcheck/internal/services"
)

const (
	defaultTimeout = 10 * time.Minute
	// maxUploadBytes is the transcription endpoint's request size ceiling.
	maxUploadBytes = 25 << 20
)

// Config captures the transcription endpoint settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
}

// Service transcribes audio through an OpenAI-compatible /audio/transcriptions endpoint.
type Service struct {
	cfg    Config
	client *openai.Client
	stat   func(path string) (int64, error)
}

// Option customizes the service.
type Option func(*openai.ClientConfig)

// WithHTTPClient overrides the HTTP client used for uploads.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *openai.ClientConfig) {
		if client != nil {
			cfg.HTTPClient = client
		}
	}
}

// NewService builds a transcription client.
func NewService(cfg Config, opts ...Option) *Service {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&apiCfg)
	}
	return &Service{cfg: cfg, client: openai.NewClientWithConfig(apiCfg), stat: fileSize}
}

// Name identifies the engine in logs and status output.
func (s *Service) Name() string {
	return "openai"
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Transcribe uploads the audio file and returns the recognized text.
func (s *Service) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if s.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "transcribe", "openai", "api key required", nil)
	}
	size, err := s.stat(audioPath)
	if err != nil {
		return "", services.Wrap(services.ErrAudioAccess, "transcribe", "openai", "stat audio", err)
	}
	if size > maxUploadBytes {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "openai",
			"audio exceeds the 25 MiB upload limit; use the whisperx or gcp backend for long videos", nil)
	}

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.cfg.Model,
		FilePath: audioPath,
		Language: langpkg.ToISO2(s.cfg.Language),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", services.Wrap(services.ErrTranscription, "transcribe", "openai", "create transcription", err)
	}
	return resp.Text, nil
}
