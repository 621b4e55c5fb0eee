package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateTracing(); err != nil {
		return err
	}
	return nil
}

// ValidateLLMCredentials reports whether claim extraction can reach its model.
// Commands that never extract claims skip this check.
func (c *Config) ValidateLLMCredentials() error {
	if strings.TrimSpace(c.LLM.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("llm.api_key is required. Set OPENROUTER_API_KEY env var or edit %s (create with 'factcheck config init')", defaultPath)
}

func (c *Config) validateAPI() error {
	if _, _, err := net.SplitHostPort(c.API.Bind); err != nil {
		return fmt.Errorf("api.bind %q: %w", c.API.Bind, err)
	}
	for _, origin := range c.API.AllowedOrigins {
		if origin == "*" {
			continue
		}
		parsed, err := url.Parse(origin)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("api.allowed_origins: invalid origin %q", origin)
		}
	}
	if c.API.RequestsPerMinute < 0 {
		return errors.New("api.requests_per_minute must be >= 0")
	}
	if c.API.Burst < 0 {
		return errors.New("api.burst must be >= 0")
	}
	if c.API.WriteTimeoutSeconds < 0 {
		return errors.New("api.write_timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.SampleRate < 8000 || c.Media.SampleRate > 48000 {
		return errors.New("media.sample_rate must be between 8000 and 48000")
	}
	if c.Media.Channels < 1 || c.Media.Channels > 2 {
		return errors.New("media.channels must be 1 or 2")
	}
	if c.Media.StaleAfterMin < 0 {
		return errors.New("media.stale_after_minutes must be >= 0")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Backend {
	case BackendWhisperX:
		switch c.Transcription.WhisperXVADMethod {
		case "silero", "pyannote":
		default:
			return fmt.Errorf("transcription.whisperx_vad_method %q is not supported", c.Transcription.WhisperXVADMethod)
		}
		if c.Transcription.WhisperXVADMethod == "pyannote" && c.Transcription.WhisperXHuggingFace == "" {
			return errors.New("transcription.whisperx_hf_token is required when whisperx_vad_method is pyannote")
		}
	case BackendOpenAI:
		if c.Transcription.OpenAIAPIKey == "" {
			return errors.New("transcription.openai_api_key must be set when backend is openai (or set OPENAI_API_KEY)")
		}
	case BackendGCP:
	default:
		return fmt.Errorf("transcription.backend %q must be one of whisperx, openai, gcp", c.Transcription.Backend)
	}
	return nil
}

func (c *Config) validateLLM() error {
	parsed, err := url.Parse(c.LLM.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("llm.base_url %q must be an absolute URL", c.LLM.BaseURL)
	}
	if c.LLM.MaxTokens < 1 {
		return errors.New("llm.max_tokens must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateTracing() error {
	if !c.Tracing.Enabled {
		return nil
	}
	switch c.Tracing.Exporter {
	case "stdout":
	case "otlp":
		if c.Tracing.Endpoint == "" {
			return errors.New("tracing.endpoint must be set when tracing.exporter is otlp")
		}
	default:
		return fmt.Errorf("tracing.exporter %q must be stdout or otlp", c.Tracing.Exporter)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return errors.New("tracing.sample_ratio must be between 0 and 1")
	}
	return nil
}
