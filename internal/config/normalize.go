package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeMedia()
	if err := c.normalizeTranscription(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeLogging()
	c.normalizeTracing()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.Token == "" {
		if value, ok := os.LookupEnv("FACTCHECK_API_TOKEN"); ok {
			c.API.Token = strings.TrimSpace(value)
		}
	}
	origins := make([]string, 0, len(c.API.AllowedOrigins))
	seen := make(map[string]struct{}, len(c.API.AllowedOrigins))
	for _, origin := range c.API.AllowedOrigins {
		normalized := strings.TrimRight(strings.TrimSpace(origin), "/")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		origins = append(origins, normalized)
	}
	c.API.AllowedOrigins = origins
}

func (c *Config) normalizeMedia() {
	c.Media.YTDLPBinary = strings.TrimSpace(c.Media.YTDLPBinary)
	if c.Media.YTDLPBinary == "" {
		c.Media.YTDLPBinary = defaultYTDLPBinary
	}
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	if c.Media.FFprobeBinary == "" {
		c.Media.FFprobeBinary = defaultFFprobeBinary
	}
	c.Media.Format = strings.TrimSpace(c.Media.Format)
	if c.Media.Format == "" {
		c.Media.Format = defaultAudioFormat
	}
	if c.Media.SampleRate == 0 {
		c.Media.SampleRate = defaultSampleRate
	}
	if c.Media.Channels == 0 {
		c.Media.Channels = defaultChannels
	}
}

func (c *Config) normalizeTranscription() error {
	c.Transcription.Backend = strings.ToLower(strings.TrimSpace(c.Transcription.Backend))
	if c.Transcription.Backend == "" {
		c.Transcription.Backend = defaultBackend
	}
	c.Transcription.Language = strings.TrimSpace(c.Transcription.Language)
	if c.Transcription.Language == "" {
		c.Transcription.Language = defaultLanguage
	}
	c.Transcription.WhisperXModel = strings.TrimSpace(c.Transcription.WhisperXModel)
	if c.Transcription.WhisperXModel == "" {
		c.Transcription.WhisperXModel = defaultWhisperXModel
	}
	c.Transcription.WhisperXVADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.WhisperXVADMethod))
	if c.Transcription.WhisperXVADMethod == "" {
		c.Transcription.WhisperXVADMethod = defaultWhisperXVADMethod
	}
	c.Transcription.WhisperXHuggingFace = strings.TrimSpace(c.Transcription.WhisperXHuggingFace)
	if c.Transcription.WhisperXHuggingFace == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.Transcription.WhisperXHuggingFace = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Transcription.WhisperXHuggingFace = strings.TrimSpace(value)
		}
	}
	c.Transcription.OpenAIModel = strings.TrimSpace(c.Transcription.OpenAIModel)
	if c.Transcription.OpenAIModel == "" {
		c.Transcription.OpenAIModel = defaultOpenAIModel
	}
	c.Transcription.OpenAIBaseURL = strings.TrimSpace(c.Transcription.OpenAIBaseURL)
	c.Transcription.OpenAIAPIKey = strings.TrimSpace(c.Transcription.OpenAIAPIKey)
	if c.Transcription.OpenAIAPIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Transcription.OpenAIAPIKey = strings.TrimSpace(value)
		}
	}
	c.Transcription.GCPModel = strings.TrimSpace(c.Transcription.GCPModel)
	if c.Transcription.GCPModel == "" {
		c.Transcription.GCPModel = defaultGCPModel
	}
	c.Transcription.GCPBucket = strings.TrimSpace(c.Transcription.GCPBucket)
	c.Transcription.GCPCredentials = strings.TrimSpace(c.Transcription.GCPCredentials)
	if c.Transcription.GCPCredentials == "" {
		if value, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS"); ok {
			c.Transcription.GCPCredentials = strings.TrimSpace(value)
		}
	}
	if c.Transcription.GCPCredentials != "" {
		var err error
		if c.Transcription.GCPCredentials, err = expandPath(c.Transcription.GCPCredentials); err != nil {
			return fmt.Errorf("transcription.gcp_credentials: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		for _, key := range []string{"FACTCHECK_LLM_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY"} {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				c.LLM.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeTracing() {
	c.Tracing.Exporter = strings.ToLower(strings.TrimSpace(c.Tracing.Exporter))
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = defaultTracingExporter
	}
	c.Tracing.Endpoint = strings.TrimSpace(c.Tracing.Endpoint)
	c.Tracing.ServiceName = strings.TrimSpace(c.Tracing.ServiceName)
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = defaultTracingService
	}
}
