package config

const (
	defaultConfigPath         = "~/.config/factcheck/config.toml"
	projectConfigName         = "factcheck.toml"
	defaultWorkDir            = "~/.cache/factcheck/work"
	defaultLogDir             = "~/.local/share/factcheck/logs"
	defaultAPIBind            = "127.0.0.1:8000"
	defaultAllowedOrigin      = "http://localhost:3000"
	defaultRequestsPerMinute  = 30
	defaultBurst              = 5
	defaultWriteTimeout       = 900
	defaultYTDLPBinary        = "yt-dlp"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultAudioFormat        = "bestaudio/best"
	defaultSampleRate         = 16000
	defaultChannels           = 1
	defaultStaleAfterMinutes  = 120
	defaultBackend            = BackendWhisperX
	defaultLanguage           = "en"
	defaultWhisperXModel      = "small"
	defaultWhisperXVADMethod  = "silero"
	defaultOpenAIModel        = "whisper-1"
	defaultGCPModel           = "latest_long"
	defaultLLMBaseURL         = "https://openrouter.ai/api/v1"
	defaultLLMModel           = "mistralai/mistral-7b-instruct"
	defaultLLMReferer         = "https://github.com/factcheck/factcheck"
	defaultLLMTitle           = "factcheck claim extractor"
	defaultLLMTimeoutSeconds  = 120
	defaultLLMMaxTokens       = 512
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultTracingExporter    = "stdout"
	defaultTracingSampleRatio = 1.0
	defaultTracingService     = "factcheck"
)

// Transcription backends.
const (
	BackendWhisperX = "whisperx"
	BackendOpenAI   = "openai"
	BackendGCP      = "gcp"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		API: API{
			Bind:                defaultAPIBind,
			AllowedOrigins:      []string{defaultAllowedOrigin},
			RequestsPerMinute:   defaultRequestsPerMinute,
			Burst:               defaultBurst,
			WriteTimeoutSeconds: defaultWriteTimeout,
		},
		Media: Media{
			YTDLPBinary:   defaultYTDLPBinary,
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			Format:        defaultAudioFormat,
			SampleRate:    defaultSampleRate,
			Channels:      defaultChannels,
			StaleAfterMin: defaultStaleAfterMinutes,
		},
		Transcription: Transcription{
			Backend:           defaultBackend,
			Language:          defaultLanguage,
			WhisperXModel:     defaultWhisperXModel,
			WhisperXVADMethod: defaultWhisperXVADMethod,
			OpenAIModel:       defaultOpenAIModel,
			GCPModel:          defaultGCPModel,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			MaxTokens:      defaultLLMMaxTokens,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Tracing: Tracing{
			Exporter:    defaultTracingExporter,
			SampleRatio: defaultTracingSampleRatio,
			ServiceName: defaultTracingService,
		},
	}
}
