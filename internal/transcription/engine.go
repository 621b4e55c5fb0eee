package transcription

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"factcheck/internal/config"
	"factcheck/internal/services"
	"factcheck/internal/services/gcpspeech"
	"factcheck/internal/services/openaiwhisper"
	"factcheck/internal/services/whisperx"
)

// NewEngine builds the engine selected by transcription.backend. The returned
// engine may also implement io.Closer; callers close it on shutdown.
func NewEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Engine, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "engine", "config required", nil)
	}
	tc := cfg.Transcription
	switch strings.ToLower(strings.TrimSpace(tc.Backend)) {
	case config.BackendWhisperX, "":
		return whisperx.NewService(whisperx.Config{
			Model:       tc.WhisperXModel,
			CUDAEnabled: tc.WhisperXCUDAEnabled,
			VADMethod:   tc.WhisperXVADMethod,
			HFToken:     tc.WhisperXHuggingFace,
			Language:    tc.Language,
		}), nil
	case config.BackendOpenAI:
		return openaiwhisper.NewService(openaiwhisper.Config{
			APIKey:   tc.OpenAIAPIKey,
			BaseURL:  tc.OpenAIBaseURL,
			Model:    tc.OpenAIModel,
			Language: tc.Language,
		}), nil
	case config.BackendGCP:
		engine, err := gcpspeech.New(ctx, gcpspeech.Config{
			Language:    tc.Language,
			Model:       tc.GCPModel,
			Credentials: tc.GCPCredentials,
			Bucket:      tc.GCPBucket,
			SampleRate:  cfg.Media.SampleRate,
			Channels:    cfg.Media.Channels,
		}, logger)
		if err != nil {
			return nil, err
		}
		return engine, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "engine",
			fmt.Sprintf("unknown transcription backend %q", tc.Backend), nil)
	}
}
