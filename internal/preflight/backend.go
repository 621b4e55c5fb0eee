package preflight

import (
	"fmt"
	"os"
	"strings"

	"factcheck/internal/config"
)

// CheckTranscriptionBackend reports whether the selected speech-to-text
// backend has the credentials it needs. It never contacts the provider.
func CheckTranscriptionBackend(cfg *config.Config) Result {
	const name = "Transcription"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	tc := cfg.Transcription
	switch strings.ToLower(strings.TrimSpace(tc.Backend)) {
	case config.BackendWhisperX:
		detail := fmt.Sprintf("whisperx (%s", tc.WhisperXModel)
		if tc.WhisperXCUDAEnabled {
			detail += ", cuda"
		}
		if strings.EqualFold(tc.WhisperXVADMethod, "pyannote") && strings.TrimSpace(tc.WhisperXHuggingFace) == "" {
			return Result{Name: name, Detail: detail + ") missing Hugging Face token for pyannote VAD"}
		}
		return Result{Name: name, Passed: true, Detail: detail + ")"}
	case config.BackendOpenAI:
		if strings.TrimSpace(tc.OpenAIAPIKey) == "" {
			return Result{Name: name, Detail: "openai: missing API key"}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("openai (%s)", tc.OpenAIModel)}
	case config.BackendGCP:
		creds := strings.TrimSpace(tc.GCPCredentials)
		if creds != "" && !strings.HasPrefix(creds, "{") {
			if _, err := os.Stat(creds); err != nil {
				return Result{Name: name, Detail: fmt.Sprintf("gcp: credentials file %s not readable", creds)}
			}
		}
		detail := fmt.Sprintf("gcp (%s", tc.GCPModel)
		if strings.TrimSpace(tc.GCPBucket) != "" {
			detail += ", staging bucket " + tc.GCPBucket
		} else {
			detail += ", inline audio"
		}
		return Result{Name: name, Passed: true, Detail: detail + ")"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("unknown backend %q", tc.Backend)}
	}
}
