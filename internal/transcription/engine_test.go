package transcription

import (
	"context"
	"errors"
	"testing"

	"factcheck/internal/config"
	"factcheck/internal/services"
)

func TestNewEngineSelectsBackend(t *testing.T) {
	cases := []struct {
		backend string
		name    string
	}{
		{backend: config.BackendWhisperX, name: "whisperx"},
		{backend: "", name: "whisperx"},
		{backend: config.BackendOpenAI, name: "openai"},
	}
	for _, tc := range cases {
		cfg := config.Default()
		cfg.Transcription.Backend = tc.backend
		engine, err := NewEngine(context.Background(), &cfg, nil)
		if err != nil {
			t.Fatalf("backend %q: %v", tc.backend, err)
		}
		if engine.Name() != tc.name {
			t.Fatalf("backend %q: expected %s engine, got %s", tc.backend, tc.name, engine.Name())
		}
	}
}

func TestNewEngineRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.Backend = "vosk"
	_, err := NewEngine(context.Background(), &cfg, nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
