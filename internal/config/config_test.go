package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"factcheck/internal/config"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FACTCHECK_LLM_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY",
		"HF_TOKEN", "HUGGING_FACE_HUB_TOKEN", "GOOGLE_APPLICATION_CREDENTIALS", "FACTCHECK_API_TOKEN",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigUsesEnvKeyAndExpandsPaths(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "router-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".cache", "factcheck", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.API.Bind != "127.0.0.1:8000" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if len(cfg.API.AllowedOrigins) != 1 || cfg.API.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected allowed origins: %v", cfg.API.AllowedOrigins)
	}
	if cfg.LLM.APIKey != "router-key" {
		t.Fatalf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.MaxTokens != 512 {
		t.Fatalf("expected max tokens 512, got %d", cfg.LLM.MaxTokens)
	}
	if cfg.Media.Format != "bestaudio/best" || cfg.Media.SampleRate != 16000 || cfg.Media.Channels != 1 {
		t.Fatalf("unexpected media defaults: %+v", cfg.Media)
	}
	if cfg.Transcription.Backend != config.BackendWhisperX {
		t.Fatalf("expected whisperx backend, got %q", cfg.Transcription.Backend)
	}
	if cfg.Transcription.WhisperXModel != "small" {
		t.Fatalf("expected small whisperx model, got %q", cfg.Transcription.WhisperXModel)
	}
	if cfg.Tracing.Enabled {
		t.Fatal("expected tracing disabled by default")
	}
	if err := cfg.ValidateLLMCredentials(); err != nil {
		t.Fatalf("expected llm credentials to validate: %v", err)
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	clearCredentialEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "factcheck.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"work_dir": "~/scratch",
		},
		"api": map[string]any{
			"bind":            "0.0.0.0:9000",
			"allowed_origins": []string{" https://app.example.com/ ", "https://app.example.com", ""},
		},
		"transcription": map[string]any{
			"backend":  "GCP",
			"language": "de",
		},
		"llm": map[string]any{
			"api_key":  "file-key",
			"base_url": "https://llm.example.com/v1/",
			"seed":     7,
		},
		"logging": map[string]any{
			"format": "JSON",
			"level":  "Debug",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.WorkDir != filepath.Join(tempHome, "scratch") {
		t.Fatalf("unexpected work dir: %q", cfg.Paths.WorkDir)
	}
	if len(cfg.API.AllowedOrigins) != 1 || cfg.API.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("expected origins deduplicated, got %v", cfg.API.AllowedOrigins)
	}
	if cfg.Transcription.Backend != config.BackendGCP || cfg.Transcription.Language != "de" {
		t.Fatalf("unexpected transcription config: %+v", cfg.Transcription)
	}
	if cfg.LLM.BaseURL != "https://llm.example.com/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Seed == nil || *cfg.LLM.Seed != 7 {
		t.Fatalf("expected seed 7, got %v", cfg.LLM.Seed)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	llm := cfg.GetLLM()
	if llm.APIKey != "file-key" || llm.MaxTokens != 512 {
		t.Fatalf("unexpected llm settings: %+v", llm)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.Backend = "vosk"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "transcription.backend") {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestValidateRequiresOpenAIKeyForOpenAIBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.Backend = config.BackendOpenAI
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error without openai key")
	}
	cfg.Transcription.OpenAIAPIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadBindAndOrigins(t *testing.T) {
	cfg := config.Default()
	cfg.API.Bind = "localhost"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "api.bind") {
		t.Fatalf("expected bind error, got %v", err)
	}

	cfg = config.Default()
	cfg.API.AllowedOrigins = []string{"localhost:3000"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "allowed_origins") {
		t.Fatalf("expected origin error, got %v", err)
	}
}

func TestValidateTracingRequiresEndpointForOTLP(t *testing.T) {
	cfg := config.Default()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "otlp"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected otlp endpoint error")
	}
	cfg.Tracing.Endpoint = "localhost:4318"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateLLMCredentialsMissing(t *testing.T) {
	cfg := config.Default()
	err := cfg.ValidateLLMCredentials()
	if err == nil || !strings.Contains(err.Error(), "llm.api_key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestSampleConfigLoads(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Media.Format != "bestaudio/best" {
		t.Fatalf("unexpected format from sample: %q", cfg.Media.Format)
	}
}

func TestEnsureDirectoriesCreatesWorkAndLogDirs(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestRedactedMasksCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.API.Token = "secret-token"
	cfg.LLM.APIKey = "sk-live"
	cfg.Transcription.OpenAIAPIKey = ""

	masked := cfg.Redacted()
	if masked.API.Token == "secret-token" || masked.LLM.APIKey == "sk-live" {
		t.Fatalf("expected credentials masked, got %+v", masked)
	}
	if masked.Transcription.OpenAIAPIKey != "" {
		t.Fatalf("expected empty key to stay empty, got %q", masked.Transcription.OpenAIAPIKey)
	}
	if cfg.LLM.APIKey != "sk-live" {
		t.Fatal("expected original config untouched")
	}
}
