package openaiwhisper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"factcheck/internal/services"
	"factcheck/internal/testsupport"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	return testsupport.WriteWAV(t, filepath.Join(t.TempDir(), "audio.wav"), 250)
}

func TestTranscribeUploadsFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Fatalf("unexpected model %q", got)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Fatalf("unexpected language %q", got)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Fatalf("expected file part: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "Eat vegetables. Sleep well."})
	}))
	defer server.Close()

	svc := NewService(Config{APIKey: "sk-test", BaseURL: server.URL, Language: "eng"})
	text, err := svc.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if text != "Eat vegetables. Sleep well." {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestTranscribeServerErrorIsTranscriptionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "boom"}})
	}))
	defer server.Close()

	svc := NewService(Config{APIKey: "sk-test", BaseURL: server.URL})
	_, err := svc.Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected transcription error, got %v", err)
	}
}

func TestTranscribeRejectsOversizedAudio(t *testing.T) {
	svc := NewService(Config{APIKey: "sk-test", BaseURL: "http://127.0.0.1:1"})
	svc.stat = func(string) (int64, error) { return maxUploadBytes + 1, nil }
	_, err := svc.Transcribe(context.Background(), "/ignored.wav")
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected transcription error, got %v", err)
	}
}

func TestTranscribeRequiresAPIKey(t *testing.T) {
	svc := NewService(Config{})
	_, err := svc.Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
