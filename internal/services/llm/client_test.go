package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"factcheck/internal/services"
)

func writeCompletion(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	payload := map[string]any{
		"id":     "cmpl-1",
		"object": "chat.completion",
		"choices": []any{
			map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": message, "type": "error"},
	})
}

func TestGenerateSendsDeterministicRequest(t *testing.T) {
	seed := 42
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Fatalf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("HTTP-Referer"); got != "https://example.com" {
			t.Fatalf("unexpected referer %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "factcheck" {
			t.Fatalf("unexpected title %q", got)
		}
		var body struct {
			Model       string   `json:"model"`
			Temperature *float64 `json:"temperature"`
			MaxTokens   int      `json:"max_tokens"`
			Seed        *int     `json:"seed"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Model != "demo-model" {
			t.Fatalf("unexpected model %q", body.Model)
		}
		if body.Temperature == nil || *body.Temperature >= 1e-6 {
			t.Fatalf("expected near-zero temperature, got %v", body.Temperature)
		}
		if body.MaxTokens != 512 {
			t.Fatalf("expected max_tokens 512, got %d", body.MaxTokens)
		}
		if body.Seed == nil || *body.Seed != 42 {
			t.Fatalf("expected seed 42, got %v", body.Seed)
		}
		if len(body.Messages) != 1 || body.Messages[0].Role != "user" || body.Messages[0].Content != "the prompt" {
			t.Fatalf("unexpected messages %+v", body.Messages)
		}
		writeCompletion(t, w, "  [\"a\"]\n")
	}))
	defer server.Close()

	client := NewClient(Config{
		APIKey:  "test",
		BaseURL: server.URL + "/",
		Model:   "demo-model",
		Referer: "https://example.com",
		Title:   "factcheck",
		Seed:    &seed,
	})
	content, err := client.Generate(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if content != "  [\"a\"]\n" {
		t.Fatalf("expected raw content preserved, got %q", content)
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{Model: "demo"})
	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			writeAPIError(w, http.StatusTooManyRequests, "rate limited")
			return
		}
		writeCompletion(t, w, `["claim"]`)
	}))
	defer server.Close()

	var waits []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithRetryNotify(func(_ error, d time.Duration) { waits = append(waits, d) }),
		WithRetryBackoff(0, 10*time.Second),
		WithRetryMaxAttempts(5),
	)
	content, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if content != `["claim"]` {
		t.Fatalf("unexpected content %q", content)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(waits) != 1 || waits[0] != time.Second {
		t.Fatalf("expected single Retry-After wait of 1s, got %v", waits)
	}
}

func TestClientRetriesServerErrorsThenFails(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeAPIError(w, http.StatusBadGateway, "upstream down")
	}))
	defer server.Close()

	var waits []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithRetryNotify(func(_ error, d time.Duration) { waits = append(waits, d) }),
		WithRetryBackoff(time.Millisecond, 3*time.Millisecond),
		WithRetryMaxAttempts(3),
	)
	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, services.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(waits) != 2 || waits[0] != time.Millisecond || waits[1] != 2*time.Millisecond {
		t.Fatalf("unexpected backoff sequence %v", waits)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeAPIError(w, http.StatusUnauthorized, "bad key")
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"},
		WithRetryNotify(func(err error, _ time.Duration) { t.Errorf("unexpected retry after %v", err) }),
	)
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check to fail")
	}
	if calls != 1 {
		t.Fatalf("expected single call, got %d", calls)
	}
}

func TestClientHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(t, w, `{"ok":true}`)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestBackOffDoublesUpToCap(t *testing.T) {
	client := NewClient(Config{}, WithRetryBackoff(time.Second, 5*time.Second))
	bo := client.newBackOff()
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, expected := range want {
		if got := bo.NextBackOff(); got != expected {
			t.Fatalf("retry %d: expected %s, got %s", i+1, expected, got)
		}
	}
}

func TestRetryAfterIsCappedAtMaxDelay(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "120")
			writeAPIError(w, http.StatusServiceUnavailable, "busy")
			return
		}
		writeCompletion(t, w, "[]")
	}))
	defer server.Close()

	var waits []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithRetryNotify(func(_ error, d time.Duration) { waits = append(waits, d) }),
		WithRetryBackoff(time.Millisecond, 5*time.Millisecond),
	)
	if _, err := client.Generate(context.Background(), "prompt"); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(waits) != 1 || waits[0] != 5*time.Millisecond {
		t.Fatalf("expected capped wait of 5ms, got %v", waits)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("unexpected seconds parse: %v %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("expected negative value rejected")
	}
	if _, ok := parseRetryAfter("soon"); ok {
		t.Fatal("expected garbage rejected")
	}
}
