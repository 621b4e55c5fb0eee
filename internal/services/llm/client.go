package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	openai "github.com/sashabaranov/go-openai"

	"factcheck/internal/logging"
	"factcheck/internal/services"
)

const (
	defaultBaseURL        = "https://openrouter.ai/api/v1"
	defaultHTTPTimeout    = 120 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 5
	defaultMaxTokens      = 512
)

// zeroTemperature pins sampling to greedy decoding. go-openai omits a literal
// zero from the request body, which providers then read as their default.
const zeroTemperature = math.SmallestNonzeroFloat32

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	MaxTokens      int
	Seed           *int
}

// Client wraps an OpenAI-compatible chat completion API (OpenRouter by default).
type Client struct {
	cfg        Config
	api        *openai.Client
	httpClient *http.Client
	logger     *slog.Logger

	maxAttempts uint
	baseDelay   time.Duration
	maxDelay    time.Duration
	onRetry     func(err error, delay time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. Attribution headers are
// still added on top of its transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger reports retried requests to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "llm")
	}
}

// WithRetryMaxAttempts caps the number of requests per call. Values below one
// disable retries.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.maxAttempts = uint(max(attempts, 1))
	}
}

// WithRetryBackoff sets the first backoff delay and the ceiling it doubles up to.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = baseDelay
		c.maxDelay = maxDelay
	}
}

// WithRetryNotify registers fn to observe each retry and the delay before it.
func WithRetryNotify(fn func(err error, delay time.Duration)) Option {
	return func(c *Client) {
		c.onRetry = fn
	}
}

// NewClient constructs an LLM client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	c := &Client{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logging.NewNop(),
		maxAttempts: defaultRetryAttempts,
		baseDelay:   defaultRetryBaseDelay,
		maxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}

	transport := c.httpClient.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	httpClient := *c.httpClient
	httpClient.Transport = &headerTransport{base: transport, referer: cfg.Referer, title: cfg.Title}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.BaseURL
	apiCfg.HTTPClient = &httpClient
	c.api = openai.NewClientWithConfig(apiCfg)
	return c
}

// Model returns the configured model name for logging.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Generate sends the prompt as a single user message with deterministic
// decoding and returns the model's text exactly as produced. Transport failures
// are retried with backoff; the final failure is marked ErrGeneration.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", services.Wrap(services.ErrValidation, "extract", "llm generate", "prompt required", nil)
	}
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "extract", "llm generate", "api key required", nil)
	}
	content, err := c.complete(ctx, c.newRequest(prompt, c.cfg.MaxTokens))
	if err != nil {
		return "", services.Wrap(services.ErrGeneration, "extract", "llm generate", "", err)
	}
	return content, nil
}

// HealthCheck sends a tiny prompt to confirm the key and model are accepted.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("llm health: api key required")
	}
	content, err := c.complete(ctx, c.newRequest(`Respond with {"ok":true}`, 16))
	if err != nil {
		return fmt.Errorf("llm health: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return errors.New("llm health: empty response")
	}
	return nil
}

func (c *Client) newRequest(prompt string, maxTokens int) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: zeroTemperature,
		Seed:        c.cfg.Seed,
	}
}

// complete runs one chat completion under the retry policy. Only transport
// level failures are retried; whatever content comes back is final.
func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	attempts := 0
	attempt := func() (string, error) {
		attempts++
		hint := &retryAfterHint{}
		resp, err := c.api.CreateChatCompletion(withRetryAfterHint(ctx, hint), req)
		if err != nil {
			return "", c.classify(err, hint.get())
		}
		if len(resp.Choices) == 0 {
			return "", backoff.Permanent(errors.New("empty choices"))
		}
		msg := resp.Choices[0].Message
		if msg.Content == "" && msg.Refusal != "" {
			return "", backoff.Permanent(fmt.Errorf("model refused: %s", summarizePayloadSnippet(msg.Refusal)))
		}
		return msg.Content, nil
	}

	content, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(max(c.maxAttempts, 1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(c.notify),
	)
	if err != nil {
		if attempts > 1 {
			return "", fmt.Errorf("failed after %d attempts: %w", attempts, err)
		}
		return "", err
	}
	return content, nil
}

// newBackOff doubles from baseDelay up to maxDelay without jitter.
func (c *Client) newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = max(c.baseDelay, 0)
	bo.MaxInterval = c.maxDelay
	if bo.MaxInterval <= 0 {
		bo.MaxInterval = defaultRetryMaxDelay
	}
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.Reset()
	return bo
}

// classify marks err permanent unless it is a timeout, 408, 429 or 5xx. A
// Retry-After hint replaces the backoff delay, capped at maxDelay.
func (c *Client) classify(err error, retryAfter time.Duration) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return backoff.Permanent(err)
	}
	if code := statusCode(err); code != 0 {
		if code != http.StatusRequestTimeout && code != http.StatusTooManyRequests && code < http.StatusInternalServerError {
			return backoff.Permanent(err)
		}
		if retryAfter > 0 {
			if c.maxDelay > 0 {
				retryAfter = min(retryAfter, c.maxDelay)
			}
			return &retryAfterError{err: err, after: &backoff.RetryAfterError{Duration: retryAfter}}
		}
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return err
	}
	return backoff.Permanent(err)
}

func (c *Client) notify(err error, delay time.Duration) {
	c.logger.Debug("llm request retrying",
		logging.String("model", c.cfg.Model),
		logging.Duration("delay", delay),
		logging.Error(err),
	)
	if c.onRetry != nil {
		c.onRetry(err, delay)
	}
}

// retryAfterError keeps the provider failure visible while handing the
// Retry-After delay to the retry loop.
type retryAfterError struct {
	err   error
	after *backoff.RetryAfterError
}

func (e *retryAfterError) Error() string { return e.err.Error() }

func (e *retryAfterError) Unwrap() []error { return []error{e.err, e.after} }

// statusCode extracts the HTTP status from go-openai error types.
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// headerTransport adds OpenRouter attribution headers and records Retry-After
// for the attempt that issued the request.
type headerTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.referer != "" || t.title != "" {
		req = req.Clone(req.Context())
		if t.referer != "" {
			req.Header.Set("HTTP-Referer", t.referer)
			req.Header.Set("Referer", t.referer)
		}
		if t.title != "" {
			req.Header.Set("X-Title", t.title)
		}
	}
	resp, err := t.base.RoundTrip(req)
	if err == nil && resp != nil {
		if hint, ok := req.Context().Value(retryAfterKey{}).(*retryAfterHint); ok {
			if delay, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
				hint.set(delay)
			}
		}
	}
	return resp, err
}

type retryAfterKey struct{}

type retryAfterHint struct {
	delay atomic.Int64
}

func (h *retryAfterHint) set(d time.Duration) { h.delay.Store(int64(d)) }

func (h *retryAfterHint) get() time.Duration { return time.Duration(h.delay.Load()) }

func withRetryAfterHint(ctx context.Context, hint *retryAfterHint) context.Context {
	return context.WithValue(ctx, retryAfterKey{}, hint)
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

func summarizePayloadSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
