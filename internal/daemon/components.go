package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"factcheck/internal/claims"
	"factcheck/internal/config"
	"factcheck/internal/media"
	"factcheck/internal/pipeline"
	"factcheck/internal/services/llm"
	"factcheck/internal/transcription"
)

// Components holds the pipeline built from configuration and the resources
// that must be released with it.
type Components struct {
	Pipeline    *pipeline.Pipeline
	EngineName  string
	EngineModel string
	LLMModel    string

	closers []io.Closer
}

// BuildComponents constructs the fetcher, transcription engine, and claim
// extractor once and wires them into a pipeline. Callers must Close the
// result.
func BuildComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	if cfg == nil {
		return nil, errors.New("components require config")
	}
	fetcher := media.NewFetcher(media.ConfigFrom(cfg), logger)

	engine, err := transcription.NewEngine(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build transcription engine: %w", err)
	}
	c := &Components{EngineName: engine.Name()}
	if m, ok := engine.(interface{ Model() string }); ok {
		c.EngineModel = m.Model()
	}
	if closer, ok := engine.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}

	llmCfg := cfg.GetLLM()
	client := llm.NewClient(llm.Config{
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		Referer:        llmCfg.Referer,
		Title:          llmCfg.Title,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
		MaxTokens:      llmCfg.MaxTokens,
		Seed:           llmCfg.Seed,
	}, llm.WithLogger(logger))
	c.LLMModel = client.Model()

	c.Pipeline = pipeline.New(
		fetcher,
		transcription.NewService(engine, logger),
		claims.NewExtractor(client, logger),
		logger,
	)
	return c, nil
}

// Close releases engine resources.
func (c *Components) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
