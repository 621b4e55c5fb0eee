package claims

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"factcheck/internal/logging"
)

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is the outcome of one extraction.
type Result struct {
	Claims ClaimList
	Mode   ParseMode
	// Raw is the unparsed model output.
	Raw string
}

// Extractor asks a Generator for claims and parses its answer.
type Extractor struct {
	generator Generator
	logger    *slog.Logger
}

// NewExtractor constructs an Extractor around generator.
func NewExtractor(generator Generator, logger *slog.Logger) *Extractor {
	return &Extractor{
		generator: generator,
		logger:    logging.NewComponentLogger(logger, "claims"),
	}
}

// Extract returns the claims found in transcript. Blank transcripts return an
// empty list without calling the model. Only generation failures are errors;
// the generator is called once and never retried on unparseable output.
func (e *Extractor) Extract(ctx context.Context, transcript string) (Result, error) {
	if strings.TrimSpace(transcript) == "" {
		return Result{Claims: ClaimList{}}, nil
	}
	logger := logging.WithContext(ctx, e.logger)

	started := time.Now()
	raw, err := e.generator.Generate(ctx, BuildPrompt(transcript))
	if err != nil {
		return Result{Claims: ClaimList{}}, err
	}

	claims, mode := ParseClaims(raw)
	if mode == ModeFallback {
		logging.WarnWithContext(logger, "model output was not a JSON array", "claims_fallback_parse",
			logging.Int("raw_chars", len([]rune(raw))),
			logging.Int("claims", len(claims)),
			logging.String(logging.FieldImpact, "claims recovered line by line"),
			logging.String(logging.FieldErrorHint, "check the model supports JSON output"),
		)
	}
	logger.Info("claims extracted",
		logging.Int("claims", len(claims)),
		logging.String("parse_mode", string(mode)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return Result{Claims: claims, Mode: mode, Raw: raw}, nil
}
