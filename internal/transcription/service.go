package transcription

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"factcheck/internal/logging"
	"factcheck/internal/media"
	"factcheck/internal/services"
)

// Engine turns an audio file into a single block of raw text.
type Engine interface {
	Name() string
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Service runs an Engine over audio tracks and reflows the result into sentence units.
type Service struct {
	engine Engine
	logger *slog.Logger
}

// NewService wraps engine. The engine is shared across calls and must be safe for concurrent use.
func NewService(engine Engine, logger *slog.Logger) *Service {
	return &Service{
		engine: engine,
		logger: logging.NewComponentLogger(logger, "transcription"),
	}
}

// Engine returns the underlying speech-to-text engine.
func (s *Service) Engine() Engine {
	return s.engine
}

// Transcribe validates the track, runs the engine, and splits its output into
// sentence units. Empty engine output yields an empty transcript.
func (s *Service) Transcribe(ctx context.Context, track *media.AudioTrack) (Transcript, error) {
	if track == nil || strings.TrimSpace(track.Path) == "" {
		return Transcript{}, services.Wrap(services.ErrAudioAccess, "transcribe", "open audio", "no audio track", nil)
	}
	if err := checkReadable(track.Path); err != nil {
		return Transcript{}, err
	}
	logger := logging.WithContext(ctx, s.logger)

	started := time.Now()
	raw, err := s.engine.Transcribe(ctx, track.Path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Transcript{}, ctxErr
		}
		if services.Kind(err) == services.KindInternal {
			err = services.Wrap(services.ErrTranscription, "transcribe", s.engine.Name(), "engine failed", err)
		}
		return Transcript{}, err
	}

	units, dropped := SplitSentences(raw)
	transcript := Transcript{Units: units}
	if strings.TrimSpace(dropped) != "" {
		transcript.Dropped = dropped
		logging.WarnWithContext(logger, "unterminated trailing text dropped", "transcript_fragment_dropped",
			logging.Int("dropped_chars", len([]rune(dropped))),
			logging.String(logging.FieldImpact, "text after the last sentence terminator is not analysed"),
			logging.String(logging.FieldErrorHint, "the engine output ended without punctuation"),
		)
	}
	logger.Info("transcription completed",
		logging.String("engine", s.engine.Name()),
		logging.Int("units", len(units)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return transcript, nil
}

func checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrAudioAccess, "transcribe", "stat audio", path, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrAudioAccess, "transcribe", "stat audio", path+" is a directory", nil)
	}
	file, err := os.Open(path)
	if err != nil {
		return services.Wrap(services.ErrAudioAccess, "transcribe", "open audio", path, err)
	}
	return file.Close()
}
