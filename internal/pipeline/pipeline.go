package pipeline

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"factcheck/internal/claims"
	"factcheck/internal/logging"
	"factcheck/internal/media"
	"factcheck/internal/services"
	"factcheck/internal/stageexec"
	"factcheck/internal/transcription"
)

// Stage names used in logs, spans, and error details.
const (
	StageVideoInfo  = "video-info"
	StageFetch      = "fetch"
	StageTranscribe = "transcribe"
	StageExtract    = "extract"
)

// Fetcher resolves metadata and materializes audio tracks.
type Fetcher interface {
	VideoInfo(ctx context.Context, url string) (media.VideoInfo, error)
	FetchAudio(ctx context.Context, url string) (*media.AudioTrack, error)
}

// Transcriber turns an audio track into a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, track *media.AudioTrack) (transcription.Transcript, error)
}

// ClaimExtractor pulls claims out of transcript text.
type ClaimExtractor interface {
	Extract(ctx context.Context, transcript string) (claims.Result, error)
}

// Result is the outcome of a full extraction run.
type Result struct {
	Transcript transcription.Transcript
	Claims     claims.ClaimList
	Mode       claims.ParseMode
}

// Pipeline composes fetch, transcription, and claim extraction. Stages run in
// order and a failure stops the run before later stages start.
type Pipeline struct {
	fetcher     Fetcher
	transcriber Transcriber
	extractor   ClaimExtractor
	logger      *slog.Logger
	tracer      trace.Tracer
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithTracer overrides the tracer used for pipeline spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// New constructs a Pipeline. Dependencies are shared across calls.
func New(fetcher Fetcher, transcriber Transcriber, extractor ClaimExtractor, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:     fetcher,
		transcriber: transcriber,
		extractor:   extractor,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
		tracer:      otel.Tracer("factcheck/pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// VideoInfo returns metadata for url without downloading media.
func (p *Pipeline) VideoInfo(ctx context.Context, url string) (media.VideoInfo, error) {
	ctx, span := p.start(ctx, "pipeline.video_info", url)
	defer span.End()

	var info media.VideoInfo
	err := p.stage(ctx, StageVideoInfo, func(ctx context.Context) error {
		var err error
		info, err = p.fetcher.VideoInfo(ctx, url)
		return err
	})
	finish(span, err)
	return info, err
}

// Transcribe downloads the audio for url and transcribes it. The audio track
// is removed before returning on every path.
func (p *Pipeline) Transcribe(ctx context.Context, url string) (transcription.Transcript, error) {
	ctx, span := p.start(ctx, "pipeline.transcribe", url)
	defer span.End()

	transcript, err := p.transcribe(ctx, url)
	finish(span, err)
	return transcript, err
}

// Extract transcribes url and extracts claims from the transcript. When
// extraction fails the result still carries the transcript.
func (p *Pipeline) Extract(ctx context.Context, url string) (Result, error) {
	ctx, span := p.start(ctx, "pipeline.extract", url)
	defer span.End()

	transcript, err := p.transcribe(ctx, url)
	if err != nil {
		finish(span, err)
		return Result{}, err
	}

	result := Result{Transcript: transcript, Claims: claims.ClaimList{}}
	err = p.stage(ctx, StageExtract, func(ctx context.Context) error {
		extracted, err := p.extractor.Extract(ctx, transcript.String())
		if err != nil {
			return err
		}
		if extracted.Claims != nil {
			result.Claims = extracted.Claims
		}
		result.Mode = extracted.Mode
		return nil
	})
	span.SetAttributes(attribute.Int("factcheck.claims", len(result.Claims)))
	finish(span, err)
	return result, err
}

func (p *Pipeline) transcribe(ctx context.Context, url string) (transcription.Transcript, error) {
	var track *media.AudioTrack
	err := p.stage(ctx, StageFetch, func(ctx context.Context) error {
		var err error
		track, err = p.fetcher.FetchAudio(ctx, url)
		return err
	})
	if err != nil {
		return transcription.Transcript{}, err
	}
	defer track.Close()

	var transcript transcription.Transcript
	err = p.stage(ctx, StageTranscribe, func(ctx context.Context) error {
		var err error
		transcript, err = p.transcriber.Transcribe(ctx, track)
		return err
	})
	return transcript, err
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	return stageexec.Run(ctx, stageexec.Options{
		Logger:    p.logger,
		Tracer:    p.tracer,
		StageName: name,
	}, fn)
}

func (p *Pipeline) start(ctx context.Context, name, url string) (context.Context, trace.Span) {
	ctx = services.WithVideoURL(ctx, url)
	return p.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("factcheck.video_url", url)))
}

func finish(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, services.Kind(err))
}
