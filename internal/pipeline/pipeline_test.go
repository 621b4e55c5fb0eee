package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"factcheck/internal/claims"
	"factcheck/internal/media"
	"factcheck/internal/services"
	"factcheck/internal/transcription"
)

type fakeFetcher struct {
	info     media.VideoInfo
	infoErr  error
	fetchErr error
	tracks   []*media.AudioTrack
	calls    []string
	root     string
}

func (f *fakeFetcher) VideoInfo(_ context.Context, url string) (media.VideoInfo, error) {
	f.calls = append(f.calls, "info:"+url)
	return f.info, f.infoErr
}

func (f *fakeFetcher) FetchAudio(_ context.Context, url string) (*media.AudioTrack, error) {
	f.calls = append(f.calls, "fetch:"+url)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	dir, err := os.MkdirTemp(f.root, "factcheck-")
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		return nil, err
	}
	track := &media.AudioTrack{Path: path, Dir: dir}
	f.tracks = append(f.tracks, track)
	return track, nil
}

type fakeTranscriber struct {
	transcript transcription.Transcript
	err        error
	calls      int
	sawTrack   bool
}

func (f *fakeTranscriber) Transcribe(_ context.Context, track *media.AudioTrack) (transcription.Transcript, error) {
	f.calls++
	if _, err := os.Stat(track.Path); err == nil {
		f.sawTrack = true
	}
	return f.transcript, f.err
}

type fakeExtractor struct {
	result claims.Result
	err    error
	inputs []string
}

func (f *fakeExtractor) Extract(_ context.Context, transcript string) (claims.Result, error) {
	f.inputs = append(f.inputs, transcript)
	return f.result, f.err
}

func newFixture(t *testing.T) (*fakeFetcher, *fakeTranscriber, *fakeExtractor) {
	t.Helper()
	return &fakeFetcher{root: t.TempDir()},
		&fakeTranscriber{transcript: transcription.Transcript{Units: []string{"Eat greens.", " Sleep well!"}}},
		&fakeExtractor{result: claims.Result{Claims: claims.ClaimList{"Eat greens", "Sleep well"}, Mode: claims.ModeJSON}}
}

func assertTracksClosed(t *testing.T, fetcher *fakeFetcher) {
	t.Helper()
	for _, track := range fetcher.tracks {
		if _, err := os.Stat(track.Dir); !os.IsNotExist(err) {
			t.Fatalf("expected scoped dir %s removed", track.Dir)
		}
	}
}

func TestVideoInfoDoesNotFetchAudio(t *testing.T) {
	fetcher, transcriber, extractor := newFixture(t)
	title := "Sleep tips"
	fetcher.info = media.VideoInfo{Title: &title}
	p := New(fetcher, transcriber, extractor, nil)

	info, err := p.VideoInfo(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("VideoInfo returned error: %v", err)
	}
	if info.Title == nil || *info.Title != title {
		t.Fatalf("unexpected info %+v", info)
	}
	if !slices.Equal(fetcher.calls, []string{"info:https://youtu.be/abc"}) {
		t.Fatalf("unexpected fetcher calls %v", fetcher.calls)
	}
	if transcriber.calls != 0 || len(extractor.inputs) != 0 {
		t.Fatal("metadata path should not run later stages")
	}
}

func TestTranscribeClosesTrack(t *testing.T) {
	fetcher, transcriber, extractor := newFixture(t)
	p := New(fetcher, transcriber, extractor, nil)

	transcript, err := p.Transcribe(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if transcript.String() != "Eat greens.\n\n Sleep well!" {
		t.Fatalf("unexpected transcript %q", transcript.String())
	}
	if !transcriber.sawTrack {
		t.Fatal("transcriber should see the audio file")
	}
	if len(extractor.inputs) != 0 {
		t.Fatal("transcribe should not extract claims")
	}
	assertTracksClosed(t, fetcher)
}

func TestTranscribeFailureStillClosesTrack(t *testing.T) {
	fetcher, transcriber, extractor := newFixture(t)
	transcriber.err = services.Wrap(services.ErrTranscription, "transcribe", "whisperx", "crashed", nil)
	p := New(fetcher, transcriber, extractor, nil)

	_, err := p.Transcribe(context.Background(), "https://youtu.be/abc")
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected transcription error, got %v", err)
	}
	assertTracksClosed(t, fetcher)
}

func TestExtractComposesStages(t *testing.T) {
	fetcher, transcriber, extractor := newFixture(t)
	p := New(fetcher, transcriber, extractor, nil)

	result, err := p.Extract(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !slices.Equal(result.Claims, claims.ClaimList{"Eat greens", "Sleep well"}) || result.Mode != claims.ModeJSON {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(extractor.inputs) != 1 || extractor.inputs[0] != "Eat greens.\n\n Sleep well!" {
		t.Fatalf("extractor should receive the joined transcript, got %q", extractor.inputs)
	}
	assertTracksClosed(t, fetcher)
}

func TestExtractStopsAtFirstFailure(t *testing.T) {
	fetcher, transcriber, extractor := newFixture(t)
	fetcher.fetchErr = services.Wrap(services.ErrUnresolvableVideo, "fetch", "yt-dlp", "private video", nil)
	p := New(fetcher, transcriber, extractor, nil)

	_, err := p.Extract(context.Background(), "https://youtu.be/private")
	if !errors.Is(err, services.ErrUnresolvableVideo) {
		t.Fatalf("expected unresolvable video error, got %v", err)
	}
	if transcriber.calls != 0 || len(extractor.inputs) != 0 {
		t.Fatal("later stages must not run after a fetch failure")
	}
}

func TestExtractFailureKeepsTranscript(t *testing.T) {
	fetcher, transcriber, extractor := newFixture(t)
	extractor.err = services.Wrap(services.ErrGeneration, "extract", "llm", "upstream down", nil)
	p := New(fetcher, transcriber, extractor, nil)

	result, err := p.Extract(context.Background(), "https://youtu.be/abc")
	if !errors.Is(err, services.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
	if result.Transcript.String() != "Eat greens.\n\n Sleep well!" {
		t.Fatalf("expected transcript alongside error, got %q", result.Transcript.String())
	}
	if result.Claims == nil || len(result.Claims) != 0 {
		t.Fatalf("expected empty claims on failure, got %v", result.Claims)
	}
}
