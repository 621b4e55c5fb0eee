package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"factcheck/internal/logging"
	"factcheck/internal/services"
)

var errNoDownload = errors.New("download reported no file")

// AudioTrack is a transcoded audio file inside a scoped directory owned by one
// pipeline call. Close removes the directory.
type AudioTrack struct {
	Path string
	Dir  string
	// Duration is the probed length in seconds, or 0 when unknown.
	Duration float64

	logger    *slog.Logger
	closeOnce sync.Once
	closeErr  error
}

// Close removes the scoped directory. Safe to call more than once.
func (t *AudioTrack) Close() error {
	if t == nil {
		return nil
	}
	t.closeOnce.Do(func() {
		if t.Dir == "" {
			return
		}
		if err := os.RemoveAll(t.Dir); err != nil {
			t.closeErr = fmt.Errorf("remove scoped dir: %w", err)
			logging.WarnWithContext(t.logger, "scoped directory not removed", "scoped_cleanup_failed",
				logging.String("dir", t.Dir),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "stale directories are swept at the next server start"),
			)
		}
	})
	return t.closeErr
}

// FetchAudio downloads the best audio stream for url and transcodes it into the
// canonical waveform. The scoped directory is removed on every error path.
func (f *Fetcher) FetchAudio(ctx context.Context, url string) (*AudioTrack, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, services.Wrap(services.ErrUnresolvableVideo, "fetch", "resolve", "empty video url", nil)
	}
	logger := logging.WithContext(ctx, f.logger)

	dir, err := f.createScopedDir()
	if err != nil {
		return nil, services.Wrap(services.ErrDownload, "fetch", "scoped storage", "create scoped directory", err)
	}
	track := &AudioTrack{Dir: dir, logger: logger}

	fail := func(err error) (*AudioTrack, error) {
		_ = track.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	source, err := f.download(ctx, dir, url)
	if err != nil {
		return fail(err)
	}
	logger.Debug("audio downloaded", logging.String("source", filepath.Base(source)))

	dest := filepath.Join(dir, audioFileName)
	if err := f.transcode(ctx, source, dest); err != nil {
		return fail(err)
	}
	if source != dest {
		_ = os.Remove(source)
	}
	track.Path = dest
	track.Duration = f.verify(ctx, logger, dest)

	logger.Info("audio track ready",
		logging.String("path", dest),
		logging.Int("sample_rate", f.cfg.SampleRate),
		logging.Int("channels", f.cfg.Channels),
	)
	return track, nil
}

func (f *Fetcher) createScopedDir() (string, error) {
	workDir := strings.TrimSpace(f.cfg.WorkDir)
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", err
	}
	dir := filepath.Join(workDir, scopedDirStem+uuid.NewString())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func (f *Fetcher) download(ctx context.Context, dir, url string) (string, error) {
	template := filepath.Join(dir, sourceFileStem+".%(ext)s")
	args := []string{
		"-f", f.cfg.Format,
		"--no-playlist",
		"--no-part",
		"--no-warnings",
		"-o", template,
		"--print", "after_move:filepath",
		url,
	}
	stdout, stderr, err := f.run(ctx, f.cfg.YTDLPBinary, args...)
	if err != nil {
		if isUnresolvable(stderr) {
			return "", services.Wrap(services.ErrUnresolvableVideo, "fetch", "yt-dlp", "video cannot be resolved", toolFailure(err, stderr))
		}
		return "", services.Wrap(services.ErrDownload, "fetch", "yt-dlp", "download failed", toolFailure(err, stderr))
	}

	path := lastLine(string(stdout))
	if path == "" {
		matches, _ := filepath.Glob(filepath.Join(dir, sourceFileStem+".*"))
		if len(matches) > 0 {
			path = matches[0]
		}
	}
	if path == "" {
		return "", services.Wrap(services.ErrDownload, "fetch", "yt-dlp", "no output file", errNoDownload)
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", services.Wrap(services.ErrDownload, "fetch", "yt-dlp", "downloaded file missing", errNoDownload)
	}
	return path, nil
}

func (f *Fetcher) transcode(ctx context.Context, source, dest string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", strconv.Itoa(f.cfg.Channels),
		"-ar", strconv.Itoa(f.cfg.SampleRate),
		"-c:a", "pcm_s16le",
		dest,
	}
	if _, stderr, err := f.run(ctx, f.cfg.FFmpegBinary, args...); err != nil {
		return services.Wrap(services.ErrTranscode, "fetch", "ffmpeg", "transcode failed", toolFailure(err, stderr))
	}
	info, err := os.Stat(dest)
	if err != nil {
		return services.Wrap(services.ErrTranscode, "fetch", "ffmpeg", "transcoded file missing", err)
	}
	if info.IsDir() || info.Size() == 0 {
		return services.Wrap(services.ErrTranscode, "fetch", "ffmpeg", "transcoded file empty", errors.New(dest))
	}
	return nil
}

// verify probes the produced waveform. Mismatches are logged, never fatal.
func (f *Fetcher) verify(ctx context.Context, logger *slog.Logger, path string) float64 {
	if f.probe == nil {
		return 0
	}
	result, err := f.probe(ctx, path)
	if err != nil {
		logging.WarnWithContext(logger, "audio probe failed", "audio_probe_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "audio duration unknown"),
		)
		return 0
	}
	if stream, ok := result.AudioStream(); ok {
		if rate := result.SampleRateHz(); rate != f.cfg.SampleRate || stream.Channels != f.cfg.Channels {
			logging.WarnWithContext(logger, "unexpected audio format", "audio_format_mismatch",
				logging.Int("sample_rate", rate),
				logging.Int("channels", stream.Channels),
				logging.String(logging.FieldImpact, "transcription quality may degrade"),
			)
		}
	}
	duration := result.DurationSeconds()
	if math.IsNaN(duration) || duration < 0 {
		return 0
	}
	return duration
}
