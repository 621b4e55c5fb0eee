package gcpspeech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	langpkg "factcheck/internal/language"
	"factcheck/internal/logging"
	"factcheck/internal/services"
)

const (
	// inlineLimitBytes is the largest payload LongRunningRecognize accepts as inline content.
	inlineLimitBytes = 10 << 20
	objectPrefix     = "factcheck/"
	defaultRetries   = 4
)

// Config captures Cloud Speech-to-Text settings.
type Config struct {
	Language    string
	Model       string
	Credentials string
	Bucket      string
	SampleRate  int
	Channels    int
}

type recognizeFunc func(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error)

// objectStore stages audio in Cloud Storage for recognition by URI.
type objectStore interface {
	Upload(ctx context.Context, bucket, object string, r io.Reader) error
	Delete(ctx context.Context, bucket, object string) error
}

// Service transcribes audio with Google Cloud Speech-to-Text.
type Service struct {
	cfg        Config
	logger     *slog.Logger
	recognize  recognizeFunc
	objects    objectStore
	closers    []io.Closer
	maxRetries int
	sleeper    func(time.Duration)
}

// ClientOptions resolves credentials from a JSON blob or a key file path.
// Empty input falls back to application default credentials.
func ClientOptions(credentials string) []option.ClientOption {
	creds := strings.TrimSpace(credentials)
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

// New dials the speech API and, when a bucket is configured, Cloud Storage.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Service, error) {
	opts := ClientOptions(cfg.Credentials)

	speechClient, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "gcp speech", "create client", err)
	}
	svc := newService(cfg, logger, func(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := speechClient.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	}, nil)
	svc.closers = append(svc.closers, speechClient)

	if strings.TrimSpace(cfg.Bucket) != "" {
		storageOpts := append(append([]option.ClientOption(nil), opts...), option.WithScopes(storage.ScopeReadWrite))
		storageClient, err := storage.NewClient(ctx, storageOpts...)
		if err != nil {
			_ = speechClient.Close()
			return nil, services.Wrap(services.ErrConfiguration, "transcribe", "gcs", "create client", err)
		}
		svc.objects = &gcsStore{client: storageClient}
		svc.closers = append(svc.closers, storageClient)
	}
	return svc, nil
}

func newService(cfg Config, logger *slog.Logger, recognize recognizeFunc, objects objectStore) *Service {
	return &Service{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "gcp-speech"),
		recognize:  recognize,
		objects:    objects,
		maxRetries: defaultRetries,
		sleeper:    time.Sleep,
	}
}

// Name identifies the engine in logs and status output.
func (s *Service) Name() string {
	return "gcp"
}

// Model returns the configured recognition model.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Close releases the underlying API clients.
func (s *Service) Close() error {
	var errs []error
	for _, closer := range s.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Transcribe recognizes the audio file and returns the joined transcript.
// Audio is sent inline unless a staging bucket is configured, in which case it
// is uploaded, recognized by gs:// URI, and deleted on every path.
func (s *Service) Transcribe(ctx context.Context, audioPath string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", services.Wrap(services.ErrAudioAccess, "transcribe", "gcp speech", "open audio", err)
	}
	defer file.Close()

	req := &speechpb.LongRunningRecognizeRequest{Config: s.recognitionConfig(audioPath)}

	if s.objects != nil {
		object := objectPrefix + uuid.NewString() + filepath.Ext(audioPath)
		if err := s.objects.Upload(ctx, s.cfg.Bucket, object, file); err != nil {
			return "", services.Wrap(services.ErrTranscription, "transcribe", "gcs", "upload audio", err)
		}
		defer func() {
			cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
			defer cancel()
			if err := s.objects.Delete(cleanupCtx, s.cfg.Bucket, object); err != nil {
				logging.WarnWithContext(s.logger, "staged audio not deleted", "gcs_cleanup_failed",
					logging.String("object", object),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "remove the object manually or add a bucket lifecycle rule"),
				)
			}
		}()
		req.Audio = &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Uri{Uri: "gs://" + s.cfg.Bucket + "/" + object}}
	} else {
		content, err := io.ReadAll(io.LimitReader(file, inlineLimitBytes+1))
		if err != nil {
			return "", services.Wrap(services.ErrAudioAccess, "transcribe", "gcp speech", "read audio", err)
		}
		if len(content) > inlineLimitBytes {
			return "", services.Wrap(services.ErrTranscription, "transcribe", "gcp speech",
				"audio exceeds the inline limit; set transcription.gcp_bucket to stage long audio", nil)
		}
		if len(content) == 0 {
			return "", nil
		}
		req.Audio = &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: content}}
	}

	resp, err := s.recognizeWithRetry(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrTranscription, "transcribe", "gcp speech", "long running recognize", err)
	}
	return joinResults(resp), nil
}

func (s *Service) recognitionConfig(audioPath string) *speechpb.RecognitionConfig {
	languageCode := langpkg.ToBCP47(s.cfg.Language)
	if languageCode == "" {
		languageCode = "en-US"
	}
	return &speechpb.RecognitionConfig{
		LanguageCode:               languageCode,
		Model:                      s.cfg.Model,
		EnableAutomaticPunctuation: true,
		Encoding:                   inferEncoding(audioPath),
		SampleRateHertz:            int32(max(s.cfg.SampleRate, 0)),
		AudioChannelCount:          int32(max(s.cfg.Channels, 0)),
	}
}

func (s *Service) recognizeWithRetry(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error) {
	backoff := 750 * time.Millisecond
	var last error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := s.recognize(ctx, req)
		if err == nil {
			return resp, nil
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == s.maxRetries {
			break
		}
		s.logger.Debug("speech recognize retry", logging.Int("attempt", attempt+1), logging.Error(err))
		s.sleeper(backoff)
		backoff = min(backoff*2, 10*time.Second)
	}
	return nil, fmt.Errorf("after %d attempts: %w", s.maxRetries+1, last)
}

func inferEncoding(path string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return speechpb.RecognitionConfig_LINEAR16
	case ".flac":
		return speechpb.RecognitionConfig_FLAC
	case ".mp3":
		return speechpb.RecognitionConfig_MP3
	case ".ogg", ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

// joinResults concatenates the top alternative of every result with single spaces.
func joinResults(resp *speechpb.LongRunningRecognizeResponse) string {
	if resp == nil {
		return ""
	}
	var full strings.Builder
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		text := strings.TrimSpace(alts[0].GetTranscript())
		if text == "" {
			continue
		}
		if full.Len() > 0 {
			full.WriteByte(' ')
		}
		full.WriteString(text)
	}
	return full.String()
}

type gcsStore struct {
	client *storage.Client
}

func (g *gcsStore) Upload(ctx context.Context, bucket, object string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	w := g.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "audio/wav"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gcs object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close gcs writer: %w", err)
	}
	return nil
}

func (g *gcsStore) Delete(ctx context.Context, bucket, object string) error {
	if err := g.client.Bucket(bucket).Object(object).Delete(ctx); err != nil {
		return fmt.Errorf("delete gcs object %q in bucket %q: %w", object, bucket, err)
	}
	return nil
}
