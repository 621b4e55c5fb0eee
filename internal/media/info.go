package media

import (
	"context"
	"encoding/json"
	"strings"

	"factcheck/internal/logging"
	"factcheck/internal/services"
)

// VideoInfo is the metadata-only view of a video.
type VideoInfo struct {
	Title        *string `json:"title"`
	ThumbnailURL *string `json:"thumbnail_url"`
	ID           string  `json:"id,omitempty"`
	Duration     float64 `json:"duration,omitempty"`
	Uploader     string  `json:"uploader,omitempty"`
	WebpageURL   string  `json:"webpage_url,omitempty"`
}

type ytdlpInfo struct {
	ID         string   `json:"id"`
	Title      *string  `json:"title"`
	Thumbnail  *string  `json:"thumbnail"`
	Duration   *float64 `json:"duration"`
	Uploader   string   `json:"uploader"`
	WebpageURL string   `json:"webpage_url"`
}

// VideoInfo queries yt-dlp for metadata without downloading any media.
func (f *Fetcher) VideoInfo(ctx context.Context, url string) (VideoInfo, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return VideoInfo{}, services.Wrap(services.ErrUnresolvableVideo, "video-info", "resolve", "empty video url", nil)
	}
	logger := logging.WithContext(ctx, f.logger)

	args := []string{"--skip-download", "--dump-single-json", "--no-playlist", "--no-warnings", url}
	stdout, stderr, err := f.run(ctx, f.cfg.YTDLPBinary, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return VideoInfo{}, ctxErr
		}
		logger.Debug("yt-dlp metadata query failed", logging.String("stderr", lastLine(string(stderr))))
		return VideoInfo{}, services.Wrap(services.ErrUnresolvableVideo, "video-info", "yt-dlp", "metadata query failed", toolFailure(err, stderr))
	}

	trimmed := strings.TrimSpace(string(stdout))
	if trimmed == "" {
		return VideoInfo{}, services.Wrap(services.ErrUnresolvableVideo, "video-info", "yt-dlp", "empty metadata", nil)
	}
	var raw ytdlpInfo
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return VideoInfo{}, services.Wrap(services.ErrUnresolvableVideo, "video-info", "yt-dlp", "decode metadata", err)
	}

	info := VideoInfo{
		Title:        raw.Title,
		ThumbnailURL: raw.Thumbnail,
		ID:           raw.ID,
		Uploader:     raw.Uploader,
		WebpageURL:   raw.WebpageURL,
	}
	if raw.Duration != nil {
		info.Duration = *raw.Duration
	}
	logger.Debug("video metadata resolved", logging.String("video_id", info.ID))
	return info, nil
}

var unresolvableMarkers = []string{
	"unsupported url",
	"video unavailable",
	"private video",
	"is not a valid url",
	"incomplete youtube id",
	"this video has been removed",
	"http error 404",
}

// isUnresolvable reports whether yt-dlp output means the video itself cannot be resolved.
func isUnresolvable(stderr []byte) bool {
	lower := strings.ToLower(string(stderr))
	for _, marker := range unresolvableMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
