package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnresolvableVideo = errors.New("unresolvable video")
	ErrDownload          = errors.New("download failed")
	ErrTranscode         = errors.New("transcode failed")
	ErrAudioAccess       = errors.New("audio not accessible")
	ErrTranscription     = errors.New("transcription failed")
	ErrGeneration        = errors.New("generation failed")
	ErrExternalTool      = errors.New("external tool error")
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
	ErrTimeout           = errors.New("timeout")
	ErrTransient         = errors.New("transient failure")
)

// Kind values reported to callers of the HTTP boundary and CLI.
const (
	KindUnresolvableVideo = "unresolvable_video"
	KindDownload          = "download_failed"
	KindTranscode         = "transcode_failed"
	KindAudioAccess       = "audio_access"
	KindTranscription     = "transcription_failed"
	KindGeneration        = "generation_failed"
	KindConfiguration     = "configuration"
	KindValidation        = "validation"
	KindCanceled          = "canceled"
	KindInternal          = "internal"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps a pipeline error to its diagnostic kind. Markers are checked before
// context cancellation; stages that observe a canceled context return ctx.Err()
// unmarked, so those report as canceled.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnresolvableVideo):
		return KindUnresolvableVideo
	case errors.Is(err, ErrDownload):
		return KindDownload
	case errors.Is(err, ErrTranscode):
		return KindTranscode
	case errors.Is(err, ErrAudioAccess):
		return KindAudioAccess
	case errors.Is(err, ErrTranscription):
		return KindTranscription
	case errors.Is(err, ErrGeneration):
		return KindGeneration
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
