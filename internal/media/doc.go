// Package media acquires audio for the pipeline.
//
// Fetcher wraps two external tools: yt-dlp resolves video metadata and
// downloads the best available audio stream, and ffmpeg transcodes it into the
// canonical waveform (mono, 16 kHz, 16-bit PCM WAV by default). Each download
// lives in its own uniquely named directory under the configured work dir and
// is returned as an AudioTrack whose Close removes that directory. Every
// failure path removes it too.
//
// Errors carry the markers from internal/services: ErrUnresolvableVideo,
// ErrDownload, and ErrTranscode.
package media
