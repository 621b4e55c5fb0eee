// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The fetcher uses it to confirm that a transcoded track really is the
// expected waveform (sample rate, channel count) and to report its duration.
// Probing is advisory: callers log a mismatch rather than failing the run.
package ffprobe
