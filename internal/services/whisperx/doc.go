// Package whisperx is the default speech-to-text engine. It launches WhisperX
// through uvx against a prepared WAV file and reads the JSON transcript it
// writes back.
//
// Timing and word-level data in the output are discarded; the engine returns
// only the segment texts joined into one blob. Model, CUDA, VAD method, and
// language are passed via Config.
package whisperx
