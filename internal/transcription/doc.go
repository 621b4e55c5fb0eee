// Package transcription converts an audio track into sentence units.
//
// The speech-to-text work is delegated to an Engine (whisperx, the OpenAI
// transcription endpoint, or Google Cloud Speech). The service only checks
// that the audio is readable, runs the engine once over the whole file, and
// reflows the text at sentence terminators.
package transcription
