// Package openaiwhisper transcribes audio with the hosted Whisper model behind
// an OpenAI-compatible /audio/transcriptions endpoint.
//
// The whole WAV file is uploaded in one request; files above the endpoint's
// 25 MiB ceiling are rejected before upload.
package openaiwhisper
