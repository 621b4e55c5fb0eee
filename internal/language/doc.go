// Package language normalizes the configured transcription language.
//
// Engines disagree on format: whisperx and the OpenAI transcription endpoint
// take ISO 639-1 codes while Cloud Speech expects a BCP-47 language-region
// tag. All conversions go through golang.org/x/text/language here.
package language
