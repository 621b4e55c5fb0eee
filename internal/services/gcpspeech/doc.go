// Package gcpspeech transcribes audio with Google Cloud Speech-to-Text.
//
// Recognition uses LongRunningRecognize with automatic punctuation so the
// sentence splitter downstream has terminators to work with. Speaker
// diarization and word offsets are never requested. Short audio is sent
// inline; longer audio is staged in a Cloud Storage bucket for the duration of
// the request. UNAVAILABLE, RESOURCE_EXHAUSTED, and DEADLINE_EXCEEDED
// responses are retried with capped exponential backoff.
package gcpspeech
