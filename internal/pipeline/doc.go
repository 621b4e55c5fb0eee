// Package pipeline composes the media fetcher, the transcriber, and the claim
// extractor into the three operations served by the CLI and HTTP API:
// VideoInfo, Transcribe, and Extract.
//
// Each stage runs through stageexec so it is logged and traced uniformly. The
// audio track produced by the fetch stage is owned by the run that created it
// and is closed before the run returns.
package pipeline
