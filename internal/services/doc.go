// Package services defines shared utilities consumed by the pipeline stages
// and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, stage names, and video URLs for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper, and Kind which reduces a
//     wrapped failure to the short code reported over HTTP and in the CLI.
//
// Subpackages hold the concrete integrations: the chat-completions client used
// for claim extraction and the speech-to-text engines.
package services
