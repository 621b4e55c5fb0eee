// Package preflight validates the runtime environment before the server
// starts and backs the status command: directory permissions, external
// executables, transcription backend credentials, and LLM reachability.
package preflight
