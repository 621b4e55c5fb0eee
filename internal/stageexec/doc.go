// Package stageexec runs one pipeline stage with consistent logging and tracing.
package stageexec
