// Package daemon coordinates the long-running factcheck HTTP server.
//
// It wires configuration, the media fetcher, the selected transcription
// engine, and the claim extractor into a single pipeline served by the api
// router. A flock-based lock in the work directory prevents two servers from
// sweeping each other's scoped audio directories. Start removes stale
// directories left by a previous crash before the listener is bound.
//
// Keep orchestration logic here: pipeline steps live in their respective
// packages while the daemon focuses on startup, shutdown, and status.
package daemon
