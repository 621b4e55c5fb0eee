// Package api exposes the pipeline over HTTP with gin.
//
// Routes:
//
//	GET  /health               liveness probe, never authenticated
//	GET  /status               engine, model, and dependency readiness
//	POST /api/video-info       title and thumbnail for {"url": ...}
//	POST /api/factcheck        transcript (alias /api/transcribe)
//	POST /api/extract-claims   transcript and claims (alias /api/extract)
//
// A missing or blank url is rejected with 400 before the pipeline runs.
// Pipeline failures are reported as 500 with an error envelope whose code is
// services.Kind of the failure. When claim generation fails the envelope also
// carries the transcript that was produced.
//
// Requests under /api pass through bearer auth (when api.token is set) and a
// shared token-bucket rate limiter. Every response carries X-Request-ID.
package api
