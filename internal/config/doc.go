// Package config loads, normalizes, and validates factcheck configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENROUTER_API_KEY and HF_TOKEN. The Config type centralizes every knob the
// server and CLI need so the work directory, external tool binaries, and
// service credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
