// Package observability wires OpenTelemetry tracing from the [tracing] config
// section. Spans are produced by otelgin for HTTP requests and by the pipeline
// for each stage; this package only installs the provider and exporter.
package observability
