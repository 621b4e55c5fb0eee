// Package llm provides the chat-completions client used for claim extraction.
//
// It talks to any OpenAI-compatible endpoint through go-openai, defaulting to
// OpenRouter, and adds the HTTP-Referer and X-Title attribution headers
// OpenRouter uses for app rankings.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Generate: send one prompt, receive the raw completion text.
// Client.HealthCheck: verify API key and model availability.
//
// # Decoding
//
// Requests pin temperature to zero, cap max_tokens (512 by default), and pass
// an optional fixed seed so repeated runs over the same transcript agree.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors and network timeouts with
// exponential backoff (base 1s, max 10s, up to 5 attempts by default), honouring
// Retry-After when the provider sends it. Context cancellation aborts retries
// immediately. Content is never retried: whatever the model returns is handed
// back to the caller for parsing.
package llm
