// Package llm provides the chat completion client behind article writing,
// summaries and image snippet condensing.
//
// The client speaks the OpenAI-compatible chat completions protocol used by
// OpenRouter and xAI. CompleteJSON requests a JSON object response (article
// drafts); CompleteText returns free-form text (summaries, snippets).
// HealthCheck verifies the key and model during preflight.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions and
// network timeouts with exponential backoff (base 1s, max 10s, up to 4
// attempts by default), honouring Retry-After. Context cancellation aborts
// retries immediately. Every attempt first waits on a token-bucket limiter
// derived from requests_per_minute.
package llm
