// Package imagegen calls an OpenAI-compatible image generation endpoint.
//
// gpt-image models always answer with base64 data; the client turns it into
// a data:image/png;base64 URL so callers can store and serve a single string
// regardless of provider. Providers that return hosted URLs are passed
// through unchanged.
package imagegen
