// Package notifications pushes pipeline events to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers publish unconditionally. Event kinds can be muted individually
// through the notifications config section.
package notifications
