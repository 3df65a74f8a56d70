// Package api defines wire-format types and converters for the daemon HTTP
// API and the CLI's JSON output. It translates store models into
// transport-friendly DTOs so consumers do not couple to internal types.
//
// # Key Types
//
// Article: transport representation of an article with its summary,
// publication reference and featured art.
//
// Art: featured image metadata. Inline data URLs are replaced by a link to the
// daemon's image endpoint so list payloads stay small.
//
// QueueEntry, Transcript, QueueStats: views over the queue and cache.
//
// DaemonStatus: running state, schedule and the last pipeline run.
//
// # Converters
//
// FromArticle, FromArt, FromTranscript, FromQueueEntry map store records.
// ArticleService wraps a store reader and returns DTOs directly.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript consumers. Timestamps use
// RFC3339 with milliseconds.
package api
