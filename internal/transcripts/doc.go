// Package transcripts resolves and caches video transcripts.
//
// A cached transcript is returned without touching any external service.
// On a miss the caption source is asked first; when it fails the audio
// transcriber is tried exactly once. Only a successful result is persisted,
// and persisting it removes the id from the queue in the same transaction.
package transcripts
