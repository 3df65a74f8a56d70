// Package store persists the content pipeline in SQLite: the discovery queue,
// the transcript cache, generated articles and their featured art.
//
// The Store owns every cross-stage invariant. A video id lives in at most one
// of the queue and the transcript cache, since saving a transcript removes the
// id from the queue in the same transaction. DequeueBatch selects and deletes
// under one write lock so concurrent batches never share ids. Bullet points
// and art are written at most once per article through conditional updates and
// a unique constraint.
//
// Schema changes bump the version in schema.go; older databases are rejected
// with ErrSchemaMismatch rather than migrated.
package store
