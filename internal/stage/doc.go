// Package stage holds the batch bookkeeping shared by every pipeline stage.
//
// A stage dequeues or selects up to n items and processes them one at a time
// through a Runner. The Runner applies the per-item timeout, annotates the
// context with the item and stage, logs start/complete/failure lines and
// records the outcome in a Report. Item failures never stop the batch; only
// errors marked with Systemic (store failures, cancellation of the whole run)
// are returned to the caller.
package stage
