// Package daemon coordinates the long-running newsroomd process.
//
// It wires configuration, the store and the pipeline orchestrator into a
// single lifecycle with flock-based locking to prevent multiple instances.
// The daemon serves the HTTP API, runs the pipeline on a fixed interval when
// configured, and exposes health and status summaries.
//
// Keep orchestration logic here: stage behavior lives in the pipeline
// packages while the daemon focuses on startup, shutdown, scheduling and
// transport.
package daemon
