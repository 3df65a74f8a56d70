// Package pipeline wires the content stages together.
//
// Orchestrator exposes one operation per stage plus RunFull, which runs
// discovery, transcripts, articles, summaries, images and (when a sink is
// configured) publishing in that order with the same batch size. Item
// failures are collected in per-stage reports; store failures abort the run.
// Full runs are serialized across processes by a file lock in the data
// directory.
package pipeline
