// Package main hosts the newsroom CLI entrypoint and command graph.
//
// Stage commands open the SQLite store directly and run the pipeline
// in-process, sharing the cross-process run lock with newsroomd. The daemon
// commands talk to newsroomd over its HTTP API.
//
// Keep this package lean: behavior belongs in the internal packages, and
// commands here only parse flags and render results.
package main
