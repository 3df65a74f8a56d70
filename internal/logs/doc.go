// Package logs reads newsroom log files for the CLI: the last N lines of a
// file and a polling follow mode that survives rotation of the newsroomd log
// pointer. Memory stays bounded by the requested line count.
package logs
