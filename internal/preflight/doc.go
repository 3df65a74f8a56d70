// Package preflight provides readiness checks for the external services,
// binaries and filesystem paths newsroom depends on.
//
// These checks run in two contexts:
//   - The CLI "newsroom status" command runs RunAll and prints each result.
//   - The daemon health endpoint runs the local checks on every probe and
//     adds the model checks when asked for a deep check.
//
// Checks for disabled features are skipped.
package preflight
