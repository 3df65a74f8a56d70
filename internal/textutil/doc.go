// Package textutil holds small text helpers shared by the stages: boundary
// aware truncation for summaries and image snippets, and slugs for file
// names derived from titles.
package textutil
