package stage

import (
	"fmt"
	"strings"
)

// ItemError records why a single item failed.
type ItemError struct {
	Item    string `json:"item"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Report summarizes one stage batch.
type Report struct {
	Stage     string      `json:"stage"`
	Attempted int         `json:"attempted"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Skipped   int         `json:"skipped"`
	Errors    []ItemError `json:"errors"`
}

// NewReport returns an empty report for stage.
func NewReport(stage string) Report {
	return Report{Stage: stage, Errors: []ItemError{}}
}

func (r *Report) succeed() {
	r.Attempted++
	r.Succeeded++
}

func (r *Report) skip() {
	r.Attempted++
	r.Skipped++
}

func (r *Report) fail(item, kind, message string) {
	r.Attempted++
	r.Failed++
	r.Errors = append(r.Errors, ItemError{Item: item, Kind: kind, Message: message})
}

// Summary renders a one-line description suitable for logs and notifications.
func (r Report) Summary() string {
	parts := []string{fmt.Sprintf("%d attempted", r.Attempted), fmt.Sprintf("%d succeeded", r.Succeeded)}
	if r.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", r.Failed))
	}
	if r.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", r.Skipped))
	}
	return r.Stage + ": " + strings.Join(parts, ", ")
}
