package preflight

import (
	"context"
	"strings"

	"newsroom/internal/config"
	"newsroom/internal/deps"
	"newsroom/internal/stage"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Health converts the result for the daemon health endpoint.
func (r Result) Health() stage.Health {
	if r.Passed {
		h := stage.Healthy(r.Name)
		h.Detail = r.Detail
		return h
	}
	return stage.Unhealthy(r.Name, r.Detail)
}

// Options selects the slower network checks.
type Options struct {
	// Remote enables the LLM round trip.
	Remote bool
}

// RunAll executes the applicable checks for cfg.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if strings.TrimSpace(cfg.Paths.ContextDir) != "" {
		results = append(results, CheckContextDir(cfg.Paths.ContextDir))
	}
	results = append(results, CheckYouTube(cfg.YouTube))

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		results = append(results, binaryResult(status))
	}

	results = append(results, CheckImages(cfg.Images))
	if cfg.Publish.Enabled {
		results = append(results, CheckPublish(cfg.Publish))
	}
	if opts.Remote {
		results = append(results, CheckLLM(ctx, "Text model", cfg.GetLLM()))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

func binaryResult(status deps.Status) Result {
	switch {
	case status.Available:
		return Result{Name: status.Name, Passed: true, Detail: status.Path}
	case status.Optional:
		return Result{Name: status.Name, Passed: true, Detail: "not installed (optional: " + status.Detail + ")"}
	default:
		return Result{Name: status.Name, Detail: status.Detail}
	}
}
