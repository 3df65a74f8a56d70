package services

import "context"

type contextKey int

const (
	itemKey contextKey = iota
	stageKey
	runIDKey
)

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func valueFrom(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithItem tags ctx with the video id or article id being processed.
func WithItem(ctx context.Context, item string) context.Context {
	return withValue(ctx, itemKey, item)
}

func ItemFromContext(ctx context.Context) (string, bool) { return valueFrom(ctx, itemKey) }

// WithStage tags ctx with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

func StageFromContext(ctx context.Context) (string, bool) { return valueFrom(ctx, stageKey) }

// WithRunID tags ctx with the id of the full pipeline run it belongs to.
func WithRunID(ctx context.Context, id string) context.Context {
	return withValue(ctx, runIDKey, id)
}

func RunIDFromContext(ctx context.Context) (string, bool) { return valueFrom(ctx, runIDKey) }
