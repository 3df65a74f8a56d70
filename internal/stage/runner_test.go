package stage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"newsroom/internal/services"
	"newsroom/internal/stage"
)

func TestBatchRecordsOutcomes(t *testing.T) {
	batch := stage.Runner{Stage: "articles"}.Begin()
	ctx := context.Background()

	steps := []struct {
		item string
		err  error
	}{
		{"a", nil},
		{"b", services.Wrap(services.ErrGeneration, "articles", "generate", "empty body", nil)},
		{"c", stage.Skip("already summarized")},
		{"d", nil},
	}
	for _, step := range steps {
		if err := batch.Run(ctx, step.item, func(context.Context) error { return step.err }); err != nil {
			t.Fatalf("Run(%s) returned %v", step.item, err)
		}
	}
	report := batch.Finish(ctx)
	if report.Attempted != 4 || report.Succeeded != 2 || report.Failed != 1 || report.Skipped != 1 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if len(report.Errors) != 1 || report.Errors[0].Item != "b" || report.Errors[0].Kind != "generation" {
		t.Fatalf("unexpected errors %+v", report.Errors)
	}
}

func TestBatchItemTimeoutIsIsolated(t *testing.T) {
	batch := stage.Runner{Stage: "transcripts", ItemTimeout: 20 * time.Millisecond}.Begin()
	ctx := context.Background()

	err := batch.Run(ctx, "slow", func(ctx context.Context) error {
		<-ctx.Done()
		return fmt.Errorf("fetch: %w", ctx.Err())
	})
	if err != nil {
		t.Fatalf("timeout should be recorded, got %v", err)
	}
	if err := batch.Run(ctx, "fast", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("second item failed: %v", err)
	}
	report := batch.Report()
	if report.Failed != 1 || report.Succeeded != 1 || report.Errors[0].Kind != "timeout" {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestBatchTimeoutDuringStoreWriteIsIsolated(t *testing.T) {
	batch := stage.Runner{Stage: "articles", ItemTimeout: 20 * time.Millisecond}.Begin()
	ctx := context.Background()

	err := batch.Run(ctx, "late", func(ctx context.Context) error {
		<-ctx.Done()
		return stage.Systemic(fmt.Errorf("insert article: %w", ctx.Err()))
	})
	if err != nil {
		t.Fatalf("expired item must not abort the batch, got %v", err)
	}
	if err := batch.Run(ctx, "next", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("sibling item failed: %v", err)
	}
	report := batch.Report()
	if report.Attempted != 2 || report.Failed != 1 || report.Succeeded != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Errors[0].Item != "late" || report.Errors[0].Kind != "timeout" {
		t.Fatalf("unexpected error entry %+v", report.Errors[0])
	}
}

func TestBatchSystemicErrorAborts(t *testing.T) {
	batch := stage.Runner{Stage: "summaries"}.Begin()
	boom := errors.New("database is locked")
	err := batch.Run(context.Background(), "1", func(context.Context) error {
		return stage.Systemic(boom)
	})
	if !errors.Is(err, boom) || !stage.IsSystemic(err) {
		t.Fatalf("expected systemic error, got %v", err)
	}
	if batch.Report().Attempted != 0 {
		t.Fatalf("systemic errors are not item outcomes: %+v", batch.Report())
	}
}

func TestBatchStopsOnCanceledParent(t *testing.T) {
	batch := stage.Runner{Stage: "images"}.Begin()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := batch.Run(ctx, "1", func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected cancellation before work, got %v (called=%v)", err, called)
	}
}

func TestReportSummary(t *testing.T) {
	report := stage.NewReport("images")
	if got := report.Summary(); got != "images: 0 attempted, 0 succeeded" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestAllReady(t *testing.T) {
	if !stage.AllReady([]stage.Health{stage.Healthy("store")}) {
		t.Fatal("expected ready")
	}
	if stage.AllReady([]stage.Health{stage.Healthy("store"), stage.Unhealthy("llm", "no key")}) {
		t.Fatal("expected not ready")
	}
}
