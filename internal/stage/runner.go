package stage

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"newsroom/internal/logging"
	"newsroom/internal/metrics"
	"newsroom/internal/services"
)

// Runner executes stage items one at a time.
type Runner struct {
	Stage       string
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	ItemTimeout time.Duration
}

// Batch accumulates the report for one pass of a stage.
type Batch struct {
	runner  Runner
	report  Report
	started time.Time
}

// Begin opens a new batch.
func (r Runner) Begin() *Batch {
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return &Batch{runner: r, report: NewReport(r.Stage), started: time.Now()}
}

// Report returns the batch results so far.
func (b *Batch) Report() Report {
	return b.report
}

// Run processes one item. It returns nil for item-level failures, which are
// recorded in the report, and the error itself when it is systemic or the
// parent context is done.
func (b *Batch) Run(ctx context.Context, item string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	itemCtx := services.WithStage(services.WithItem(ctx, item), b.runner.Stage)
	var cancel context.CancelFunc = func() {}
	if b.runner.ItemTimeout > 0 {
		itemCtx, cancel = context.WithTimeout(itemCtx, b.runner.ItemTimeout)
	}
	defer cancel()

	logger := logging.WithContext(itemCtx, b.runner.Logger)
	logger.Debug("item started", logging.String(logging.FieldEventType, "item_start"))
	started := time.Now()

	err := fn(itemCtx)
	switch {
	case err == nil:
		b.report.succeed()
		b.runner.Metrics.RecordStageItem(b.runner.Stage, metrics.ResultSuccess)
		logger.Info("item completed",
			logging.String(logging.FieldEventType, "item_complete"),
			logging.Duration("elapsed", time.Since(started)),
		)
		return nil
	case errors.Is(err, ErrSkip):
		b.report.skip()
		b.runner.Metrics.RecordStageItem(b.runner.Stage, metrics.ResultSkipped)
		logger.Info("item skipped",
			logging.String(logging.FieldEventType, "item_skipped"),
			logging.String("reason", strings.TrimSpace(strings.TrimPrefix(err.Error(), ErrSkip.Error()+":"))),
		)
		return nil
	case ctx.Err() == nil && errors.Is(itemCtx.Err(), context.DeadlineExceeded):
		// The item ran out of time, possibly inside a store write. Only this
		// item fails; it is recorded below with kind "timeout".
	case IsSystemic(err):
		logging.ErrorWithContext(logger, "stage aborted", "stage_abort",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check database access and disk space"),
		)
		return err
	case ctx.Err() != nil:
		// The whole run was canceled, not just this item.
		return ctx.Err()
	}

	kind := services.Kind(err)
	if errors.Is(itemCtx.Err(), context.DeadlineExceeded) {
		kind = "timeout"
	}
	b.report.fail(item, kind, err.Error())
	b.runner.Metrics.RecordStageItem(b.runner.Stage, metrics.ResultFailure)
	logging.WarnWithContext(logger, "item failed", "item_failure",
		logging.String(logging.FieldErrorKind, kind),
		logging.Error(err),
		logging.String(logging.FieldImpact, "item left in its previous state"),
	)
	return nil
}

// Finish logs the batch outcome and returns the report.
func (b *Batch) Finish(ctx context.Context) Report {
	elapsed := time.Since(b.started)
	b.runner.Metrics.ObserveStage(b.runner.Stage, elapsed)
	logger := logging.WithContext(services.WithStage(ctx, b.runner.Stage), b.runner.Logger)
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Int("attempted", b.report.Attempted),
		logging.Int("succeeded", b.report.Succeeded),
		logging.Int("failed", b.report.Failed),
		logging.Int("skipped", b.report.Skipped),
		logging.Duration("elapsed", elapsed),
	)
	return b.report
}
