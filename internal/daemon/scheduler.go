package daemon

import (
	"context"
	"errors"
	"time"

	"newsroom/internal/logging"
	"newsroom/internal/pipeline"
)

func (d *Daemon) schedule(ctx context.Context, interval time.Duration) {
	defer d.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.setNextRun(time.Time{})
			return
		case <-ticker.C:
			d.runScheduled(ctx)
			d.setNextRun(time.Now().Add(interval))
		}
	}
}

func (d *Daemon) runScheduled(ctx context.Context) {
	report, err := d.RunPipeline(ctx, d.cfg.Pipeline.BatchSize)
	switch {
	case errors.Is(err, pipeline.ErrPipelineBusy):
		d.logger.Info("scheduled run skipped",
			logging.String(logging.FieldEventType, "scheduled_run_skipped"),
			logging.String("reason", "pipeline busy"),
		)
	case ctx.Err() != nil:
		// Shutdown interrupted the run.
	case err != nil:
		logging.ErrorWithContext(d.logger, "scheduled run aborted", "scheduled_run_failed",
			logging.Error(err),
			logging.String("run_id", report.RunID),
			logging.String(logging.FieldImpact, "next scheduled run will retry remaining items"),
		)
	default:
		d.logger.Info("scheduled run finished",
			logging.String(logging.FieldEventType, "scheduled_run_complete"),
			logging.String("run_id", report.RunID),
			logging.String("summary", report.Summary()),
		)
	}
}

func (d *Daemon) setNextRun(at time.Time) {
	d.mu.Lock()
	d.nextRun = at
	d.mu.Unlock()
}
