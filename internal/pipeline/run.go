package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"newsroom/internal/articles"
	"newsroom/internal/images"
	"newsroom/internal/logging"
	"newsroom/internal/notifications"
	"newsroom/internal/services"
	"newsroom/internal/stage"
)

// DiscoveryStage labels the discovery step of a full run.
const DiscoveryStage = "discovery"

// RunReport describes one full pipeline run.
type RunReport struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Discovered int            `json:"discovered"`
	Stages     []stage.Report `json:"stages"`
	Aborted    bool           `json:"aborted"`
	Error      string         `json:"error,omitempty"`
}

// Failed returns the number of failed items across all stages.
func (r RunReport) Failed() int {
	total := 0
	for _, s := range r.Stages {
		total += s.Failed
	}
	return total
}

// Summary renders the run outcome on one line.
func (r RunReport) Summary() string {
	parts := make([]string, 0, len(r.Stages))
	for _, s := range r.Stages {
		parts = append(parts, fmt.Sprintf("%s %d/%d", s.Stage, s.Succeeded, s.Attempted))
	}
	return strings.Join(parts, ", ")
}

type runStep struct {
	name string
	run  func(context.Context) (stage.Report, error)
}

// RunFull runs every stage in order with batch size n. It returns
// ErrPipelineBusy when another run holds the lock. Item failures are only
// reported; a systemic failure stops the run and is returned alongside the
// partial report.
func (o *Orchestrator) RunFull(ctx context.Context, n int) (RunReport, error) {
	release, err := o.lock.acquire()
	if err != nil {
		return RunReport{}, err
	}
	defer release()

	report := RunReport{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("pipeline run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("batch_size", n),
	)

	steps := []runStep{
		{DiscoveryStage, func(ctx context.Context) (stage.Report, error) {
			return o.discoverStage(ctx, n, &report)
		}},
		{"transcripts", func(ctx context.Context) (stage.Report, error) {
			return o.transcripts.FetchBatch(ctx, n)
		}},
		{"articles", func(ctx context.Context) (stage.Report, error) {
			return o.WriteArticles(ctx, n, articles.WriteOptions{})
		}},
		{"summaries", func(ctx context.Context) (stage.Report, error) {
			return o.Summarize(ctx, n)
		}},
		{"images", func(ctx context.Context) (stage.Report, error) {
			return o.GenerateImages(ctx, n, images.Overrides{})
		}},
	}
	if o.publisher != nil {
		steps = append(steps, runStep{"publish", func(ctx context.Context) (stage.Report, error) {
			return o.publisher.PublishBatch(ctx, n)
		}})
	}

	var runErr error
	for _, step := range steps {
		stageReport, err := step.run(ctx)
		report.Stages = append(report.Stages, stageReport)
		if err != nil {
			runErr = fmt.Errorf("%s stage: %w", step.name, err)
			break
		}
	}
	report.FinishedAt = time.Now().UTC()
	if _, err := o.Stats(ctx); err != nil {
		logger.Debug("queue gauge refresh failed", logging.Error(err))
	}

	if runErr != nil {
		report.Aborted = true
		report.Error = runErr.Error()
		logging.ErrorWithContext(logger, "pipeline run aborted", "run_aborted",
			logging.Error(runErr),
			logging.String(logging.FieldErrorHint, "fix the failing dependency and rerun; completed items are kept"),
		)
		o.notify(ctx, notifications.EventRunFailed, notifications.Payload{
			"error":   runErr,
			"context": "pipeline run " + report.RunID,
		})
		return report, runErr
	}

	logger.Info("pipeline run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("summary", report.Summary()),
		logging.Int("failed", report.Failed()),
		logging.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	o.notify(ctx, notifications.EventRunCompleted, notifications.Payload{
		"summary":  report.Summary(),
		"failed":   report.Failed(),
		"duration": report.FinishedAt.Sub(report.StartedAt),
		"run_id":   report.RunID,
	})
	if failed := report.Failed(); failed > 0 {
		o.notify(ctx, notifications.EventItemFailures, notifications.Payload{
			"failed":  failed,
			"summary": report.Summary(),
		})
	}
	return report, nil
}

// discoverStage wraps discovery as a single-item stage so a listing failure
// is recorded without stopping the rest of the run.
func (o *Orchestrator) discoverStage(ctx context.Context, n int, run *RunReport) (stage.Report, error) {
	batch := stage.Runner{Stage: DiscoveryStage, Logger: o.logger, Metrics: o.metrics}.Begin()
	err := batch.Run(ctx, o.cfg.YouTube.ChannelID, func(itemCtx context.Context) error {
		added, err := o.Discover(itemCtx, n)
		run.Discovered = added
		return err
	})
	if err != nil {
		return batch.Report(), err
	}
	return batch.Finish(ctx), nil
}

func (o *Orchestrator) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := o.notifier.Publish(ctx, event, payload); err != nil {
		o.logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}
