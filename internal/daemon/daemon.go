package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"newsroom/internal/api"
	"newsroom/internal/config"
	"newsroom/internal/logging"
	"newsroom/internal/pipeline"
	"newsroom/internal/preflight"
	"newsroom/internal/stage"
	"newsroom/internal/store"
)

// Daemon serves the API and scheduled runs, and enforces single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	pipeline *pipeline.Orchestrator
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	lastRun *pipeline.RunReport
	nextRun time.Time
}

// New constructs a daemon around an orchestrator bound to st.
func New(cfg *config.Config, st *store.Store, orch *pipeline.Orchestrator, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || orch == nil {
		return nil, errors.New("daemon requires config, store, and pipeline")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    st,
		pipeline: orch,
		lockPath: cfg.DaemonLockPath(),
		lock:     flock.New(cfg.DaemonLockPath()),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, starts the API listener and the run
// scheduler.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another newsroomd instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel

	if interval := d.interval(); interval > 0 {
		d.setNextRun(time.Now().Add(interval))
		d.wg.Add(1)
		go d.schedule(runCtx, interval)
	}

	d.running.Store(true)
	d.logger.Info("newsroom daemon started",
		logging.String(logging.FieldEventType, "daemon_start"),
		logging.String("lock", d.lockPath),
		logging.String("schedule", d.scheduleLabel()),
	)
	return nil
}

// Stop stops the scheduler and API listener and releases the daemon lock.
// An in-flight run is canceled; completed items are kept.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("newsroom daemon stopped", logging.String(logging.FieldEventType, "daemon_stop"))
}

// Close stops the daemon. The store is owned by the caller.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Addr returns the API listen address once started.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// RunPipeline runs the full pipeline with batch size n and records the
// report. ErrPipelineBusy is returned untouched when another run holds the
// pipeline lock.
func (d *Daemon) RunPipeline(ctx context.Context, n int) (pipeline.RunReport, error) {
	report, err := d.pipeline.RunFull(ctx, n)
	if errors.Is(err, pipeline.ErrPipelineBusy) {
		return report, err
	}
	d.mu.Lock()
	d.lastRun = &report
	d.mu.Unlock()
	return report, err
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) (api.DaemonStatus, error) {
	stats, err := d.pipeline.Stats(ctx)
	if err != nil {
		return api.DaemonStatus{}, err
	}
	d.mu.Lock()
	lastRun := d.lastRun
	nextRun := d.nextRun
	d.mu.Unlock()

	status := api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		Schedule:     d.scheduleLabel(),
		Stats:        api.FromStats(stats),
		LastRun:      lastRun,
	}
	if !nextRun.IsZero() {
		status.NextRun = nextRun.UTC().Format(time.RFC3339)
	}
	return status, nil
}

// Health probes the store and the local preflight checks. Deep adds the
// text model round trip.
func (d *Daemon) Health(ctx context.Context, deep bool) []stage.Health {
	checks := []stage.Health{stage.Healthy("Store")}
	if err := d.store.Ping(ctx); err != nil {
		checks[0] = stage.Unhealthy("Store", err.Error())
	}
	for _, result := range preflight.RunAll(ctx, d.cfg, preflight.Options{Remote: deep}) {
		checks = append(checks, result.Health())
	}
	return checks
}

func (d *Daemon) interval() time.Duration {
	return time.Duration(d.cfg.Daemon.RunIntervalMinutes) * time.Minute
}

func (d *Daemon) scheduleLabel() string {
	if interval := d.interval(); interval > 0 {
		return "every " + interval.String()
	}
	return "manual"
}
