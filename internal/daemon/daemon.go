// Package daemon supervises the long-running service: single-instance
// locking, boot-time crash recovery, the worker pool, the chat transport
// poller, and the local HTTP status API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"warble/internal/bot"
	"warble/internal/config"
	"warble/internal/effects"
	"warble/internal/jobs"
	"warble/internal/logging"
	"warble/internal/notifications"
	"warble/internal/queue"
	"warble/internal/readiness"
	"warble/internal/staging"
)

// Daemon owns the lifecycle of all long-running components.
type Daemon struct {
	cfg      *config.Config
	store    *queue.Store
	manager  *jobs.Manager
	registry *effects.Registry
	notifier notifications.Service
	gate     *readiness.Gate
	poller   *bot.Poller
	logger   *slog.Logger
	version  string

	lock      *flock.Flock
	api       *apiServer
	botCancel context.CancelFunc
	botDone   chan struct{}
	started   bool
}

// New assembles a daemon. The poller may be nil when the transport is
// disabled.
func New(cfg *config.Config, store *queue.Store, manager *jobs.Manager, registry *effects.Registry, notifier notifications.Service, gate *readiness.Gate, poller *bot.Poller, logger *slog.Logger, version string) (*Daemon, error) {
	if cfg == nil || store == nil || manager == nil {
		return nil, errors.New("daemon requires config, store, and manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Daemon{
		cfg:      cfg,
		store:    store,
		manager:  manager,
		registry: registry,
		notifier: notifier,
		gate:     gate,
		poller:   poller,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		version:  version,
	}
	server, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = server
	return d, nil
}

// LockFilePath returns the single-instance lock location.
func (d *Daemon) LockFilePath() string {
	return filepath.Join(d.cfg.Paths.LogDir, "warbled.lock")
}

// Start brings the daemon up: lock, crash recovery, stale staging sweep,
// worker pool, HTTP API, and the transport poller.
func (d *Daemon) Start(ctx context.Context) error {
	if d.started {
		return errors.New("daemon already started")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	lock := flock.New(d.LockFilePath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return errors.New("another warbled instance is already running")
	}
	d.lock = lock

	// Crash recovery before any worker starts: stuck processing rows go
	// back to staged, and terminal rows that were never cleaned lose their
	// staging directories.
	reset, err := d.store.ResetStuckProcessing(ctx)
	if err != nil {
		return fmt.Errorf("reset stuck jobs: %w", err)
	}
	if reset > 0 {
		d.logger.Info("re-queued jobs stuck in processing", logging.Int64("count", reset))
	}
	if cleaned, err := d.manager.CleanupLeftovers(ctx); err != nil {
		d.logger.Warn("leftover cleanup failed", logging.Error(err))
	} else if cleaned > 0 {
		d.logger.Info("cleaned leftover staging directories", logging.Int("count", cleaned))
	}

	maxAge := time.Duration(d.cfg.Jobs.StaleStagingMaxAge) * time.Hour
	sweep := staging.CleanStale(d.cfg.Paths.StagingDir, maxAge, d.logger)
	if len(sweep.Removed) > 0 {
		d.logger.Info("removed stale staging directories", logging.Int("count", len(sweep.Removed)))
	}

	if err := d.manager.Start(ctx); err != nil {
		d.releaseLock()
		return err
	}

	if err := d.api.start(ctx); err != nil {
		_ = d.manager.Stop(ctx)
		d.releaseLock()
		return err
	}

	if d.poller != nil {
		botCtx, cancel := context.WithCancel(ctx)
		d.botCancel = cancel
		d.botDone = make(chan struct{})
		go func() {
			defer close(d.botDone)
			if err := d.poller.Run(botCtx); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error("transport poller exited", logging.Error(err))
			}
		}()
	}

	if d.notifier != nil {
		_ = d.notifier.NotifyDaemonStarted(ctx, d.version)
	}

	d.started = true
	d.logger.Info("daemon started",
		logging.String("version", d.version),
		logging.Bool("bot", d.poller != nil),
	)
	return nil
}

// Stop shuts everything down in reverse order of startup.
func (d *Daemon) Stop(ctx context.Context) error {
	if !d.started {
		return nil
	}
	d.started = false

	if d.botCancel != nil {
		d.botCancel()
		select {
		case <-d.botDone:
		case <-time.After(5 * time.Second):
			d.logger.Warn("transport poller did not stop in time")
		}
	}

	d.api.stop()

	err := d.manager.Stop(ctx)
	d.releaseLock()
	d.logger.Info("daemon stopped")
	return err
}

func (d *Daemon) releaseLock() {
	if d.lock != nil {
		_ = d.lock.Unlock()
		d.lock = nil
	}
}

// Status reports the daemon's current health.
func (d *Daemon) Status(ctx context.Context) DaemonSnapshot {
	snapshot := DaemonSnapshot{
		Running:     d.started,
		Version:     d.version,
		PID:         os.Getpid(),
		Workers:     d.cfg.Jobs.MaxConcurrent,
		BotEnabled:  d.poller != nil,
		QueueDBPath: d.store.Path(),
	}
	if d.gate != nil {
		snapshot.IdleFor = d.gate.IdleFor()
	}
	if summary, err := d.store.Health(ctx); err == nil {
		snapshot.Queue = summary
	}
	return snapshot
}

// DaemonSnapshot is the internal form of the status report.
type DaemonSnapshot struct {
	Running     bool
	Version     string
	PID         int
	Workers     int
	BotEnabled  bool
	QueueDBPath string
	IdleFor     time.Duration
	Queue       queue.HealthSummary
}
