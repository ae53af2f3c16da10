package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"warble/internal/config"
	"warble/internal/effects"
	"warble/internal/logging"
	"warble/internal/media/ffprobe"
	"warble/internal/notifications"
	"warble/internal/queue"
	"warble/internal/services/ffmpeg"
	"warble/internal/staging"
)

// Engine renders one staged input into one output artifact.
type Engine interface {
	Run(ctx context.Context, req ffmpeg.Request) (ffmpeg.Result, error)
}

// TerminalHook runs after a job reaches a terminal state but before its
// staging directory is cleaned, so delivery can still read the result file.
type TerminalHook func(ctx context.Context, job queue.Job)

type probeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Manager owns the job lifecycle from submission to cleanup.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	registry *effects.Registry
	engine   Engine
	notifier notifications.Service
	logger   *slog.Logger
	probe    probeFunc

	mu         sync.Mutex
	waiters    map[int64][]chan queue.Job
	inFlight   map[int64]context.CancelFunc
	onTerminal TerminalHook

	kick    chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewManager wires the pipeline together. The notifier may be nil.
func NewManager(cfg *config.Config, store *queue.Store, registry *effects.Registry, engine Engine, notifier notifications.Service, logger *slog.Logger) *Manager {
	if notifier == nil {
		notifier = notifications.NewService(&config.Config{})
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		store:    store,
		registry: registry,
		engine:   engine,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "jobs"),
		probe:    ffprobe.Inspect,
		waiters:  make(map[int64][]chan queue.Job),
		inFlight: make(map[int64]context.CancelFunc),
		kick:     make(chan struct{}, 1),
	}
}

// SetTerminalHook installs the delivery callback. Must be called before Start.
func (m *Manager) SetTerminalHook(hook TerminalHook) {
	m.mu.Lock()
	m.onTerminal = hook
	m.mu.Unlock()
}

// Start launches the worker pool. The pool size is the concurrency ceiling;
// no more renders than workers can ever run at once.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return errors.New("job manager already started")
	}
	m.started = true

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	workers := m.cfg.Jobs.MaxConcurrent
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go func(slot int) {
			defer m.wg.Done()
			m.worker(runCtx, slot)
		}(i)
	}
	m.logger.Info("job workers started", logging.Int("workers", workers))
	return nil
}

// Stop halts the worker pool and fails whatever was still in flight so no job
// is left stranded in a non-terminal state.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	cancel := m.cancel
	m.started = false
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()

	failed, err := m.store.FailInFlight(ctx, queue.DaemonStopReason)
	if err != nil {
		return err
	}
	if failed > 0 {
		m.logger.Warn("failed in-flight jobs at shutdown", logging.Int64("count", failed))
	}
	_ = m.notifier.NotifyDaemonStopped(ctx, int(failed))
	return nil
}

// Await blocks until the job reaches a terminal state or ctx expires.
func (m *Manager) Await(ctx context.Context, id int64) (queue.Job, error) {
	job, err := m.store.GetByID(ctx, id)
	if err != nil {
		return queue.Job{}, err
	}
	if job == nil {
		return queue.Job{}, errors.New("unknown job")
	}
	if job.IsTerminal() {
		return *job, nil
	}

	ch := make(chan queue.Job, 1)
	m.mu.Lock()
	m.waiters[id] = append(m.waiters[id], ch)
	m.mu.Unlock()

	// The job may have finished between the lookup and registration.
	if current, err := m.store.GetByID(ctx, id); err == nil && current != nil && current.IsTerminal() {
		m.notifyWaiters(*current)
	}

	select {
	case <-ctx.Done():
		return queue.Job{}, ctx.Err()
	case done := <-ch:
		return done, nil
	}
}

// Cancel stops a job. Jobs that have not started processing are cancelled in
// place; a job mid-render has its subprocess killed and the worker records
// the cancellation. Returns false when the job is already terminal or unknown.
func (m *Manager) Cancel(ctx context.Context, id int64) (bool, error) {
	cancelled, err := m.store.CancelWaiting(ctx, id)
	if err != nil {
		return false, err
	}
	if cancelled {
		job, err := m.store.GetByID(ctx, id)
		if err != nil {
			return true, err
		}
		if job != nil {
			m.finish(ctx, *job)
		}
		return true, nil
	}

	m.mu.Lock()
	cancelRender, inFlight := m.inFlight[id]
	m.mu.Unlock()
	if inFlight {
		cancelRender()
		return true, nil
	}
	return false, nil
}

// Health exposes queue aggregates for the status surfaces.
func (m *Manager) Health(ctx context.Context) (queue.HealthSummary, error) {
	return m.store.Health(ctx)
}

func (m *Manager) notifyWaiters(job queue.Job) {
	m.mu.Lock()
	waiters := m.waiters[job.ID]
	delete(m.waiters, job.ID)
	m.mu.Unlock()
	for _, ch := range waiters {
		ch <- job
	}
}

// finish runs post-terminal bookkeeping: delivery hook, waiter wakeup, and
// exactly-once staging cleanup.
func (m *Manager) finish(ctx context.Context, job queue.Job) {
	m.mu.Lock()
	hook := m.onTerminal
	m.mu.Unlock()
	if hook != nil {
		hook(ctx, job)
	}
	m.notifyWaiters(job)
	m.cleanup(ctx, job)
}

// cleanup claims the job's cleanup token before touching the filesystem, so
// concurrent callers remove the staging directory at most once.
func (m *Manager) cleanup(ctx context.Context, job queue.Job) {
	claimed, err := m.store.MarkCleaned(ctx, job.ID)
	if err != nil {
		m.logger.Warn("failed to record cleanup", logging.JobID(job.ID), logging.Error(err))
		return
	}
	if !claimed {
		return
	}
	if err := staging.Remove(m.cfg.Paths.StagingDir, job.ID); err != nil {
		m.logger.Warn("failed to remove staging directory", logging.JobID(job.ID), logging.Error(err))
	}
}

func (m *Manager) kickWorkers() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

func (m *Manager) engineTimeout() time.Duration {
	return time.Duration(m.cfg.Engine.Timeout) * time.Second
}
