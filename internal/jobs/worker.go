package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"warble/internal/logging"
	"warble/internal/queue"
	"warble/internal/services"
	"warble/internal/services/ffmpeg"
)

func (m *Manager) worker(ctx context.Context, slot int) {
	poll := time.Duration(m.cfg.Jobs.QueuePollInterval) * time.Second
	if poll <= 0 {
		poll = 2 * time.Second
	}
	retry := time.Duration(m.cfg.Jobs.ErrorRetryInterval) * time.Second
	if retry <= 0 {
		retry = 5 * time.Second
	}
	logger := m.logger.With(logging.Int("worker", slot))

	for {
		if ctx.Err() != nil {
			return
		}

		job, err := m.store.ClaimNextStaged(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("failed to claim staged job", logging.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(retry):
			}
			continue
		}
		if job == nil {
			select {
			case <-ctx.Done():
				return
			case <-m.kick:
			case <-time.After(poll):
			}
			continue
		}

		m.process(ctx, job)
	}
}

// process renders one claimed job through to a terminal state.
func (m *Manager) process(parent context.Context, job *queue.Job) {
	renderCtx, cancelRender := context.WithCancel(parent)
	m.mu.Lock()
	m.inFlight[job.ID] = cancelRender
	m.mu.Unlock()
	defer func() {
		cancelRender()
		m.mu.Lock()
		delete(m.inFlight, job.ID)
		m.mu.Unlock()
	}()

	ctx := services.WithJobID(parent, job.ID)
	ctx = services.WithStage(ctx, "render")
	ctx = services.WithRequestID(ctx, job.CorrelationID)
	logger := logging.WithContext(ctx, m.logger)

	effect, ok := m.registry.Lookup(job.EffectID)
	if !ok {
		// Catalog changed between submission and claim.
		m.failJob(ctx, job, queue.ErrKindUnknownEffect, "effect no longer available")
		return
	}

	outputPath := filepath.Join(job.StagingRoot(m.cfg.Paths.StagingDir), "output."+m.cfg.Engine.OutputFormat)

	job.SetProgress("Applying "+effect.DisplayName, 50)
	if err := m.store.Update(ctx, job); err != nil {
		logger.Warn("failed to persist progress", logging.Error(err))
	}

	result, err := m.engine.Run(renderCtx, ffmpeg.Request{
		InputPath:  job.SourcePath,
		OutputPath: outputPath,
		FilterArgs: effect.FilterArgs,
		Format:     m.cfg.Engine.OutputFormat,
		Bitrate:    m.cfg.Engine.Bitrate,
		Timeout:    m.engineTimeout(),
	})

	now := time.Now().UTC()
	job.FinishedAt = &now

	switch {
	case err == nil:
		job.Status = queue.StatusCompleted
		job.ResultPath = result.OutputPath
		job.ErrorKind = ""
		job.ErrorMessage = ""
		job.SetProgress("Complete", 100)
		logger.Info("job completed",
			logging.String(logging.FieldEffect, effect.ID),
			logging.Int64("output_bytes", result.OutputBytes),
			logging.Duration("render_time", result.Elapsed),
		)
	case errors.Is(err, context.Canceled):
		if parent.Err() != nil {
			// Daemon shutdown. Leave the row in processing; Stop fails it.
			return
		}
		job.Status = queue.StatusCancelled
		job.ErrorKind = queue.ErrKindCancelled
		job.ErrorMessage = "cancelled by requester"
		job.SetProgress("Cancelled", job.ProgressPercent)
		logger.Info("job cancelled mid-render")
	default:
		job.SetFailed(services.FailureKind(err), err.Error())
		logger.Warn("job failed",
			logging.String("error_kind", string(job.ErrorKind)),
			logging.Error(err),
		)
	}

	if err := m.store.Update(ctx, job); err != nil {
		logger.Error("failed to persist terminal state", logging.Error(err))
	}

	switch job.Status {
	case queue.StatusCompleted:
		_ = m.notifier.NotifyJobCompleted(ctx, effect.DisplayName, job.Latency())
	case queue.StatusCancelled:
	default:
		_ = m.notifier.NotifyJobFailed(ctx, effect.DisplayName, string(job.ErrorKind))
	}

	m.finish(ctx, *job)
}

func (m *Manager) failJob(ctx context.Context, job *queue.Job, kind queue.ErrorKind, message string) {
	now := time.Now().UTC()
	job.SetFailed(kind, message)
	job.FinishedAt = &now
	if err := m.store.Update(ctx, job); err != nil {
		m.logger.Error("failed to persist failure", logging.JobID(job.ID), logging.Error(err))
	}
	_ = m.notifier.NotifyJobFailed(ctx, job.EffectID, string(kind))
	m.finish(ctx, *job)
}

// CleanupLeftovers removes staging directories for terminal jobs that were
// never cleaned, typically after an unclean shutdown. Returns the number of
// jobs cleaned.
func (m *Manager) CleanupLeftovers(ctx context.Context) (int, error) {
	terminal, err := m.store.List(ctx,
		queue.StatusCompleted, queue.StatusFailed, queue.StatusTimedOut, queue.StatusCancelled)
	if err != nil {
		return 0, err
	}
	cleaned := 0
	for _, job := range terminal {
		if job.NeedsCleanup() {
			m.cleanup(ctx, *job)
			cleaned++
		}
	}
	return cleaned, nil
}
