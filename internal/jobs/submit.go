package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"warble/internal/fileutil"
	"warble/internal/logging"
	"warble/internal/queue"
	"warble/internal/staging"
)

// SubmitRequest describes an upload handed to the pipeline. SourcePath must
// point at a readable local file; the pipeline copies it and never mutates
// the original.
type SubmitRequest struct {
	EffectID     string
	SourcePath   string
	OriginalName string
	RequesterRef string
}

// Submit validates the request and stages it for processing. Validation
// failures are synchronous: the returned job is already terminal, carries its
// error classification, and owns no staging artifacts. The caller is
// responsible for telling the requester about a rejected job.
func (m *Manager) Submit(ctx context.Context, req SubmitRequest) (queue.Job, error) {
	info, err := os.Stat(req.SourcePath)
	if err != nil {
		return queue.Job{}, fmt.Errorf("stat upload: %w", err)
	}

	correlationID := uuid.NewString()
	job, err := m.store.NewJob(ctx, req.EffectID, req.RequesterRef, correlationID, req.OriginalName, info.Size())
	if err != nil {
		return queue.Job{}, err
	}

	logger := m.logger.With(logging.JobID(job.ID), logging.String(logging.FieldCorrelationID, correlationID))

	effect, ok := m.registry.Lookup(req.EffectID)
	if !ok {
		return m.reject(ctx, job, queue.ErrKindUnknownEffect, "unknown effect"), nil
	}

	if info.Size() > m.cfg.Jobs.MaxInputBytes {
		return m.reject(ctx, job, queue.ErrKindOversized,
			fmt.Sprintf("input is %d bytes, limit is %d", info.Size(), m.cfg.Jobs.MaxInputBytes)), nil
	}

	// Classify by what ffprobe finds, not by filename.
	probed, err := m.probe(ctx, m.cfg.Engine.FFprobeBinary, req.SourcePath)
	if err != nil || probed.AudioStreamCount() == 0 {
		return m.reject(ctx, job, queue.ErrKindUnsupportedFormat, "input has no decodable audio stream"), nil
	}

	job.Status = queue.StatusValidated
	if err := m.store.Update(ctx, job); err != nil {
		return queue.Job{}, err
	}

	if err := staging.EnsureFreeSpace(m.cfg.Paths.StagingDir, m.cfg.Jobs.MinFreeStagingBytes); err != nil {
		logger.Warn("staging preflight failed", logging.Error(err))
		return m.reject(ctx, job, queue.ErrKindStagingError, "not enough scratch space"), nil
	}

	dir, err := staging.Allocate(m.cfg.Paths.StagingDir, job.ID)
	if err != nil {
		return m.reject(ctx, job, queue.ErrKindStagingError, "could not allocate staging directory"), nil
	}

	stagedInput := filepath.Join(dir, "input"+inputExt(req.OriginalName, req.SourcePath))
	if err := fileutil.CopyFile(req.SourcePath, stagedInput); err != nil {
		_ = staging.Remove(m.cfg.Paths.StagingDir, job.ID)
		return m.reject(ctx, job, queue.ErrKindStagingError, "could not stage input"), nil
	}

	job.SourcePath = stagedInput
	job.Status = queue.StatusStaged
	job.SetProgress("Queued", 0)
	if err := m.store.Update(ctx, job); err != nil {
		return queue.Job{}, err
	}

	logger.Info("job staged",
		logging.String(logging.FieldEffect, effect.ID),
		logging.Int64("input_bytes", info.Size()),
	)
	m.kickWorkers()
	return *job, nil
}

// reject records a synchronous validation failure. The cleanup token is
// claimed even though no directory exists, so the row never reads as dirty.
func (m *Manager) reject(ctx context.Context, job *queue.Job, kind queue.ErrorKind, message string) queue.Job {
	now := time.Now().UTC()
	job.SetFailed(kind, message)
	job.FinishedAt = &now
	if err := m.store.Update(ctx, job); err != nil {
		m.logger.Error("failed to persist rejection", logging.JobID(job.ID), logging.Error(err))
	}
	m.logger.Info("job rejected",
		logging.JobID(job.ID),
		logging.String("error_kind", string(kind)),
		logging.String("reason", message),
	)
	_ = m.notifier.NotifyJobFailed(ctx, job.EffectID, string(kind))
	m.notifyWaiters(*job)
	m.cleanup(ctx, *job)
	return *job
}

func inputExt(originalName, sourcePath string) string {
	if ext := filepath.Ext(originalName); ext != "" {
		return ext
	}
	if ext := filepath.Ext(sourcePath); ext != "" {
		return ext
	}
	return ".bin"
}
