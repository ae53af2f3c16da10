// Package intake bridges a front-end transport to the job pipeline. It
// classifies arrivals as warm or cold, forwards uploads to the manager, and
// turns terminal jobs into user-facing deliveries with failure text that
// never leaks internal detail.
package intake

import (
	"context"
	"log/slog"

	"warble/internal/jobs"
	"warble/internal/logging"
	"warble/internal/queue"
	"warble/internal/readiness"
)

// Deliverer sends outcomes back to the requester over whatever transport the
// job arrived on.
type Deliverer interface {
	DeliverResult(ctx context.Context, job queue.Job, resultPath string) error
	DeliverFailure(ctx context.Context, job queue.Job, message string) error
}

// Adapter owns the submission-to-delivery handoff for one transport.
type Adapter struct {
	manager   *jobs.Manager
	deliverer Deliverer
	gate      *readiness.Gate
	logger    *slog.Logger
}

// New builds an adapter. Install HandleTerminal as the manager's terminal
// hook so async outcomes reach the deliverer.
func New(manager *jobs.Manager, deliverer Deliverer, gate *readiness.Gate, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Adapter{
		manager:   manager,
		deliverer: deliverer,
		gate:      gate,
		logger:    logging.NewComponentLogger(logger, "intake"),
	}
}

// Accept submits an upload. The returned cold flag tells the transport to
// warn the requester that the first job after an idle stretch may start
// slowly. A synchronously rejected job has its failure delivered here; the
// caller only needs to deliver nothing.
func (a *Adapter) Accept(ctx context.Context, req jobs.SubmitRequest) (queue.Job, bool, error) {
	cold := a.gate.Observe()
	job, err := a.manager.Submit(ctx, req)
	if err != nil {
		return queue.Job{}, cold, err
	}
	if job.IsTerminal() {
		a.deliverFailure(ctx, job)
	}
	return job, cold, nil
}

// Cancel forwards a cancellation request to the manager.
func (a *Adapter) Cancel(ctx context.Context, id int64) (bool, error) {
	return a.manager.Cancel(ctx, id)
}

// HandleTerminal delivers the outcome of an asynchronously finished job.
// Cancellations are silent; the requester asked for them.
func (a *Adapter) HandleTerminal(ctx context.Context, job queue.Job) {
	switch job.Status {
	case queue.StatusCompleted:
		if err := a.deliverer.DeliverResult(ctx, job, job.ResultPath); err != nil {
			a.logger.Warn("result delivery failed", logging.JobID(job.ID), logging.Error(err))
		}
	case queue.StatusCancelled:
	default:
		a.deliverFailure(ctx, job)
	}
}

func (a *Adapter) deliverFailure(ctx context.Context, job queue.Job) {
	message := FailureMessage(job.ErrorKind)
	if message == "" {
		return
	}
	if err := a.deliverer.DeliverFailure(ctx, job, message); err != nil {
		a.logger.Warn("failure delivery failed", logging.JobID(job.ID), logging.Error(err))
	}
}

// FailureMessage maps an error classification to the short text shown to the
// requester. Internal diagnostics stay in the job record and the logs.
func FailureMessage(kind queue.ErrorKind) string {
	switch kind {
	case queue.ErrKindUnknownEffect:
		return "That effect isn't available. Send the audio again and pick one from the list."
	case queue.ErrKindOversized:
		return "That file is too large to process."
	case queue.ErrKindUnsupportedFormat:
		return "I couldn't find any audio in that file."
	case queue.ErrKindTimedOut:
		return "Processing took too long and was stopped. Try a shorter clip."
	case queue.ErrKindCancelled:
		return ""
	default:
		return "Something went wrong while processing your audio. Please try again."
	}
}
