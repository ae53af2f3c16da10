package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusReceived   Status = "received"
	StatusValidated  Status = "validated"
	StatusStaged     Status = "staged"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusTimedOut   Status = "timed_out"
	StatusCancelled  Status = "cancelled"
)

// DaemonStopReason is the error message set when jobs are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusReceived,
	StatusValidated,
	StatusStaged,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusTimedOut,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var terminalStatuses = map[Status]struct{}{
	StatusCompleted: {},
	StatusFailed:    {},
	StatusTimedOut:  {},
	StatusCancelled: {},
}

// ErrorKind classifies why a job reached a non-completed terminal state.
type ErrorKind string

const (
	ErrKindUnknownEffect     ErrorKind = "unknown_effect"
	ErrKindOversized         ErrorKind = "oversized"
	ErrKindUnsupportedFormat ErrorKind = "unsupported_format"
	ErrKindEngineError       ErrorKind = "engine_error"
	ErrKindTimedOut          ErrorKind = "timed_out"
	ErrKindEmptyOutput       ErrorKind = "empty_output"
	ErrKindCancelled         ErrorKind = "cancelled"
	ErrKindStagingError      ErrorKind = "staging_error"
)

// Job represents one request to apply one effect to one audio artifact.
type Job struct {
	ID              int64
	EffectID        string
	RequesterRef    string
	CorrelationID   string
	OriginalName    string
	SourcePath      string
	ResultPath      string
	InputBytes      int64
	Status          Status
	ErrorKind       ErrorKind
	ErrorMessage    string
	ProgressPercent float64
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	StartedAt       *time.Time
	FinishedAt      *time.Time
	CleanedAt       *time.Time
}

// HealthSummary describes aggregated job counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Waiting    int
	Processing int
	Completed  int
	Failed     int
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the status ends the job lifecycle.
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// IsTerminal reports whether the job reached a terminal state.
func (j Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// NeedsCleanup reports whether staging artifacts for the job still exist.
func (j Job) NeedsCleanup() bool {
	return j.IsTerminal() && j.CleanedAt == nil
}

// SetProgress updates both progress fields together.
func (j *Job) SetProgress(message string, percent float64) {
	j.ProgressMessage = message
	j.ProgressPercent = percent
}

// SetFailed marks the job as failed with the given classification and message.
func (j *Job) SetFailed(kind ErrorKind, message string) {
	j.Status = StatusFailed
	if kind == ErrKindTimedOut {
		j.Status = StatusTimedOut
	}
	j.ErrorKind = kind
	j.ErrorMessage = message
	j.ProgressMessage = message
}

// Latency returns the wall-clock time the job spent from creation to finish,
// or zero when the job has not finished.
func (j Job) Latency() time.Duration {
	if j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(j.CreatedAt)
}
