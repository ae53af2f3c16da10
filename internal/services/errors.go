package services

import (
	"errors"
	"fmt"
	"strings"

	"warble/internal/queue"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
	ErrEmptyOutput   = errors.New("empty output")
	ErrStaging       = errors.New("staging error")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a pipeline error to the terminal status the job manager
// should persist after a job fails.
func FailureStatus(err error) queue.Status {
	switch {
	case errors.Is(err, ErrTimeout):
		return queue.StatusTimedOut
	default:
		return queue.StatusFailed
	}
}

// FailureKind maps a pipeline error to the persisted error classification.
// Every terminal non-completed job carries exactly one of these kinds.
func FailureKind(err error) queue.ErrorKind {
	switch {
	case errors.Is(err, ErrTimeout):
		return queue.ErrKindTimedOut
	case errors.Is(err, ErrEmptyOutput):
		return queue.ErrKindEmptyOutput
	case errors.Is(err, ErrExternalTool):
		return queue.ErrKindEngineError
	case errors.Is(err, ErrStaging):
		return queue.ErrKindStagingError
	default:
		return queue.ErrKindEngineError
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
