package queue

import (
	"context"
	"fmt"
	"time"
)

// ResetStuckProcessing returns jobs left in processing (for example after a
// crash) to the staged state so workers re-admit them in FIFO order.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, started_at = NULL, progress_percent = 0,
             progress_message = 'Reset from stuck processing', updated_at = ?
         WHERE status = ?`,
		StatusStaged,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck jobs: %w", err)
	}
	return res.RowsAffected()
}

// FailInFlight marks all non-terminal jobs failed with the given message.
// Used during daemon shutdown so no job is left in an ambiguous state.
func (s *Store) FailInFlight(ctx context.Context, message string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, error_kind = ?, error_message = ?, finished_at = ?, updated_at = ?
         WHERE status IN (?, ?, ?, ?)`,
		StatusFailed, ErrKindEngineError, message, now, now,
		StatusReceived, StatusValidated, StatusStaged, StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("fail in-flight jobs: %w", err)
	}
	return res.RowsAffected()
}
