// Package api defines the JSON payloads served by the daemon's HTTP surface
// and consumed by the CLI.
package api

import (
	"time"

	"warble/internal/queue"
)

// DaemonStatus is the top-level health report.
type DaemonStatus struct {
	Running     bool        `json:"running"`
	Version     string      `json:"version"`
	PID         int         `json:"pid"`
	Workers     int         `json:"workers"`
	BotEnabled  bool        `json:"bot_enabled"`
	QueueDBPath string      `json:"queue_db_path"`
	IdleSeconds float64     `json:"idle_seconds"`
	Queue       QueueHealth `json:"queue"`
}

// QueueHealth aggregates job counts by lifecycle phase.
type QueueHealth struct {
	Total      int `json:"total"`
	Waiting    int `json:"waiting"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// JobSummary is the wire form of one queue row.
type JobSummary struct {
	ID              int64      `json:"id"`
	Effect          string     `json:"effect"`
	Status          string     `json:"status"`
	ErrorKind       string     `json:"error_kind,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	ProgressPercent float64    `json:"progress_percent"`
	ProgressMessage string     `json:"progress_message,omitempty"`
	InputBytes      int64      `json:"input_bytes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

// QueueListResponse wraps a job listing.
type QueueListResponse struct {
	Jobs  []JobSummary `json:"jobs"`
	Total int          `json:"total"`
}

// EffectSummary is the wire form of one catalog entry.
type EffectSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CostClass   string `json:"cost_class"`
}

// EffectListResponse wraps the effect catalog.
type EffectListResponse struct {
	Effects []EffectSummary `json:"effects"`
}

// FromHealthSummary converts store aggregates to the wire form.
func FromHealthSummary(summary queue.HealthSummary) QueueHealth {
	return QueueHealth{
		Total:      summary.Total,
		Waiting:    summary.Waiting,
		Processing: summary.Processing,
		Completed:  summary.Completed,
		Failed:     summary.Failed,
	}
}

// FromJob converts a queue row to the wire form.
func FromJob(job queue.Job) JobSummary {
	return JobSummary{
		ID:              job.ID,
		Effect:          job.EffectID,
		Status:          string(job.Status),
		ErrorKind:       string(job.ErrorKind),
		ErrorMessage:    job.ErrorMessage,
		ProgressPercent: job.ProgressPercent,
		ProgressMessage: job.ProgressMessage,
		InputBytes:      job.InputBytes,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
		StartedAt:       job.StartedAt,
		FinishedAt:      job.FinishedAt,
	}
}
