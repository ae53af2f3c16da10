package queue

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, effect_id, requester_ref, correlation_id, original_name, source_path, result_path, input_bytes, status, error_kind, error_message, progress_percent, progress_message, created_at, updated_at, started_at, finished_at, cleaned_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id              int64
		effectID        string
		requesterRef    sql.NullString
		correlationID   sql.NullString
		originalName    sql.NullString
		sourcePath      sql.NullString
		resultPath      sql.NullString
		inputBytes      sql.NullInt64
		statusStr       string
		errorKind       sql.NullString
		errorMessage    sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
		startedRaw      sql.NullString
		finishedRaw     sql.NullString
		cleanedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&effectID,
		&requesterRef,
		&correlationID,
		&originalName,
		&sourcePath,
		&resultPath,
		&inputBytes,
		&statusStr,
		&errorKind,
		&errorMessage,
		&progressPercent,
		&progressMessage,
		&createdRaw,
		&updatedRaw,
		&startedRaw,
		&finishedRaw,
		&cleanedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:              id,
		EffectID:        effectID,
		RequesterRef:    requesterRef.String,
		CorrelationID:   correlationID.String,
		OriginalName:    originalName.String,
		SourcePath:      sourcePath.String,
		ResultPath:      resultPath.String,
		InputBytes:      inputBytes.Int64,
		Status:          Status(statusStr),
		ErrorKind:       ErrorKind(errorKind.String),
		ErrorMessage:    errorMessage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	job.StartedAt = parseNullableTime(startedRaw)
	job.FinishedAt = parseNullableTime(finishedRaw)
	job.CleanedAt = parseNullableTime(cleanedRaw)
	return job, nil
}

func parseNullableTime(value sql.NullString) *time.Time {
	if !value.Valid {
		return nil
	}
	t, err := parseTimeString(value.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
