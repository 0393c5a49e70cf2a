package models

import (
	"time"
)

// JobState represents the lifecycle state of a bulk import job.
// Transitions: queued -> active -> completed | failed. Terminal states
// are never left.
type JobState string

const (
	JobStateQueued    JobState = "queued"
	JobStateActive    JobState = "active"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s JobState) Terminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

// Job represents one bulk product import execution unit.
type Job struct {
	ID             string     `json:"job_id" db:"id"`
	State          JobState   `json:"state" db:"state"`
	Progress       float64    `json:"progress" db:"progress"`
	TotalRows      int        `json:"total_rows" db:"total_rows"`
	ProcessedCount int        `json:"processed_count" db:"processed_count"`
	ErrorCount     int        `json:"error_count" db:"error_count"`
	FailureReason  string     `json:"failure_reason,omitempty" db:"failure_reason"`
	FilePath       string     `json:"-" db:"file_path"`
	FileType       string     `json:"-" db:"file_type"`
	RequestedBy    int        `json:"-" db:"requested_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// ImportError is one per-row failure, attributed to the 1-based row
// number in the original file (header included, so the first data row
// is row 2). Never mutated after creation.
type ImportError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult is the summary stored when a job completes. Errors is
// truncated to the first MaxResultErrors entries; ErrorCount counts all.
type ImportResult struct {
	TotalRows      int           `json:"total_rows"`
	ProcessedCount int           `json:"processed_count"`
	ErrorCount     int           `json:"error_count"`
	Errors         []ImportError `json:"errors"`
}

// MaxResultErrors bounds the error list returned in a job status
// response. All errors still count toward ErrorCount.
const MaxResultErrors = 50

// JobStatusResponse is the snapshot returned by the status endpoint.
// Result is present only for completed jobs, FailureReason only for
// failed ones.
type JobStatusResponse struct {
	JobID         string        `json:"job_id"`
	State         JobState      `json:"state"`
	Progress      float64       `json:"progress"`
	Result        *ImportResult `json:"result,omitempty"`
	FailureReason string        `json:"failure_reason,omitempty"`
}
