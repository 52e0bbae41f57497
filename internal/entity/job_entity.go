package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

type JobType string

const (
	JobTypeDocumentIngestion JobType = "document-ingestion"
)

// Job tracks one asynchronous unit of work. CorrelationId is the queue
// message id and is unique, so a redelivered message always resolves to the
// same Job row.
type Job struct {
	Id            uuid.UUID
	CorrelationId string
	Type          JobType
	Status        JobStatus
	Progress      int // 0-100, non-decreasing while RUNNING
	Result        *JobResult
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// JobResult is a tagged union keyed by the job's terminal status: exactly one
// of Success or Failure is set once the job leaves RUNNING.
type JobResult struct {
	Success *JobSuccess `json:"success,omitempty"`
	Failure *JobFailure `json:"failure,omitempty"`
}

type JobSuccess struct {
	ChunkCount       int    `json:"chunk_count"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
	IndexReference   string `json:"index_reference"`
}

type JobFailure struct {
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
}
