package dto

import (
	"time"

	"doc-ingestion-be/internal/entity"

	"github.com/google/uuid"
)

// IngestDocumentMessage is the queue message schema. The relational Job and
// Document rows are the durable projection of its effects; the message itself
// only lives as long as the queue retains it.
type IngestDocumentMessage struct {
	JobId          uuid.UUID `json:"job_id"`
	SessionId      uuid.UUID `json:"session_id"`
	DocumentId     uuid.UUID `json:"document_id"`
	StorageLocator string    `json:"storage_locator"`
	EnqueuedAt     time.Time `json:"enqueued_at"`
}

type IngestDocumentRequest struct {
	SessionId      uuid.UUID `json:"session_id"`
	Name           string    `json:"name"`
	StorageLocator string    `json:"storage_locator"`
}

type IngestDocumentResponse struct {
	JobId      uuid.UUID `json:"job_id"`
	DocumentId uuid.UUID `json:"document_id"`
}

type JobStatusResponse struct {
	Id       uuid.UUID         `json:"id"`
	Status   entity.JobStatus  `json:"status"`
	Progress int               `json:"progress"`
	Result   *entity.JobResult `json:"result,omitempty"`
}

type DocumentStatusResponse struct {
	Id           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	Status       entity.DocumentStatus `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	ChunkCount   int                   `json:"chunk_count"`
}

type SearchRequest struct {
	SessionId  uuid.UUID  `json:"session_id"`
	Query      string     `json:"query"`
	TopK       int        `json:"top_k"`
	DocumentId *uuid.UUID `json:"document_id,omitempty"`
}

type SearchResultItem struct {
	ChunkId    uuid.UUID `json:"chunk_id"`
	DocumentId uuid.UUID `json:"document_id"`
	Position   int       `json:"position"`
	Content    string    `json:"content"`
	Similarity float64   `json:"similarity"`
}
