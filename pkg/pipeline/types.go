package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Document identifies the input of one pipeline run.
type Document struct {
	Id             uuid.UUID
	SessionId      uuid.UUID
	StorageLocator string
}

// Segment is one parsed unit of source text with its structural position.
type Segment struct {
	Text    string
	Page    int
	Section string
	Offset  int
}

// Chunk is a slice of segment text ready for embedding and indexing. Id is
// derived from (locator, position, content), so re-chunking unchanged input
// yields identical ids — the idempotency anchor for the whole pipeline.
type Chunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	SessionId  uuid.UUID
	Position   int
	Page       int
	Section    string
	Text       string
	Embedding  []float32
}

// Result is the success payload of one pipeline run.
type Result struct {
	ChunkCount     int
	Duration       time.Duration
	IndexReference string
}
