package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChunkVector is the indexed form of one document chunk. Id is deterministic
// (derived from locator, position and content), which makes every index write
// an idempotent upsert.
type ChunkVector struct {
	Id         uuid.UUID
	SessionId  uuid.UUID
	DocumentId uuid.UUID
	Position   int
	Page       int
	Section    string
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
}
