package contract

import (
	"context"

	"doc-ingestion-be/internal/entity"
	"doc-ingestion-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunk wraps a ChunkVector with its cosine similarity (1.0 = identical).
type ScoredChunk struct {
	Chunk      *entity.ChunkVector
	Similarity float64
}

// VectorFilter restricts similarity queries. SessionId is mandatory so
// results never leak across sessions; DocumentId narrows further when set.
type VectorFilter struct {
	SessionId  uuid.UUID
	DocumentId *uuid.UUID
}

type ChunkVectorRepository interface {
	// Upsert is keyed by the deterministic chunk id: replaying an ingestion
	// overwrites rows instead of duplicating them.
	Upsert(ctx context.Context, vectors []*entity.ChunkVector) error
	SearchSimilar(ctx context.Context, embedding []float32, topK int, filter VectorFilter) ([]*ScoredChunk, error)
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChunkVector, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
