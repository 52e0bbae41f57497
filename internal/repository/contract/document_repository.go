package contract

import (
	"context"

	"doc-ingestion-be/internal/entity"
	"doc-ingestion-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Update(ctx context.Context, doc *entity.Document) error
	// UpdateStatus writes the lifecycle fields in one statement. ChunkCount is
	// only meaningful for COMPLETED, errorMessage only for FAILED.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DocumentStatus, errorMessage string, chunkCount int) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
