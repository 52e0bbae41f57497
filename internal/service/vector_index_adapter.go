package service

import (
	"context"
	"time"

	"doc-ingestion-be/internal/entity"
	"doc-ingestion-be/internal/repository/unitofwork"
	"doc-ingestion-be/pkg/pipeline"
)

// vectorIndexAdapter lets the pipeline's Indexer write through the
// ChunkVectorRepository without knowing about gorm or entities.
type vectorIndexAdapter struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewVectorIndex(uowFactory unitofwork.RepositoryFactory) pipeline.VectorIndex {
	return &vectorIndexAdapter{uowFactory: uowFactory}
}

func (a *vectorIndexAdapter) Upsert(ctx context.Context, chunks []pipeline.Chunk) error {
	vectors := make([]*entity.ChunkVector, len(chunks))
	for i, chunk := range chunks {
		vectors[i] = &entity.ChunkVector{
			Id:         chunk.Id,
			SessionId:  chunk.SessionId,
			DocumentId: chunk.DocumentId,
			Position:   chunk.Position,
			Page:       chunk.Page,
			Section:    chunk.Section,
			Content:    chunk.Text,
			CreatedAt:  time.Now(),
			Embedding:  chunk.Embedding,
		}
	}

	uow := a.uowFactory.NewUnitOfWork(ctx)
	return uow.ChunkVectorRepository().Upsert(ctx, vectors)
}
