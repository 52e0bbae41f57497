package mapper

import (
	"doc-ingestion-be/internal/entity"
	"doc-ingestion-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ChunkVectorMapper struct{}

func NewChunkVectorMapper() *ChunkVectorMapper {
	return &ChunkVectorMapper{}
}

func (m *ChunkVectorMapper) ToEntity(c *model.ChunkVector) *entity.ChunkVector {
	if c == nil {
		return nil
	}

	return &entity.ChunkVector{
		Id:         c.Id,
		SessionId:  c.SessionId,
		DocumentId: c.DocumentId,
		Position:   c.Position,
		Page:       c.Page,
		Section:    c.Section,
		Content:    c.Content,
		Embedding:  c.Embedding.Slice(),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *ChunkVectorMapper) ToModel(c *entity.ChunkVector) *model.ChunkVector {
	if c == nil {
		return nil
	}

	return &model.ChunkVector{
		Id:         c.Id,
		SessionId:  c.SessionId,
		DocumentId: c.DocumentId,
		Position:   c.Position,
		Page:       c.Page,
		Section:    c.Section,
		Content:    c.Content,
		Embedding:  pgvector.NewVector(c.Embedding),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *ChunkVectorMapper) ToEntities(vectors []*model.ChunkVector) []*entity.ChunkVector {
	entities := make([]*entity.ChunkVector, len(vectors))
	for i, c := range vectors {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *ChunkVectorMapper) ToModels(vectors []*entity.ChunkVector) []*model.ChunkVector {
	models := make([]*model.ChunkVector, len(vectors))
	for i, c := range vectors {
		models[i] = m.ToModel(c)
	}
	return models
}
