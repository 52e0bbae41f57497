package implementation

import (
	"context"

	"doc-ingestion-be/internal/entity"
	"doc-ingestion-be/internal/mapper"
	"doc-ingestion-be/internal/model"
	"doc-ingestion-be/internal/repository/contract"
	"doc-ingestion-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChunkVectorRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkVectorMapper
}

func NewChunkVectorRepository(db *gorm.DB) contract.ChunkVectorRepository {
	return &ChunkVectorRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkVectorMapper(),
	}
}

func (r *ChunkVectorRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChunkVectorRepositoryImpl) Upsert(ctx context.Context, vectors []*entity.ChunkVector) error {
	if len(vectors) == 0 {
		return nil
	}
	models := r.mapper.ToModels(vectors)

	// Deterministic ids make this a convergent write: re-indexing the same
	// input overwrites rows in place instead of growing the table.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(models).Error
}

func (r *ChunkVectorRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, topK int, filter contract.VectorFilter) ([]*contract.ScoredChunk, error) {
	if topK <= 0 {
		topK = 5
	}

	type result struct {
		model.ChunkVector
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	// Cosine distance in pgvector is 1 - cosine_similarity.
	query := r.db.WithContext(ctx).
		Table("chunk_vectors").
		Select("chunk_vectors.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("session_id = ?", filter.SessionId)

	if filter.DocumentId != nil {
		query = query.Where("document_id = ?", *filter.DocumentId)
	}

	err := query.
		Order("similarity DESC").
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredChunk{
			Chunk:      r.mapper.ToEntity(&res.ChunkVector),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *ChunkVectorRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.ChunkVector{}).Error
}

func (r *ChunkVectorRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.ChunkVector{}).Error
}

func (r *ChunkVectorRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChunkVector, error) {
	var models []*model.ChunkVector
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChunkVectorRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ChunkVector{}).Count(&count).Error
	return count, err
}
