package service

import (
	"context"
	"fmt"

	"doc-ingestion-be/internal/dto"
	"doc-ingestion-be/internal/pkg/logger"
	"doc-ingestion-be/internal/repository/contract"
	"doc-ingestion-be/internal/repository/specification"
	"doc-ingestion-be/internal/repository/unitofwork"
	"doc-ingestion-be/pkg/embedding"

	"github.com/google/uuid"
)

const defaultTopK = 5

type IRetrievalService interface {
	Search(ctx context.Context, req *dto.SearchRequest) ([]*dto.SearchResultItem, error)
	DeleteDocument(ctx context.Context, documentId uuid.UUID) error
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
}

// retrievalService queries the session-scoped vector index and owns document
// removal, which must drop the vectors and the relational row together.
type retrievalService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   embedding.EmbeddingProvider
	logger     logger.ILogger
}

func NewRetrievalService(
	uowFactory unitofwork.RepositoryFactory,
	provider embedding.EmbeddingProvider,
	sysLogger logger.ILogger,
) IRetrievalService {
	return &retrievalService{
		uowFactory: uowFactory,
		provider:   provider,
		logger:     sysLogger,
	}
}

func (s *retrievalService) Search(ctx context.Context, req *dto.SearchRequest) ([]*dto.SearchResultItem, error) {
	if req.SessionId == uuid.Nil {
		return nil, fmt.Errorf("session_id is required")
	}
	if req.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	topK := req.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	queryVector, err := s.provider.Generate(ctx, req.Query, embedding.TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.ChunkVectorRepository().SearchSimilar(ctx, queryVector, topK, contract.VectorFilter{
		SessionId:  req.SessionId,
		DocumentId: req.DocumentId,
	})
	if err != nil {
		return nil, err
	}

	items := make([]*dto.SearchResultItem, len(scored))
	for i, sc := range scored {
		items[i] = &dto.SearchResultItem{
			ChunkId:    sc.Chunk.Id,
			DocumentId: sc.Chunk.DocumentId,
			Position:   sc.Chunk.Position,
			Content:    sc.Chunk.Content,
			Similarity: sc.Similarity,
		}
	}
	return items, nil
}

// DeleteDocument removes the vectors first; a crash in between leaves an
// orphaned document row, which a retried delete cleans up. The other order
// would leave unreachable vectors behind.
func (s *retrievalService) DeleteDocument(ctx context.Context, documentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChunkVectorRepository().DeleteByDocumentId(ctx, documentId); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, documentId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("retrieval", "Document deleted", map[string]interface{}{
		"document_id": documentId.String(),
	})
	return nil
}

func (s *retrievalService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChunkVectorRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.DocumentRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("retrieval", "Session data deleted", map[string]interface{}{
		"session_id": sessionId.String(),
	})
	return nil
}
