package service

import (
	"context"
	"path/filepath"
	"testing"

	"doc-ingestion-be/internal/dto"
	"doc-ingestion-be/internal/entity"
	"doc-ingestion-be/internal/pkg/logger"
	"doc-ingestion-be/internal/repository/contract"
	"doc-ingestion-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyVectorRepo records SearchSimilar calls and serves canned results.
type spyVectorRepo struct {
	memoryVectorRepo

	lastTopK   int
	lastFilter contract.VectorFilter
	results    []*contract.ScoredChunk
}

func (r *spyVectorRepo) SearchSimilar(ctx context.Context, embedding []float32, topK int, filter contract.VectorFilter) ([]*contract.ScoredChunk, error) {
	r.lastTopK = topK
	r.lastFilter = filter
	return r.results, nil
}

type queryTrackingProvider struct {
	stubEmbeddingProvider
	lastTaskType string
}

func (p *queryTrackingProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	p.lastTaskType = taskType
	return p.stubEmbeddingProvider.Generate(ctx, text, taskType)
}

func TestSearchScopesToSessionAndUsesQueryTask(t *testing.T) {
	store := newMemoryStore()
	sessionId := uuid.New()
	documentId := uuid.New()
	chunkId := uuid.New()

	spy := &spyVectorRepo{
		memoryVectorRepo: memoryVectorRepo{store: store},
		results: []*contract.ScoredChunk{
			{
				Chunk: &entity.ChunkVector{
					Id:         chunkId,
					SessionId:  sessionId,
					DocumentId: documentId,
					Position:   2,
					Content:    "matched chunk text",
				},
				Similarity: 0.87,
			},
		},
	}

	provider := &queryTrackingProvider{}
	svc := NewRetrievalService(
		&memoryFactory{store: store, vectorOverride: spy},
		provider,
		logger.NewZapLogger(filepath.Join(t.TempDir(), "test.log"), false),
	)

	docFilter := documentId
	items, err := svc.Search(context.Background(), &dto.SearchRequest{
		SessionId:  sessionId,
		Query:      "what does the report say",
		TopK:       7,
		DocumentId: &docFilter,
	})
	require.NoError(t, err)

	assert.Equal(t, embedding.TaskQuery, provider.lastTaskType, "queries embed with the query task type")
	assert.Equal(t, 7, spy.lastTopK)
	assert.Equal(t, sessionId, spy.lastFilter.SessionId)
	require.NotNil(t, spy.lastFilter.DocumentId)
	assert.Equal(t, documentId, *spy.lastFilter.DocumentId)

	require.Len(t, items, 1)
	assert.Equal(t, chunkId, items[0].ChunkId)
	assert.Equal(t, 2, items[0].Position)
	assert.InDelta(t, 0.87, items[0].Similarity, 1e-9)
}

func TestSearchValidationAndDefaults(t *testing.T) {
	store := newMemoryStore()
	spy := &spyVectorRepo{memoryVectorRepo: memoryVectorRepo{store: store}}
	svc := NewRetrievalService(
		&memoryFactory{store: store, vectorOverride: spy},
		&queryTrackingProvider{},
		logger.NewZapLogger(filepath.Join(t.TempDir(), "test.log"), false),
	)

	_, err := svc.Search(context.Background(), &dto.SearchRequest{Query: "q"})
	assert.Error(t, err, "missing session id must be rejected")

	_, err = svc.Search(context.Background(), &dto.SearchRequest{SessionId: uuid.New()})
	assert.Error(t, err, "empty query must be rejected")

	_, err = svc.Search(context.Background(), &dto.SearchRequest{SessionId: uuid.New(), Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, defaultTopK, spy.lastTopK, "top_k defaults when unset")
}

func TestDeleteDocumentRemovesVectorsAndRow(t *testing.T) {
	store := newMemoryStore()
	sessionId := uuid.New()
	docA := uuid.New()
	docB := uuid.New()

	store.documents[docA] = &entity.Document{Id: docA, SessionId: sessionId, Status: entity.DocumentStatusCompleted}
	store.documents[docB] = &entity.Document{Id: docB, SessionId: sessionId, Status: entity.DocumentStatusCompleted}
	store.vectors[uuid.New()] = &entity.ChunkVector{Id: uuid.New(), SessionId: sessionId, DocumentId: docA}
	store.vectors[uuid.New()] = &entity.ChunkVector{Id: uuid.New(), SessionId: sessionId, DocumentId: docB}

	svc := NewRetrievalService(
		&memoryFactory{store: store},
		&queryTrackingProvider{},
		logger.NewZapLogger(filepath.Join(t.TempDir(), "test.log"), false),
	)

	require.NoError(t, svc.DeleteDocument(context.Background(), docA))

	store.mu.Lock()
	assert.Nil(t, store.documents[docA])
	assert.NotNil(t, store.documents[docB], "other documents must survive")
	for _, v := range store.vectors {
		assert.NotEqual(t, docA, v.DocumentId, "docA vectors must be gone")
	}
	assert.Len(t, store.vectors, 1)
	store.mu.Unlock()

	assert.ErrorIs(t, svc.DeleteDocument(context.Background(), docA), ErrNotFound)
}

func TestDeleteSessionLeavesOtherSessionsAlone(t *testing.T) {
	store := newMemoryStore()
	sessionA := uuid.New()
	sessionB := uuid.New()
	docA := uuid.New()
	docB := uuid.New()

	store.documents[docA] = &entity.Document{Id: docA, SessionId: sessionA}
	store.documents[docB] = &entity.Document{Id: docB, SessionId: sessionB}
	vecB := uuid.New()
	store.vectors[uuid.New()] = &entity.ChunkVector{Id: uuid.New(), SessionId: sessionA, DocumentId: docA}
	store.vectors[vecB] = &entity.ChunkVector{Id: vecB, SessionId: sessionB, DocumentId: docB}

	svc := NewRetrievalService(
		&memoryFactory{store: store},
		&queryTrackingProvider{},
		logger.NewZapLogger(filepath.Join(t.TempDir(), "test.log"), false),
	)

	require.NoError(t, svc.DeleteSession(context.Background(), sessionA))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.documents, 1)
	assert.NotNil(t, store.documents[docB])
	assert.Len(t, store.vectors, 1)
	assert.NotNil(t, store.vectors[vecB])
}
