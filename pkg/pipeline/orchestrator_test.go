package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParser struct {
	segments []Segment
	err      error
}

func (f *fakeParser) Parse(ctx context.Context, locator string) ([]Segment, error) {
	return f.segments, f.err
}

type fakeProvider struct {
	err   error
	calls int
}

func (f *fakeProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeProvider) GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

type fakeIndex struct {
	mu       sync.Mutex
	err      error
	upserted map[string]Chunk
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{upserted: make(map[string]Chunk)}
}

func (f *fakeIndex) Upsert(ctx context.Context, chunks []Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, c := range chunks {
		f.upserted[c.Id.String()] = c
	}
	return nil
}

func newTestOrchestrator(parser Parser, provider *fakeProvider, index *fakeIndex) *Orchestrator {
	return NewOrchestrator(
		parser,
		NewChunker(200, 40),
		NewEmbedder(provider),
		NewIndexer(index, "pgvector:chunk_vectors"),
		0,
	)
}

func TestOrchestratorHappyPath(t *testing.T) {
	parser := &fakeParser{segments: []Segment{{Text: "some parsed document content goes here", Page: 1}}}
	index := newFakeIndex()
	o := newTestOrchestrator(parser, &fakeProvider{}, index)

	var reported []int
	result, err := o.Process(context.Background(), testDocument(), func(p int) {
		reported = append(reported, p)
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.ChunkCount)
	assert.Equal(t, "pgvector:chunk_vectors", result.IndexReference)
	assert.Len(t, index.upserted, 1)

	// Progress must be reported after every stage, strictly increasing.
	assert.Equal(t, []int{30, 50, 80, 95}, reported)
}

func TestOrchestratorEmptyDocumentCompletes(t *testing.T) {
	parser := &fakeParser{segments: nil}
	index := newFakeIndex()
	provider := &fakeProvider{}
	o := newTestOrchestrator(parser, provider, index)

	result, err := o.Process(context.Background(), testDocument(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.ChunkCount)
	assert.Empty(t, index.upserted)
}

func TestOrchestratorParseFailureShortCircuits(t *testing.T) {
	parser := &fakeParser{err: &ContentError{Stage: "parse", Message: "corrupt"}}
	index := newFakeIndex()
	provider := &fakeProvider{}
	o := newTestOrchestrator(parser, provider, index)

	_, err := o.Process(context.Background(), testDocument(), nil)
	require.Error(t, err)
	assert.Equal(t, "ContentError", ErrorType(err))
	assert.Equal(t, 0, provider.calls, "embed must not run after parse failure")
	assert.Empty(t, index.upserted, "index must not run after parse failure")
}

func TestOrchestratorEmbedFailurePropagates(t *testing.T) {
	parser := &fakeParser{segments: []Segment{{Text: "content to embed", Page: 1}}}
	index := newFakeIndex()
	provider := &fakeProvider{err: errors.New("rate limited")}
	o := newTestOrchestrator(parser, provider, index)

	var reported []int
	_, err := o.Process(context.Background(), testDocument(), func(p int) {
		reported = append(reported, p)
	})
	require.Error(t, err)
	assert.Equal(t, "TransientProviderError", ErrorType(err))
	assert.True(t, Retryable(err))
	assert.Empty(t, index.upserted)
	assert.Equal(t, []int{30, 50}, reported, "no progress past the failed stage")
}

func TestOrchestratorIndexFailurePropagates(t *testing.T) {
	parser := &fakeParser{segments: []Segment{{Text: "content to index", Page: 1}}}
	index := newFakeIndex()
	index.err = errors.New("connection refused")
	o := newTestOrchestrator(parser, &fakeProvider{}, index)

	_, err := o.Process(context.Background(), testDocument(), nil)
	require.Error(t, err)
	assert.Equal(t, "TransientProviderError", ErrorType(err))
	assert.True(t, Retryable(err))
}

func TestOrchestratorReplayConvergesToSameIndexState(t *testing.T) {
	parser := &fakeParser{segments: []Segment{
		{Text: "first paragraph of the document with enough words to matter", Page: 1},
		{Text: "second paragraph of the document also with several words", Page: 2},
	}}
	index := newFakeIndex()
	o := newTestOrchestrator(parser, &fakeProvider{}, index)

	first, err := o.Process(context.Background(), testDocument(), nil)
	require.NoError(t, err)
	countAfterFirst := len(index.upserted)

	// A redelivered message reprocesses the same document. Deterministic ids
	// make the second pass overwrite, not duplicate.
	second, err := o.Process(context.Background(), testDocument(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.ChunkCount, second.ChunkCount)
	assert.Equal(t, countAfterFirst, len(index.upserted), "replay must not grow the index")
}
