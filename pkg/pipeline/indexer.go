package pipeline

import "context"

// VectorIndex is the write half of the vector store as the pipeline sees it.
// Upsert must be idempotent by chunk id: replays overwrite, never duplicate.
type VectorIndex interface {
	Upsert(ctx context.Context, chunks []Chunk) error
}

// Indexer writes embedded chunks to the vector index.
type Indexer struct {
	index VectorIndex
	// Reference names the index destination in job results, e.g.
	// "pgvector:chunk_vectors".
	Reference string
}

func NewIndexer(index VectorIndex, reference string) *Indexer {
	return &Indexer{index: index, Reference: reference}
}

func (ix *Indexer) Index(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	if err := ix.index.Upsert(ctx, chunks); err != nil {
		return &TransientProviderError{Stage: "index", Provider: "vector store", Err: err}
	}
	return nil
}
