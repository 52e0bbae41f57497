package pipeline

import (
	"context"
	"fmt"

	"doc-ingestion-be/pkg/embedding"
)

// Embedder populates chunk embeddings through the configured provider.
type Embedder struct {
	provider embedding.EmbeddingProvider
}

func NewEmbedder(provider embedding.EmbeddingProvider) *Embedder {
	return &Embedder{provider: provider}
}

// Embed fills in chunk vectors in place. Any provider failure is transient by
// definition here: the content already passed parsing and chunking, so what
// is left to go wrong is the provider call itself.
func (e *Embedder) Embed(ctx context.Context, chunks []Chunk) ([]Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := e.provider.GenerateBatch(ctx, texts, embedding.TaskDocument)
	if err != nil {
		return nil, &TransientProviderError{Stage: "embed", Provider: "embedding", Err: err}
	}
	if len(vectors) != len(chunks) {
		return nil, &TransientProviderError{
			Stage:    "embed",
			Provider: "embedding",
			Err:      fmt.Errorf("provider returned %d vectors for %d inputs", len(vectors), len(chunks)),
		}
	}

	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
	return chunks, nil
}
