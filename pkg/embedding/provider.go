package embedding

import "context"

// Task types understood by the providers. Document chunks are embedded with
// TaskDocument; retrieval queries with TaskQuery.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// EmbeddingProvider defines the interface for generating text embeddings.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
	// GenerateBatch embeds texts in provider-sized batches and returns one
	// vector per input, in order.
	GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error)
}
