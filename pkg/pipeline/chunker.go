package pipeline

import (
	"fmt"

	"doc-ingestion-be/pkg/utils"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"
)

// chunkNamespace seeds the deterministic chunk ids. Fixed forever: changing it
// would orphan every previously indexed vector.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("doc-ingestion-be/chunk"))

// Chunker slices parsed segments into embedding-sized chunks with
// deterministic ids.
type Chunker struct {
	ChunkSize int // target size in characters
	Overlap   int
	// MaxTokens further splits any chunk the tokenizer scores over the
	// embedding model's context budget.
	MaxTokens int

	encoder *tiktoken.Tiktoken
}

func NewChunker(chunkSize, overlap int) *Chunker {
	// cl100k_base is close enough for sizing across the supported embedding
	// models; the tokenizer is an upper-bound guard, not an exact count.
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		encoder = nil // character sizing only
	}

	return &Chunker{
		ChunkSize: chunkSize,
		Overlap:   overlap,
		MaxTokens: 512,
		encoder:   encoder,
	}
}

// Chunk produces chunks for one document. Zero segments yields zero chunks,
// which is a successful (empty-document) outcome, not an error.
func (c *Chunker) Chunk(doc Document, segments []Segment) ([]Chunk, error) {
	if c.ChunkSize <= 0 {
		return nil, &ValidationError{Stage: "chunk", Message: fmt.Sprintf("invalid chunk size %d", c.ChunkSize)}
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return nil, &ValidationError{Stage: "chunk", Message: fmt.Sprintf("invalid overlap %d for chunk size %d", c.Overlap, c.ChunkSize)}
	}
	if doc.Id == uuid.Nil || doc.SessionId == uuid.Nil {
		return nil, &ValidationError{Stage: "chunk", Message: "document and session ids are required"}
	}

	var chunks []Chunk
	position := 0
	for _, segment := range segments {
		if segment.Text == "" {
			continue
		}

		for _, piece := range c.split(segment.Text) {
			chunks = append(chunks, Chunk{
				Id:         ChunkId(doc.StorageLocator, position, piece),
				DocumentId: doc.Id,
				SessionId:  doc.SessionId,
				Position:   position,
				Page:       segment.Page,
				Section:    segment.Section,
				Text:       piece,
			})
			position++
		}
	}

	return chunks, nil
}

func (c *Chunker) split(text string) []string {
	pieces := utils.SplitText(text, c.ChunkSize, c.Overlap)
	if c.encoder == nil {
		return pieces
	}

	// Re-split any piece that the character heuristic left over the token
	// budget (dense scripts, no whitespace).
	var out []string
	for _, piece := range pieces {
		if len(c.encoder.Encode(piece, nil, nil)) <= c.MaxTokens {
			out = append(out, piece)
			continue
		}
		half := len(piece)/2 + c.Overlap
		out = append(out, utils.SplitText(piece, half, c.Overlap)...)
	}
	return out
}

// ChunkId derives the deterministic identity of a chunk. Same locator, same
// position, same content — same id, on every run, on every worker.
func ChunkId(locator string, position int, content string) uuid.UUID {
	name := fmt.Sprintf("%s|%d|%s", locator, position, content)
	return uuid.NewSHA1(chunkNamespace, []byte(name))
}
