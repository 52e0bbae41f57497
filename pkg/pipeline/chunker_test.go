package pipeline

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() Document {
	return Document{
		Id:             uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		SessionId:      uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		StorageLocator: "sessions/s1/report.pdf",
	}
}

func TestChunkIdDeterministic(t *testing.T) {
	a := ChunkId("sessions/s1/report.pdf", 0, "some content")
	b := ChunkId("sessions/s1/report.pdf", 0, "some content")
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, ChunkId("sessions/s1/report.pdf", 1, "some content"))
	assert.NotEqual(t, a, ChunkId("sessions/s1/other.pdf", 0, "some content"))
	assert.NotEqual(t, a, ChunkId("sessions/s1/report.pdf", 0, "other content"))
}

func TestChunkerProducesSameIdsAcrossRuns(t *testing.T) {
	chunker := NewChunker(200, 40)
	doc := testDocument()
	segments := []Segment{
		{Text: strings.Repeat("alpha beta gamma delta epsilon ", 40), Page: 1},
		{Text: strings.Repeat("one two three four five six seven ", 30), Page: 2},
	}

	first, err := chunker.Chunk(doc, segments)
	require.NoError(t, err)
	second, err := chunker.Chunk(doc, segments)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Id, second[i].Id, "chunk %d id changed between runs", i)
		assert.Equal(t, first[i].Position, second[i].Position)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestChunkerPositionsAndMetadata(t *testing.T) {
	chunker := NewChunker(100, 20)
	doc := testDocument()
	segments := []Segment{
		{Text: strings.Repeat("page one words here ", 20), Page: 1},
		{Text: strings.Repeat("page two words here ", 20), Page: 2},
	}

	chunks, err := chunker.Chunk(doc, segments)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.Equal(t, i, c.Position, "positions must be contiguous")
		assert.Equal(t, doc.Id, c.DocumentId)
		assert.Equal(t, doc.SessionId, c.SessionId)
		assert.NotEqual(t, uuid.Nil, c.Id)
	}

	// Page metadata carries over from the source segment.
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 2, chunks[len(chunks)-1].Page)
}

func TestChunkerEmptyInput(t *testing.T) {
	chunker := NewChunker(100, 20)
	doc := testDocument()

	chunks, err := chunker.Chunk(doc, nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = chunker.Chunk(doc, []Segment{{Text: "", Page: 1}})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkerValidation(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
		doc       Document
	}{
		{name: "zero chunk size", chunkSize: 0, overlap: 0, doc: testDocument()},
		{name: "overlap >= chunk size", chunkSize: 100, overlap: 100, doc: testDocument()},
		{name: "negative overlap", chunkSize: 100, overlap: -1, doc: testDocument()},
		{name: "nil document id", chunkSize: 100, overlap: 10, doc: Document{SessionId: uuid.New()}},
		{name: "nil session id", chunkSize: 100, overlap: 10, doc: Document{Id: uuid.New()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunker := &Chunker{ChunkSize: tt.chunkSize, Overlap: tt.overlap, MaxTokens: 512}
			_, err := chunker.Chunk(tt.doc, []Segment{{Text: "content", Page: 1}})
			require.Error(t, err)

			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
			assert.False(t, Retryable(err), "validation errors must be terminal")
		})
	}
}

func TestChunkerShortSegmentIsOneChunk(t *testing.T) {
	chunker := NewChunker(1500, 200)
	doc := testDocument()

	chunks, err := chunker.Chunk(doc, []Segment{{Text: "a single short paragraph", Page: 3, Section: "intro"}})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a single short paragraph", chunks[0].Text)
	assert.Equal(t, "intro", chunks[0].Section)
}
