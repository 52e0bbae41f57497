package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		wantCount int
	}{
		{
			name:      "empty text",
			text:      "",
			chunkSize: 100,
			overlap:   10,
			wantCount: 0,
		},
		{
			name:      "text smaller than chunk",
			text:      "short text",
			chunkSize: 100,
			overlap:   10,
			wantCount: 1,
		},
		{
			name:      "text exactly chunk size",
			text:      strings.Repeat("a", 100),
			chunkSize: 100,
			overlap:   10,
			wantCount: 1,
		},
		{
			name:      "text needing two chunks",
			text:      strings.Repeat("word ", 50), // 250 chars
			chunkSize: 200,
			overlap:   20,
			wantCount: 2,
		},
		{
			name:      "overlap larger than chunk falls back to full step",
			text:      strings.Repeat("a", 300),
			chunkSize: 100,
			overlap:   100,
			wantCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.chunkSize, tt.overlap)
			if len(chunks) != tt.wantCount {
				t.Errorf("chunk count = %d, want %d", len(chunks), tt.wantCount)
			}
			for i, c := range chunks {
				if c == "" {
					t.Errorf("chunk %d is empty", i)
				}
			}
		})
	}
}

func TestSplitTextPrefersWordBoundaries(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta ", 30)
	chunks := SplitText(text, 100, 20)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Every non-final chunk should end at whitespace, not mid-word.
	for i := 0; i < len(chunks)-1; i++ {
		last := chunks[i][len(chunks[i])-1]
		if last != ' ' {
			t.Errorf("chunk %d ends mid-word: %q", i, chunks[i][len(chunks[i])-20:])
		}
	}
}

func TestSplitTextNoLossWhenBackupExceedsOverlap(t *testing.T) {
	// The only space near the first boundary sits 94 runes before the nominal
	// cut, so the word-boundary back-up retreats further than the overlap.
	// Every rune between the backed-up end and the next chunk must survive.
	marker := strings.Repeat("b", 94)
	text := strings.Repeat("a", 905) + " " + marker + " " + strings.Repeat("c", 1500)

	chunks := SplitText(text, 1000, 50)

	found := false
	for _, c := range chunks {
		if strings.Contains(c, marker) {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("runes behind a backed-up boundary were dropped from every chunk")
	}

	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Error("last chunk does not end the text")
	}
}

func TestSplitTextCoversAllContent(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 20)
	chunks := SplitText(text, 120, 30)

	// With overlap, concatenation is longer than the input, but the first
	// chunk must start the text and the last must end it.
	if !strings.HasPrefix(text, chunks[0][:50]) {
		t.Error("first chunk does not start the text")
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Error("last chunk does not end the text")
	}
}
