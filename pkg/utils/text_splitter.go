package utils

import "unicode"

// SplitText splits a long string into chunks of approximately 'chunkSize'
// characters with 'overlap' characters preserved across boundaries. Chunk
// boundaries back up to the nearest whitespace when one is close, so words
// are rarely cut in half.
func SplitText(text string, chunkSize int, overlap int) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	totalLen := len(runes)
	if totalLen <= chunkSize {
		return []string{text}
	}

	if overlap < 0 || overlap >= chunkSize {
		overlap = 0 // fallback: degenerate overlap means plain slicing
	}

	var chunks []string
	for i := 0; i < totalLen; {
		end := i + chunkSize
		if end >= totalLen {
			chunks = append(chunks, string(runes[i:totalLen]))
			break
		}
		end = backUpToBreak(runes, i, end)
		chunks = append(chunks, string(runes[i:end]))

		// The next chunk starts relative to the emitted end, not the nominal
		// one, so a backed-up boundary never drops the runes in between.
		next := end - overlap
		if next <= i {
			next = end
		}
		i = next
	}

	return chunks
}

// backUpToBreak moves 'end' left to the nearest whitespace, scanning at most
// a tenth of the chunk; a hard cut is better than losing that much content.
func backUpToBreak(runes []rune, start, end int) int {
	limit := end - (end-start)/10
	for i := end; i > limit; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}
