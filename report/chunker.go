// chunker.go implements the Chunker molecule that splits bounded text
// into fixed-size word chunks for sequential LLM analysis. It composes:
//   - atoms.go: CountWords and EstimateTokenCount for chunk metadata
package report

import (
	"iter"
	"strings"
)

// Chunks returns a lazy sequence of word chunks. Each chunk holds up to
// chunkWords whitespace-separated words joined by single spaces; the
// chunks partition the word sequence exactly, in order, with only the
// final chunk allowed to be short.
//
// The sequence is restartable: ranging over it twice yields the same
// chunks both times. Empty or whitespace-only text, or a non-positive
// chunkWords, yields nothing.
//
// Example:
//
//	for chunk := range Chunks(text, 3000) {
//	    fmt.Println(len(strings.Fields(chunk)))
//	}
func Chunks(text string, chunkWords int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if chunkWords <= 0 {
			return
		}
		words := strings.Fields(text)
		for start := 0; start < len(words); start += chunkWords {
			end := start + chunkWords
			if end > len(words) {
				end = len(words)
			}
			if !yield(strings.Join(words[start:end], " ")) {
				return
			}
		}
	}
}

// SplitWordChunks materializes Chunks into a slice. Use this when the
// caller needs the chunk count up front, as the analyzer does for its
// progress reporting.
func SplitWordChunks(text string, chunkWords int) []string {
	var chunks []string
	for chunk := range Chunks(text, chunkWords) {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// ChunkCount returns the number of chunks Chunks would yield without
// materializing them: ceil(words/chunkWords).
func ChunkCount(text string, chunkWords int) int {
	if chunkWords <= 0 {
		return 0
	}
	words := CountWords(text)
	return (words + chunkWords - 1) / chunkWords
}
