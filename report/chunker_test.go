package report

import (
	"fmt"
	"strings"
	"testing"
)

// wordDoc builds a document of n distinct numbered words.
func wordDoc(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestChunks_ExactPartition(t *testing.T) {
	// 7000 words at 3000 per chunk must yield 3000, 3000, 1000.
	doc := wordDoc(7000)
	chunks := SplitWordChunks(doc, 3000)

	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}

	wantSizes := []int{3000, 3000, 1000}
	var rejoined []string
	for i, chunk := range chunks {
		words := strings.Fields(chunk)
		if len(words) != wantSizes[i] {
			t.Errorf("chunk %d has %d words, want %d", i, len(words), wantSizes[i])
		}
		rejoined = append(rejoined, words...)
	}

	// Chunks partition the word sequence exactly, in order.
	if joined := strings.Join(rejoined, " "); joined != doc {
		t.Error("rejoined chunks do not reproduce the original word sequence")
	}
}

func TestChunks_SingleChunkWhenTextFits(t *testing.T) {
	chunks := SplitWordChunks(wordDoc(100), 3000)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
}

func TestChunks_ExactMultiple(t *testing.T) {
	chunks := SplitWordChunks(wordDoc(6000), 3000)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2 for an exact multiple", len(chunks))
	}
	for i, chunk := range chunks {
		if n := len(strings.Fields(chunk)); n != 3000 {
			t.Errorf("chunk %d has %d words, want 3000", i, n)
		}
	}
}

func TestChunks_NormalizesWhitespace(t *testing.T) {
	chunks := SplitWordChunks("alpha\n\nbeta\t gamma   delta", 3)

	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	if chunks[0] != "alpha beta gamma" {
		t.Errorf("chunk 0 = %q, want single-space joined words", chunks[0])
	}
	if chunks[1] != "delta" {
		t.Errorf("chunk 1 = %q, want %q", chunks[1], "delta")
	}
}

func TestChunks_EmptyInputs(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkWords int
	}{
		{"empty text", "", 100},
		{"whitespace only", "  \n\t ", 100},
		{"zero chunk size", "some words here", 0},
		{"negative chunk size", "some words here", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if chunks := SplitWordChunks(tt.text, tt.chunkWords); chunks != nil {
				t.Errorf("SplitWordChunks() = %v, want no chunks", chunks)
			}
		})
	}
}

func TestChunks_Lazy(t *testing.T) {
	// Stopping after the first chunk must not consume the rest.
	seq := Chunks(wordDoc(9000), 3000)

	var got []string
	for chunk := range seq {
		got = append(got, chunk)
		break
	}
	if len(got) != 1 {
		t.Fatalf("consumed %d chunks, want 1 after early break", len(got))
	}
}

func TestChunks_Restartable(t *testing.T) {
	seq := Chunks(wordDoc(500), 200)

	var first, second []string
	for chunk := range seq {
		first = append(first, chunk)
	}
	for chunk := range seq {
		second = append(second, chunk)
	}

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("passes = %d and %d chunks, want 3 and 3", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between passes", i)
		}
	}
}

func TestChunkCount(t *testing.T) {
	tests := []struct {
		name       string
		words      int
		chunkWords int
		want       int
	}{
		{"empty", 0, 3000, 0},
		{"under one chunk", 100, 3000, 1},
		{"exact multiple", 6000, 3000, 2},
		{"with remainder", 7000, 3000, 3},
		{"zero chunk size", 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChunkCount(wordDoc(tt.words), tt.chunkWords); got != tt.want {
				t.Errorf("ChunkCount(%d words, %d) = %d, want %d",
					tt.words, tt.chunkWords, got, tt.want)
			}
		})
	}
}
