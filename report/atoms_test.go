package report

import "testing"

func TestEstimateTokenCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty string", "", 0},
		{"short text", "Hello, world!", 3},
		{"exactly 4 chars", "abcd", 1},
		{"under 4 chars", "abc", 0},
		{"longer text", "The quick brown fox jumps over the lazy dog", 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokenCount(tt.text); got != tt.want {
				t.Errorf("EstimateTokenCount(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty string", "", 0},
		{"whitespace only", "   \t\n  ", 0},
		{"single word", "revenue", 1},
		{"multiple spaces between words", "net  income   rose", 3},
		{"mixed whitespace", "net income rose\n12%\tthis quarter", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountWords(tt.text); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty string", "", true},
		{"spaces and newlines", " \n\t ", true},
		{"non-blank", " x ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBlank(tt.text); got != tt.want {
				t.Errorf("IsBlank(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
