package webui

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{
			name:     "headings and emphasis",
			input:    "## Key Risks\n\nRevenue is **concentrated** in one customer.",
			contains: []string{"<h2", "Key Risks", "<strong>concentrated</strong>"},
		},
		{
			name:     "lists",
			input:    "- liquidity risk\n- currency exposure",
			contains: []string{"<ul>", "<li>liquidity risk</li>"},
		},
		{
			name:     "gfm table",
			input:    "| Metric | Value |\n|---|---|\n| Revenue | $5M |",
			contains: []string{"<table>", "<td>$5M</td>"},
		},
		{
			name:     "plain text passes through",
			input:    "just a sentence",
			contains: []string{"<p>just a sentence</p>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderMarkdown(tt.input)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("RenderMarkdown(%q) = %q, missing %q", tt.input, got, want)
				}
			}
		})
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	if got := RenderMarkdown(""); strings.TrimSpace(got) != "" {
		t.Errorf("RenderMarkdown(\"\") = %q, want empty", got)
	}
}
