// Package report implements the financial-report analysis pipeline for
// FinReport. It extracts text from uploaded PDF reports, bounds and
// chunks the text, and drives an LLM to produce summaries, metric
// tables, and risk assessments.
package report

import "strings"

// EstimateTokenCount provides a rough estimate of tokens in a text.
// It uses an average of 4 characters per token as an approximation,
// which is a reasonable heuristic for English text with GPT-style tokenizers.
//
// This is a pure function with no dependencies - it simply performs
// character counting and division.
//
// Example:
//
//	tokens := EstimateTokenCount("Hello, world!") // Returns 3
//	tokens := EstimateTokenCount("")              // Returns 0
func EstimateTokenCount(text string) int {
	if len(text) == 0 {
		return 0
	}
	return len(text) / 4
}

// CountWords returns the number of whitespace-separated words in text.
// Words are delimited by any run of Unicode whitespace, so consecutive
// spaces, tabs, and newlines never produce empty words.
//
// Example:
//
//	n := CountWords("net  income rose\n12%") // Returns 4
//	n := CountWords("   ")                   // Returns 0
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// IsBlank reports whether text is empty or contains only whitespace.
// Extraction treats blank output the same as a failed read.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
