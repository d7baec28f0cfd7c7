// truncator.go implements the Truncator molecule that bounds extracted
// text before chunking. It supports two strategies:
//   - hard cutoff: keep the first maxChars bytes
//   - head/tail: keep the opening and closing sections with an omission
//     marker between them, so both the management discussion at the front
//     and the statements at the back survive
package report

import (
	"unicode/utf8"

	"finreport_backend/core"
)

// OmissionMarker is inserted between the head and tail sections when
// the head/tail strategy drops the middle of a document.
const OmissionMarker = "\n\n[... middle section omitted ...]\n\n"

// BoundedText is the result of a truncation pass.
type BoundedText struct {
	// Text is the bounded text, at most maxChars bytes long
	Text string

	// Truncated is true when content was removed
	Truncated bool

	// OriginalLen is the byte length of the input text
	OriginalLen int
}

// Truncator bounds text to a byte budget using a configured strategy.
//
// Thread-Safety:
//   - Truncator is safe for concurrent use (stateless)
type Truncator struct {
	maxChars int
	strategy string
}

// NewTruncator creates a Truncator for the given budget and strategy.
// Unknown strategy values fall back to the hard cutoff.
//
// Example:
//
//	tr := NewTruncator(150000, core.StrategyHeadTail)
//	bounded := tr.Truncate(longText)
func NewTruncator(maxChars int, strategy string) *Truncator {
	if strategy != core.StrategyHeadTail {
		strategy = core.StrategyHardCutoff
	}
	return &Truncator{maxChars: maxChars, strategy: strategy}
}

// Truncate bounds text to the configured budget.
//
// Text that already fits is returned unchanged with Truncated false.
// A non-positive budget yields empty text.
func (t *Truncator) Truncate(text string) BoundedText {
	result := BoundedText{Text: text, OriginalLen: len(text)}

	if t.maxChars <= 0 {
		result.Text = ""
		result.Truncated = len(text) > 0
		return result
	}
	if len(text) <= t.maxChars {
		return result
	}

	result.Truncated = true
	switch t.strategy {
	case core.StrategyHeadTail:
		result.Text = headTail(text, t.maxChars)
	default:
		result.Text = text[:cutBack(text, t.maxChars)]
	}
	return result
}

// headTail keeps the first and last 40% of the budget with the omission
// marker in between. The remaining 20% is the marker's reserve; the
// output never exceeds maxChars.
func headTail(text string, maxChars int) string {
	// The marker must fit in the 20% reserve, otherwise the output
	// could exceed the budget; fall back to a hard cutoff.
	if len(OmissionMarker) > maxChars/5 {
		return text[:cutBack(text, maxChars)]
	}
	keep := maxChars * 2 / 5
	head := text[:cutBack(text, keep)]
	tail := text[cutForward(text, len(text)-keep):]
	return head + OmissionMarker + tail
}

// cutBack moves i back to the nearest rune start so a cut never splits
// a multi-byte character. The cut only shrinks, keeping the budget.
func cutBack(s string, i int) int {
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// cutForward moves i forward past a partial rune for tail cuts. The
// dropped bytes only shrink the output, keeping the budget.
func cutForward(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
