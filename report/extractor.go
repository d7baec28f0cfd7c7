// extractor.go implements the Extractor molecule that turns a PDF
// report into text. It drives a primary page reader and falls back to a
// secondary reader when the primary fails or yields nothing usable. It
// composes:
//   - pdfreader: PageReader implementations (ledongthuc primary, MuPDF fallback)
//   - atoms.go: IsBlank and EstimateTokenCount
package report

import (
	"context"
	"fmt"
	"strings"

	"finreport_backend/core"
	"finreport_backend/pdfreader"
)

// ExtractorConfig holds configuration for text extraction.
type ExtractorConfig struct {
	// MaxPages caps how many pages the primary reader visits.
	// Set to 0 for all pages.
	MaxPages int

	// MaxChars caps accumulated text from the primary reader. Once a
	// page pushes the total past this, extraction stops; the overshoot
	// from that final page is kept and the result is marked truncated.
	MaxChars int

	// FallbackMaxPages caps pages for the fallback reader.
	FallbackMaxPages int

	// FallbackMaxChars caps accumulated text from the fallback reader.
	FallbackMaxChars int

	// PageSeparator joins page texts. Defaults to "\n\n" if empty.
	PageSeparator string
}

// DefaultExtractorConfig returns sensible default configuration. The
// fallback reader gets half the primary's character budget: it only
// runs on documents the primary already struggled with.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxPages:         0,
		MaxChars:         core.DefaultMaxChars,
		FallbackMaxPages: 0,
		FallbackMaxChars: core.DefaultMaxChars / 2,
		PageSeparator:    "\n\n",
	}
}

// ExtractionResult contains the extracted text and its provenance.
type ExtractionResult struct {
	// Text is the extracted text, pages joined by the separator
	Text string

	// Reader is the name of the reader that produced the text
	Reader string

	// PagesRead is the number of pages that contributed text
	PagesRead int

	// Truncated is true if the character budget stopped extraction early
	Truncated bool

	// UsedFallback is true when the fallback reader produced the text
	UsedFallback bool

	// EstimatedTokens is the estimated token count of Text
	EstimatedTokens int
}

// Extractor extracts text from PDF files with reader fallback.
//
// Thread-Safety:
//   - Extractor is safe for concurrent use (stateless beyond config)
type Extractor struct {
	config   ExtractorConfig
	primary  pdfreader.PageReader
	fallback pdfreader.PageReader
}

// NewExtractor creates an Extractor with the default reader pair:
// ledongthuc/pdf primary and MuPDF fallback.
//
// Example:
//
//	extractor := NewExtractor(DefaultExtractorConfig())
//	result, err := extractor.Extract(ctx, "/path/to/report.pdf")
func NewExtractor(config ExtractorConfig) *Extractor {
	return NewExtractorWithReaders(config, pdfreader.NewLedongthucReader(), pdfreader.NewFitzReader())
}

// NewExtractorWithReaders creates an Extractor with explicit readers.
// fallback may be nil to disable the fallback pass.
func NewExtractorWithReaders(config ExtractorConfig, primary, fallback pdfreader.PageReader) *Extractor {
	if config.PageSeparator == "" {
		config.PageSeparator = "\n\n"
	}
	return &Extractor{config: config, primary: primary, fallback: fallback}
}

// Extract reads text from the PDF at path. The primary reader runs
// first; if it errors or yields only whitespace, the fallback reader
// runs with its own limits. When both produce nothing usable the
// returned error wraps core.ErrExtractionFailed.
//
// Extraction is deterministic for a given (file, config) pair, which is
// what makes its results safe to cache by content hash.
func (e *Extractor) Extract(ctx context.Context, path string) (*ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, primaryErr := e.extractWith(e.primary, path, e.config.MaxPages, e.config.MaxChars)
	if primaryErr == nil && !IsBlank(result.Text) {
		return result, nil
	}

	if e.fallback == nil {
		return nil, extractionFailed(path, primaryErr, nil)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, fallbackErr := e.extractWith(e.fallback, path, e.config.FallbackMaxPages, e.config.FallbackMaxChars)
	if fallbackErr == nil && !IsBlank(result.Text) {
		result.UsedFallback = true
		return result, nil
	}

	return nil, extractionFailed(path, primaryErr, fallbackErr)
}

// extractWith runs one reader and assembles its pages into a result.
// A nil error with blank text is possible; the caller decides whether
// that counts as failure.
func (e *Extractor) extractWith(reader pdfreader.PageReader, path string, maxPages, maxChars int) (*ExtractionResult, error) {
	pages, err := reader.ReadPages(path, maxPages)
	if err != nil {
		return nil, err
	}

	var builder strings.Builder
	result := &ExtractionResult{Reader: reader.Name()}

	for i, page := range pages {
		if IsBlank(page) {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString(e.config.PageSeparator)
		}
		builder.WriteString(page)
		result.PagesRead++

		if maxChars > 0 && builder.Len() >= maxChars {
			if i < len(pages)-1 {
				result.Truncated = true
			}
			break
		}
	}

	result.Text = builder.String()
	result.EstimatedTokens = EstimateTokenCount(result.Text)
	return result, nil
}

// extractionFailed builds the terminal extraction error, carrying
// whichever reader errors occurred.
func extractionFailed(path string, primaryErr, fallbackErr error) error {
	switch {
	case primaryErr != nil && fallbackErr != nil:
		return fmt.Errorf("%w: %s: primary: %v; fallback: %v", core.ErrExtractionFailed, path, primaryErr, fallbackErr)
	case primaryErr != nil:
		return fmt.Errorf("%w: %s: primary: %v", core.ErrExtractionFailed, path, primaryErr)
	case fallbackErr != nil:
		return fmt.Errorf("%w: %s: fallback: %v", core.ErrExtractionFailed, path, fallbackErr)
	default:
		return fmt.Errorf("%w: %s: no text in document", core.ErrExtractionFailed, path)
	}
}
