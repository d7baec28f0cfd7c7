// Package pdfreader provides the page-reading capability for the
// extraction pipeline: interchangeable PDF text readers with a common
// interface, so extraction can degrade from the primary parser to a
// fallback parser when a document defeats the first one.
package pdfreader

// PageReader reads plain text from the pages of a PDF file.
//
// Implementations must be safe for concurrent use and must not retain
// state between calls: ReadPages is a pure function of (path, maxPages)
// for an unchanged file.
type PageReader interface {
	// Name identifies the reader in logs and extraction provenance
	// (e.g., "ledongthuc", "mupdf").
	Name() string

	// ReadPages returns the text of up to maxPages pages, in page order.
	// A maxPages of 0 reads all pages. Individual pages may yield empty
	// strings (scanned or image-only pages); that is not an error.
	//
	// Returns a *core.ReadError when the document cannot be opened or
	// parsed at all (malformed, encrypted, or unsupported input).
	ReadPages(path string, maxPages int) ([]string, error)
}
