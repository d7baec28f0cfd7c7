package pdfreader

import (
	"strings"

	"github.com/ledongthuc/pdf"

	"finreport_backend/core"
)

// LedongthucReader is the primary PDF reader, backed by the
// ledongthuc/pdf library. It handles most digitally-produced financial
// reports well but can fail on unusual encodings, where the MuPDF
// fallback takes over.
type LedongthucReader struct{}

// NewLedongthucReader creates the primary reader.
func NewLedongthucReader() *LedongthucReader {
	return &LedongthucReader{}
}

// Name identifies this reader in logs and provenance.
func (r *LedongthucReader) Name() string {
	return "ledongthuc"
}

// ReadPages extracts plain text from up to maxPages pages.
//
// Pages are 1-indexed in ledongthuc/pdf. Pages that fail to render text
// individually yield empty strings rather than failing the whole
// document; only an unopenable document returns an error.
func (r *LedongthucReader) ReadPages(path string, maxPages int) ([]string, error) {
	if path == "" {
		return nil, core.NewReadError(r.Name(), errEmptyPath)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, core.NewReadError(r.Name(), err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	pagesToRead := totalPages
	if maxPages > 0 && maxPages < totalPages {
		pagesToRead = maxPages
	}

	pages := make([]string, 0, pagesToRead)
	for pageIndex := 1; pageIndex <= pagesToRead; pageIndex++ {
		p := reader.Page(pageIndex)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			// Tolerate per-page failures; the budget logic upstream
			// decides whether the document as a whole was readable.
			pages = append(pages, "")
			continue
		}

		pages = append(pages, strings.TrimSpace(text))
	}

	return pages, nil
}
