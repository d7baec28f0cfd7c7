package pdfreader

import (
	"errors"
	"strings"

	"github.com/gen2brain/go-fitz"

	"finreport_backend/core"
)

// errEmptyPath is returned when a reader is given an empty file path.
var errEmptyPath = errors.New("empty PDF path provided")

// FitzReader is the fallback PDF reader, backed by MuPDF via
// gen2brain/go-fitz. MuPDF copes with many documents that defeat the
// primary pure-Go parser, at the cost of a heavier native dependency.
type FitzReader struct{}

// NewFitzReader creates the fallback reader.
func NewFitzReader() *FitzReader {
	return &FitzReader{}
}

// Name identifies this reader in logs and provenance.
func (r *FitzReader) Name() string {
	return "mupdf"
}

// ReadPages extracts plain text from up to maxPages pages.
//
// Pages are 0-indexed in go-fitz. Per-page errors yield empty strings;
// only an unopenable document returns an error.
func (r *FitzReader) ReadPages(path string, maxPages int) ([]string, error) {
	if path == "" {
		return nil, core.NewReadError(r.Name(), errEmptyPath)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, core.NewReadError(r.Name(), err)
	}
	defer doc.Close()

	totalPages := doc.NumPage()
	pagesToRead := totalPages
	if maxPages > 0 && maxPages < totalPages {
		pagesToRead = maxPages
	}

	pages := make([]string, 0, pagesToRead)
	for pageIndex := 0; pageIndex < pagesToRead; pageIndex++ {
		text, err := doc.Text(pageIndex)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return pages, nil
}
