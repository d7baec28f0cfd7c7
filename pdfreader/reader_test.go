package pdfreader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"finreport_backend/core"
)

func TestReaderNames(t *testing.T) {
	if got := NewLedongthucReader().Name(); got != "ledongthuc" {
		t.Errorf("LedongthucReader.Name() = %q, want %q", got, "ledongthuc")
	}
	if got := NewFitzReader().Name(); got != "mupdf" {
		t.Errorf("FitzReader.Name() = %q, want %q", got, "mupdf")
	}
}

func TestLedongthucReader_EmptyPath(t *testing.T) {
	_, err := NewLedongthucReader().ReadPages("", 0)
	assertReadError(t, err, "ledongthuc")
}

func TestLedongthucReader_MissingFile(t *testing.T) {
	_, err := NewLedongthucReader().ReadPages(filepath.Join(t.TempDir(), "missing.pdf"), 0)
	assertReadError(t, err, "ledongthuc")
}

func TestLedongthucReader_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := NewLedongthucReader().ReadPages(path, 0)
	assertReadError(t, err, "ledongthuc")
}

func TestFitzReader_EmptyPath(t *testing.T) {
	_, err := NewFitzReader().ReadPages("", 0)
	assertReadError(t, err, "mupdf")
}

func TestFitzReader_MissingFile(t *testing.T) {
	_, err := NewFitzReader().ReadPages(filepath.Join(t.TempDir(), "missing.pdf"), 0)
	assertReadError(t, err, "mupdf")
}

// assertReadError verifies that err is a *core.ReadError from the named reader.
func assertReadError(t *testing.T, err error, reader string) {
	t.Helper()

	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var readErr *core.ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("error type = %T, want *core.ReadError", err)
	}
	if readErr.Reader != reader {
		t.Errorf("Reader = %q, want %q", readErr.Reader, reader)
	}
}
