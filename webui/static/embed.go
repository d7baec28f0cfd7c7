// Package static provides embedded static assets for the web UI.
// This file uses Go's embed directive to bundle static files into the binary.
package static

import (
	"embed"
	"io/fs"
)

// StaticFS contains all embedded static assets for the web UI:
// - index.html (upload form and result view)
//
//go:embed index.html
var StaticFS embed.FS

// GetFS returns the embedded filesystem.
func GetFS() fs.FS {
	return StaticFS
}

// ReadFile reads a file from the embedded filesystem.
func ReadFile(name string) ([]byte, error) {
	return StaticFS.ReadFile(name)
}
