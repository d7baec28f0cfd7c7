// render.go converts model output to HTML for the single-page UI.
// Summary and risk output is Markdown-ish; goldmark renders it with
// GitHub-flavored extensions so tables and lists come out right.
package webui

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// markdown is the shared renderer. goldmark.Markdown is safe for
// concurrent use.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// RenderMarkdown converts Markdown text to HTML. On render failure the
// empty string is returned; callers fall back to the plain text.
func RenderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return ""
	}
	return buf.String()
}
