// Package markup turns what users type into what bubbles show: markdown
// to HTML, HTML sanitization, plain-text extraction for the clipboard, and
// HTML to styled terminal lines.
package markup

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// GitHub-flavoured markdown with single newlines kept as line breaks and
// inline HTML passed through. Raw HTML is safe here because every body is
// sanitized before display.
var converter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithUnsafe(),
	),
)

// Convert renders markdown to HTML. The result is trimmed; blank input
// yields "".
func Convert(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := converter.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
