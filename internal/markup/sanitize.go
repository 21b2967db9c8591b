package markup

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy().
		AllowElements("b", "i", "em", "strong", "u", "s", "strike", "del", "ins", "h").
		AllowElements("blockquote", "code", "pre", "font", "span", "div").
		AllowURLSchemes("http", "https", "mailto").
		AllowAttrs("alt", "id", "class", "download").Globally().
		AllowAttrs("color").OnElements("font", "span").
		AllowAttrs("style").Globally()
	p.AllowStyles(
		"width", "height", "min-width", "min-height", "max-width", "max-height",
		"padding", "margin", "border", "border-radius", "display", "overflow",
		"transform", "background",
	).Globally()
	return p
}

// Sanitize strips everything from s that is not safe to show: scripts,
// event handlers, unknown schemes and styles outside the allowed set.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(policy.Sanitize(s))
}

var escaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// EscapeTags makes HTML source displayable as text.
func EscapeTags(s string) string {
	return escaper.Replace(s)
}
