package markup

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
)

// QuotePrefix marks the id of a blockquote that refers back to a message.
const QuotePrefix = "tm_"

// QuoteID returns the back-reference id for a message key.
func QuoteID(key string) string {
	return QuotePrefix + key
}

// Quote wraps a bubble's HTML in a back-referencing blockquote, followed by
// the blank line that separates it from the reply.
func Quote(key, bubbleHTML string) string {
	return fmt.Sprintf("<blockquote id=\"%s\" style=\"overflow:auto; max-height:100px;\">%s</blockquote>\n\n", QuoteID(key), bubbleHTML)
}

// KeyFromQuoteID extracts the message key from a blockquote id.
func KeyFromQuoteID(id string) (string, bool) {
	if !strings.HasPrefix(id, QuotePrefix) || len(id) == len(QuotePrefix) {
		return "", false
	}
	return id[len(QuotePrefix):], true
}

var (
	brTag  = regexp.MustCompile(`(?i)<br\s*/?>\n?`)
	anyTag = regexp.MustCompile(`<[^>]*>`)
)

// PlainText reduces bubble HTML to clipboard text: line breaks become
// newlines, all other tags are dropped and entities are decoded.
func PlainText(s string) string {
	s = brTag.ReplaceAllString(s, "\n")
	s = anyTag.ReplaceAllString(s, "")
	return html.UnescapeString(s)
}

// Image is an <img> found in a message body.
type Image struct {
	Src string
	Alt string
}

// Images lists the images in s in document order.
func Images(s string) []Image {
	var out []Image
	walk(s, func(tag string, attrs map[string]string) {
		if tag == "img" && attrs["src"] != "" {
			out = append(out, Image{Src: attrs["src"], Alt: attrs["alt"]})
		}
	})
	return out
}

// Links lists the hrefs of anchors in s in document order.
func Links(s string) []string {
	var out []string
	walk(s, func(tag string, attrs map[string]string) {
		if tag == "a" && attrs["href"] != "" {
			out = append(out, attrs["href"])
		}
	})
	return out
}

// QuotedKeys lists the message keys that s quotes.
func QuotedKeys(s string) []string {
	var out []string
	walk(s, func(tag string, attrs map[string]string) {
		if tag != "blockquote" {
			return
		}
		if key, ok := KeyFromQuoteID(attrs["id"]); ok {
			out = append(out, key)
		}
	})
	return out
}

func walk(s string, fn func(tag string, attrs map[string]string)) {
	z := xhtml.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			t := z.Token()
			fn(t.Data, attrMap(t.Attr))
		}
	}
}

func attrMap(attrs []xhtml.Attribute) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Val
	}
	return m
}
