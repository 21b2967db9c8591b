package markup

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	xhtml "golang.org/x/net/html"
)

// DefaultCodeStyle is the chroma style used for fenced code.
const DefaultCodeStyle = "monokai"

// Theme colors rendered markup. Nil colors leave the terminal default.
type Theme struct {
	Link      color.Color
	Code      color.Color
	Heading   color.Color
	Quote     color.Color
	Muted     color.Color
	CodeStyle string
}

// Line is one rendered terminal row of a message body, carrying what a
// click or long press on it can act on.
type Line struct {
	Text string

	// QuoteKey is the message key referenced by the innermost quote
	// enclosing this line, or "".
	QuoteKey string

	Links  []string
	Images []Image
}

// Render lays out sanitized bubble HTML as styled lines no wider than
// width. A width of zero or less disables wrapping.
func Render(body string, width int, th Theme) []Line {
	r := &renderer{th: th, width: width}
	z := xhtml.NewTokenizer(strings.NewReader(body))
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			break
		}
		t := z.Token()
		switch tt {
		case xhtml.StartTagToken:
			r.start(t)
		case xhtml.SelfClosingTagToken:
			r.start(t)
			r.end(t.Data)
		case xhtml.EndTagToken:
			r.end(t.Data)
		case xhtml.TextToken:
			r.text(t.Data)
		}
	}
	if r.pre {
		r.endPre()
	}
	r.flush()
	return r.lines
}

type list struct {
	ordered bool
	n       int
}

type renderer struct {
	th    Theme
	width int
	lines []Line

	buf       strings.Builder
	openSpace bool
	links     []string
	images    []Image
	bullet    string

	bold, italic, strike, under, code, heading int

	href   string
	quotes []string
	lists  []list
	cells  int

	pre     bool
	preLang string
	preBuf  strings.Builder
}

func (r *renderer) start(t xhtml.Token) {
	attrs := attrMap(t.Attr)
	switch t.Data {
	case "p", "div", "h", "table", "tr", "hr":
		r.flush()
	case "h1", "h2", "h3", "h4", "h5", "h6":
		r.flush()
		r.heading++
	case "b", "strong":
		r.bold++
	case "i", "em":
		r.italic++
	case "s", "del", "strike":
		r.strike++
	case "u", "ins":
		r.under++
	case "code":
		if r.pre {
			r.preLang = strings.TrimPrefix(attrs["class"], "language-")
		} else {
			r.code++
		}
	case "a":
		r.href = attrs["href"]
		if r.href != "" {
			r.links = append(r.links, r.href)
		}
	case "br":
		if r.buf.Len() == 0 {
			r.emit("")
		}
		r.flush()
	case "img":
		alt := attrs["alt"]
		if alt == "" {
			alt = "image"
		}
		r.images = append(r.images, Image{Src: attrs["src"], Alt: alt})
		r.write(r.paint("[image: "+alt+"]", r.th.Muted), lipgloss.Style{}, false)
	case "blockquote":
		r.flush()
		key, _ := KeyFromQuoteID(attrs["id"])
		r.quotes = append(r.quotes, key)
	case "ul", "ol":
		r.flush()
		r.lists = append(r.lists, list{ordered: t.Data == "ol"})
	case "li":
		r.flush()
		if n := len(r.lists); n > 0 {
			l := &r.lists[n-1]
			l.n++
			if l.ordered {
				r.bullet = fmt.Sprintf("%d. ", l.n)
			} else {
				r.bullet = "• "
			}
		} else {
			r.bullet = "• "
		}
	case "pre":
		r.flush()
		r.pre = true
		r.preLang = ""
		r.preBuf.Reset()
	case "th":
		r.bold++
		fallthrough
	case "td":
		if r.cells > 0 {
			r.openSpace = false
			r.buf.WriteString(" │ ")
		}
		r.cells++
	}
	if t.Data == "hr" {
		w := r.width - ansi.StringWidth(r.prefix())
		if w <= 0 || w > 40 {
			w = 40
		}
		r.emit(r.paint(strings.Repeat("─", w), r.th.Muted))
	}
}

func (r *renderer) end(tag string) {
	switch tag {
	case "p", "div", "h", "li", "table":
		r.flush()
	case "tr":
		r.flush()
		r.cells = 0
	case "h1", "h2", "h3", "h4", "h5", "h6":
		r.flush()
		r.heading = dec(r.heading)
	case "b", "strong":
		r.bold = dec(r.bold)
	case "th":
		r.bold = dec(r.bold)
	case "i", "em":
		r.italic = dec(r.italic)
	case "s", "del", "strike":
		r.strike = dec(r.strike)
	case "u", "ins":
		r.under = dec(r.under)
	case "code":
		if !r.pre {
			r.code = dec(r.code)
		}
	case "a":
		r.href = ""
	case "blockquote":
		r.flush()
		if n := len(r.quotes); n > 0 {
			r.quotes = r.quotes[:n-1]
		}
	case "ul", "ol":
		r.flush()
		if n := len(r.lists); n > 0 {
			r.lists = r.lists[:n-1]
		}
	case "pre":
		r.endPre()
	}
}

func dec(n int) int {
	if n > 0 {
		return n - 1
	}
	return 0
}

func (r *renderer) text(s string) {
	if r.pre {
		r.preBuf.WriteString(s)
		return
	}
	if s == "" {
		return
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		r.openSpace = r.buf.Len() > 0
		return
	}
	if isSpace(s[0]) && r.buf.Len() > 0 {
		r.openSpace = true
	}
	st, styled := r.style()
	r.write(strings.Join(words, " "), st, styled)
	r.openSpace = isSpace(s[len(s)-1])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r' || b == '\f'
}

func (r *renderer) write(s string, st lipgloss.Style, styled bool) {
	if r.openSpace && r.buf.Len() > 0 {
		r.buf.WriteByte(' ')
	}
	r.openSpace = false
	if styled {
		s = st.Render(s)
	}
	r.buf.WriteString(s)
}

func (r *renderer) style() (lipgloss.Style, bool) {
	st := lipgloss.NewStyle()
	styled := false
	if r.bold > 0 || r.heading > 0 {
		st = st.Bold(true)
		styled = true
	}
	if r.heading > 0 {
		st = r.fg(st, r.th.Heading)
	}
	if r.italic > 0 {
		st = st.Italic(true)
		styled = true
	}
	if r.strike > 0 {
		st = st.Strikethrough(true)
		styled = true
	}
	if r.under > 0 || r.href != "" {
		st = st.Underline(true)
		styled = true
	}
	if r.href != "" {
		st = r.fg(st, r.th.Link)
	}
	if r.code > 0 {
		st = r.fg(st, r.th.Code)
		styled = true
	}
	return st, styled
}

func (r *renderer) paint(s string, c color.Color) string {
	if c == nil {
		return s
	}
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

func (r *renderer) fg(st lipgloss.Style, c color.Color) lipgloss.Style {
	if c == nil {
		return st
	}
	return st.Foreground(c)
}

// prefix is the quote gutter for the current nesting plus list indent.
func (r *renderer) prefix() string {
	var b strings.Builder
	if len(r.quotes) > 0 {
		b.WriteString(r.paint(strings.Repeat("│", len(r.quotes)), r.th.Quote))
		b.WriteByte(' ')
	}
	if n := len(r.lists); n > 1 {
		b.WriteString(strings.Repeat("  ", n-1))
	}
	return b.String()
}

func (r *renderer) quoteKey() string {
	for i := len(r.quotes) - 1; i >= 0; i-- {
		if r.quotes[i] != "" {
			return r.quotes[i]
		}
	}
	return ""
}

func (r *renderer) emit(text string) {
	r.lines = append(r.lines, Line{
		Text:     r.prefix() + text,
		QuoteKey: r.quoteKey(),
		Links:    r.links,
		Images:   r.images,
	})
}

// flush wraps the pending paragraph into lines.
func (r *renderer) flush() {
	defer func() {
		r.buf.Reset()
		r.openSpace = false
		r.links = nil
		r.images = nil
		r.bullet = ""
	}()
	if r.buf.Len() == 0 {
		return
	}

	bullet := r.bullet
	text := r.buf.String()
	if r.width > 0 {
		avail := r.width - ansi.StringWidth(r.prefix()) - ansi.StringWidth(bullet)
		if avail < 1 {
			avail = 1
		}
		text = wrap.String(wordwrap.String(text, avail), avail)
	}
	indent := strings.Repeat(" ", ansi.StringWidth(bullet))
	for i, l := range strings.Split(text, "\n") {
		lead := indent
		if i == 0 {
			lead = bullet
		}
		r.emit(lead + strings.TrimRight(l, " "))
	}
}

func (r *renderer) endPre() {
	r.pre = false
	code := strings.TrimRight(r.preBuf.String(), "\n")
	r.preBuf.Reset()
	if code == "" {
		return
	}
	out := strings.TrimRight(highlightCode(code, r.preLang, r.th.CodeStyle), "\n")
	rows := strings.Split(out, "\n")
	for len(rows) > 0 && strings.TrimSpace(ansi.Strip(rows[len(rows)-1])) == "" {
		rows = rows[:len(rows)-1]
	}
	avail := r.width - ansi.StringWidth(r.prefix())
	for _, l := range rows {
		if r.width > 0 && avail > 0 {
			l = ansi.Truncate(l, avail, "")
		}
		r.emit(l)
	}
}

// highlightCode applies syntax highlighting to code using chroma
func highlightCode(code, language, styleName string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	if styleName == "" {
		styleName = DefaultCodeStyle
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}

	return buf.String()
}
