package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/rivo/uniseg"
)

// Header represents the top header bar
type Header struct {
	width  int
	title  string
	status string
	online bool
}

// NewHeader creates a new header
func NewHeader() *Header {
	return &Header{}
}

// SetWidth sets the header width
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetTitle sets the room title to display
func (h *Header) SetTitle(title string) {
	h.title = title
}

// SetStatus sets the connection status shown at the right edge
func (h *Header) SetStatus(status string, online bool) {
	h.status = status
	h.online = online
}

// View renders the header
func (h *Header) View() string {
	titleText := " parley"
	var rightText string
	if h.status != "" {
		rightText = h.status + " "
	}

	room := h.title
	if room != "" {
		room = "  " + room
	}
	room = truncateGraphemes(room, h.width-uniseg.StringWidth(titleText)-uniseg.StringWidth(rightText))

	left := titleText + room
	paddingLen := h.width - uniseg.StringWidth(left) - uniseg.StringWidth(rightText)
	if paddingLen < 0 {
		paddingLen = 0
	}

	return h.renderGradient(left+strings.Repeat(" ", paddingLen)+rightText, len([]rune(titleText)), len([]rune(left)))
}

// truncateGraphemes cuts s to at most width cells without splitting a
// grapheme cluster.
func truncateGraphemes(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	var sb strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if used+w > width-1 {
			break
		}
		sb.WriteString(g.Str())
		used += w
	}
	sb.WriteString("…")
	return sb.String()
}

// parseHexColor parses a hex color string (e.g., "#7C3AED") into RGB components
func parseHexColor(hex string) (r, g, b int) {
	if len(hex) == 7 && hex[0] == '#' {
		fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	}
	return
}

// renderGradient renders the content with a theme-aware gradient background.
// Runes before boldEnd are the app name; runes from statusStart on are the
// connection status.
func (h *Header) renderGradient(content string, boldEnd, statusStart int) string {
	if len(content) == 0 {
		return ""
	}

	theme := CurrentTheme()
	startR, startG, startB := parseHexColor(theme.Primary)
	endR, endG, endB := parseHexColor(theme.Bg)

	textColor := lipgloss.Color(theme.Text)
	statusColor := lipgloss.Color(theme.TextMuted)
	if !h.online {
		statusColor = lipgloss.Color(theme.Warning)
	}

	runes := []rune(content)
	width := len(runes)
	var result strings.Builder

	for i, r := range runes {
		t := float64(i) / float64(width)

		cr := int(float64(startR)*(1-t) + float64(endR)*t)
		cg := int(float64(startG)*(1-t) + float64(endG)*t)
		cb := int(float64(startB)*(1-t) + float64(endB)*t)

		bgColor := lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", cr, cg, cb))

		style := lipgloss.NewStyle().
			Background(bgColor).
			Bold(i < boldEnd)

		if i >= statusStart && r != ' ' {
			style = style.Foreground(statusColor)
		} else {
			style = style.Foreground(textColor)
		}

		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}
