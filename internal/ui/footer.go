package ui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key  string
	Desc string
}

// FlashType selects the color of a flash message
type FlashType int

const (
	FlashInfo FlashType = iota
	FlashWarning
	FlashError
)

// DefaultFlashDuration is how long a flash message stays in the footer
const DefaultFlashDuration = 4 * time.Second

// FlashMessage is a transient notice that replaces the bindings
type FlashMessage struct {
	Text      string
	Type      FlashType
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the message should no longer be shown at now
func (m *FlashMessage) IsExpired(now time.Time) bool {
	return !now.Before(m.CreatedAt.Add(m.Duration))
}

// FlashTickMsg re-checks flash expiry.
type FlashTickMsg time.Time

// FlashTick schedules the next flash expiry check.
func FlashTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return FlashTickMsg(t)
	})
}

// FooterMode selects which bindings the footer shows
type FooterMode int

const (
	FooterChat FooterMode = iota
	FooterSelecting
	FooterOverlay
	FooterMenu
	FooterSplash
)

// Footer represents the bottom footer bar with keybindings
type Footer struct {
	width        int
	mode         FooterMode
	bindings     map[FooterMode][]KeyBinding
	flashMessage *FlashMessage
	now          func() time.Time
}

// NewFooter creates a new footer
func NewFooter() *Footer {
	return &Footer{
		now: time.Now,
		bindings: map[FooterMode][]KeyBinding{
			FooterChat: {
				{Key: "enter", Desc: "send"},
				{Key: "alt+enter", Desc: "newline"},
				{Key: "ctrl+p", Desc: "preview"},
				{Key: "esc", Desc: "select"},
				{Key: "pgup/dn", Desc: "scroll"},
				{Key: "ctrl+c", Desc: "quit"},
			},
			FooterSelecting: {
				{Key: "↑/↓", Desc: "message"},
				{Key: "enter", Desc: "options"},
				{Key: "r", Desc: "reply"},
				{Key: "g", Desc: "go to quote"},
				{Key: "esc", Desc: "back"},
			},
			FooterOverlay: {
				{Key: "enter", Desc: "confirm"},
				{Key: "esc", Desc: "close"},
			},
			FooterMenu: {
				{Key: "↑/↓", Desc: "navigate"},
				{Key: "enter", Desc: "select"},
				{Key: "esc", Desc: "close"},
			},
			FooterSplash: {
				{Key: "ctrl+c", Desc: "quit"},
			},
		},
	}
}

// SetWidth sets the footer width
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetMode updates which bindings are shown
func (f *Footer) SetMode(mode FooterMode) {
	f.mode = mode
}

// Mode returns the current binding set
func (f *Footer) Mode() FooterMode {
	return f.mode
}

// SetBindings replaces the bindings shown for mode
func (f *Footer) SetBindings(mode FooterMode, bindings []KeyBinding) {
	f.bindings[mode] = bindings
}

// SetFlash shows text for DefaultFlashDuration
func (f *Footer) SetFlash(text string, typ FlashType) {
	f.SetFlashWithDuration(text, typ, DefaultFlashDuration)
}

// SetFlashWithDuration shows text for d
func (f *Footer) SetFlashWithDuration(text string, typ FlashType, d time.Duration) {
	f.flashMessage = &FlashMessage{
		Text:      text,
		Type:      typ,
		CreatedAt: f.now(),
		Duration:  d,
	}
}

// ClearFlash removes any flash message
func (f *Footer) ClearFlash() {
	f.flashMessage = nil
}

// HasFlash reports whether an unexpired flash message is set. Expired
// messages are dropped.
func (f *Footer) HasFlash() bool {
	if f.flashMessage == nil {
		return false
	}
	if f.flashMessage.IsExpired(f.now()) {
		f.flashMessage = nil
		return false
	}
	return true
}

// View renders the footer
func (f *Footer) View() string {
	if f.HasFlash() {
		style := FooterFlashStyle
		switch f.flashMessage.Type {
		case FlashWarning:
			style = style.Foreground(ColorWarning)
		case FlashError:
			style = style.Foreground(ColorError)
		}
		text := runewidth.Truncate(f.flashMessage.Text, max(f.width-2, 0), "…")
		return FooterStyle.Width(f.width).Render(style.Render(text))
	}

	var parts []string
	for _, b := range f.bindings[f.mode] {
		key := FooterKeyStyle.Render(b.Key)
		desc := FooterDescStyle.Render(": " + b.Desc)
		parts = append(parts, key+desc)
	}

	content := strings.Join(parts, "  "+lipgloss.NewStyle().Foreground(ColorBorder).Render("|")+"  ")

	return FooterStyle.Width(f.width).MaxHeight(FooterHeight).Render(content)
}
