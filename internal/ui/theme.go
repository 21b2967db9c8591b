package ui

import (
	"charm.land/lipgloss/v2"

	"github.com/parleychat/parley/internal/markup"
)

// Theme defines a complete color palette for the application.
// Each theme provides colors for all UI elements, ensuring visual consistency.
type Theme struct {
	// Name is the display name of the theme
	Name string

	// Primary is the main accent color (used for focus, highlights, headers)
	Primary string
	// Secondary is the secondary accent color (used for key hints, links)
	Secondary string

	// Background colors
	Bg         string // Main background
	BgSelected string // Selected item background (defaults to Primary if empty)
	BgPressed  string // Bubble under a held press

	// Text colors
	Text        string // Primary text
	TextMuted   string // Secondary/muted text
	TextInverse string // Text on colored backgrounds

	// Bubble borders
	Mine   string // Messages sent by the local user
	Theirs string // Messages from everyone else

	// Semantic colors
	Warning   string // Alerts, followed-quote highlight
	Error     string // Error messages
	Info      string // Information
	Highlight string // Border of a bubble reached through a quote

	// Border colors
	Border      string // Default borders
	BorderFocus string // Focused element borders (defaults to Primary if empty)

	// Markdown colors
	MarkdownHeading string // Headings
	MarkdownCode    string // Inline code
	MarkdownLink    string // Links
	MarkdownQuote   string // Quote gutter
	CodeStyle       string // chroma style for fenced code
}

// GetBgSelected returns the selected background color, defaulting to Primary
func (t Theme) GetBgSelected() string {
	if t.BgSelected != "" {
		return t.BgSelected
	}
	return t.Primary
}

// GetBorderFocus returns the focused border color, defaulting to Primary
func (t Theme) GetBorderFocus() string {
	if t.BorderFocus != "" {
		return t.BorderFocus
	}
	return t.Primary
}

// ThemeName is a type for theme identifiers
type ThemeName string

// Available theme names
const (
	ThemeDarkPurple ThemeName = "dark-purple"
	ThemeNord       ThemeName = "nord"
	ThemeDracula    ThemeName = "dracula"
	ThemeLight      ThemeName = "light"
)

// DefaultTheme is the default theme name
const DefaultTheme = ThemeDarkPurple

// BuiltinThemes contains all built-in themes
var BuiltinThemes = map[ThemeName]Theme{
	ThemeDarkPurple: {
		Name:            "Dark Purple",
		Primary:         "#7C3AED",
		Secondary:       "#06B6D4",
		Bg:              "#1F2937",
		BgPressed:       "#312E81",
		Text:            "#F9FAFB",
		TextMuted:       "#9CA3AF",
		TextInverse:     "#1F2937",
		Mine:            "#A78BFA",
		Theirs:          "#22D3EE",
		Warning:         "#F59E0B",
		Error:           "#EF4444",
		Info:            "#06B6D4",
		Highlight:       "#FBBF24",
		Border:          "#374151",
		MarkdownHeading: "#A78BFA",
		MarkdownCode:    "#67E8F9",
		MarkdownLink:    "#67E8F9",
		MarkdownQuote:   "#6B7280",
		CodeStyle:       "monokai",
	},
	ThemeNord: {
		Name:            "Nord",
		Primary:         "#88C0D0",
		Secondary:       "#81A1C1",
		Bg:              "#2E3440",
		BgPressed:       "#3B4252",
		Text:            "#ECEFF4",
		TextMuted:       "#D8DEE9",
		TextInverse:     "#2E3440",
		Mine:            "#A3BE8C",
		Theirs:          "#88C0D0",
		Warning:         "#EBCB8B",
		Error:           "#BF616A",
		Info:            "#81A1C1",
		Highlight:       "#EBCB8B",
		Border:          "#4C566A",
		MarkdownHeading: "#88C0D0",
		MarkdownCode:    "#A3BE8C",
		MarkdownLink:    "#88C0D0",
		MarkdownQuote:   "#4C566A",
		CodeStyle:       "nord",
	},
	ThemeDracula: {
		Name:            "Dracula",
		Primary:         "#BD93F9",
		Secondary:       "#8BE9FD",
		Bg:              "#282A36",
		BgPressed:       "#44475A",
		Text:            "#F8F8F2",
		TextMuted:       "#6272A4",
		TextInverse:     "#282A36",
		Mine:            "#FF79C6",
		Theirs:          "#8BE9FD",
		Warning:         "#FFB86C",
		Error:           "#FF5555",
		Info:            "#8BE9FD",
		Highlight:       "#F1FA8C",
		Border:          "#44475A",
		MarkdownHeading: "#BD93F9",
		MarkdownCode:    "#50FA7B",
		MarkdownLink:    "#8BE9FD",
		MarkdownQuote:   "#6272A4",
		CodeStyle:       "dracula",
	},
	ThemeLight: {
		Name:            "Light",
		Primary:         "#6366F1",
		Secondary:       "#0891B2",
		Bg:              "#FFFFFF",
		BgSelected:      "#E0E7FF",
		BgPressed:       "#E0E7FF",
		Text:            "#1F2937",
		TextMuted:       "#6B7280",
		TextInverse:     "#FFFFFF",
		Mine:            "#7C3AED",
		Theirs:          "#0891B2",
		Warning:         "#D97706",
		Error:           "#DC2626",
		Info:            "#0891B2",
		Highlight:       "#D97706",
		Border:          "#D1D5DB",
		BorderFocus:     "#6366F1",
		MarkdownHeading: "#6366F1",
		MarkdownCode:    "#059669",
		MarkdownLink:    "#0891B2",
		MarkdownQuote:   "#9CA3AF",
		CodeStyle:       "github",
	},
}

// ThemeNames returns a list of all available theme names in display order
func ThemeNames() []ThemeName {
	return []ThemeName{
		ThemeDarkPurple,
		ThemeNord,
		ThemeDracula,
		ThemeLight,
	}
}

// GetTheme returns a theme by name, defaulting to DarkPurple if not found
func GetTheme(name ThemeName) Theme {
	if theme, ok := BuiltinThemes[name]; ok {
		return theme
	}
	return BuiltinThemes[DefaultTheme]
}

// currentTheme holds the active theme
var currentTheme = BuiltinThemes[DefaultTheme]

// CurrentTheme returns the currently active theme
func CurrentTheme() Theme {
	return currentTheme
}

// SetTheme sets the active theme and regenerates all styles
func SetTheme(name ThemeName) {
	currentTheme = GetTheme(name)
	regenerateStyles()
}

// SetThemeByName sets the active theme by string name
func SetThemeByName(name string) {
	SetTheme(ThemeName(name))
}

// CurrentThemeName returns the name of the current theme
func CurrentThemeName() ThemeName {
	for name, theme := range BuiltinThemes {
		if theme.Name == currentTheme.Name {
			return name
		}
	}
	return DefaultTheme
}

// MarkupTheme returns the colors message bodies are rendered with.
func MarkupTheme() markup.Theme {
	t := currentTheme
	return markup.Theme{
		Link:      lipgloss.Color(t.MarkdownLink),
		Code:      lipgloss.Color(t.MarkdownCode),
		Heading:   lipgloss.Color(t.MarkdownHeading),
		Quote:     lipgloss.Color(t.MarkdownQuote),
		Muted:     lipgloss.Color(t.TextMuted),
		CodeStyle: t.CodeStyle,
	}
}

// regenerateStyles updates all style variables based on the current theme
func regenerateStyles() {
	t := currentTheme

	// Update color variables
	ColorPrimary = lipgloss.Color(t.Primary)
	ColorSecondary = lipgloss.Color(t.Secondary)
	ColorBorder = lipgloss.Color(t.Border)
	ColorBorderFocus = lipgloss.Color(t.GetBorderFocus())
	ColorBg = lipgloss.Color(t.Bg)
	ColorBgSelected = lipgloss.Color(t.GetBgSelected())
	ColorBgPressed = lipgloss.Color(t.BgPressed)
	ColorText = lipgloss.Color(t.Text)
	ColorTextMuted = lipgloss.Color(t.TextMuted)
	ColorTextInverse = lipgloss.Color(t.TextInverse)
	ColorMine = lipgloss.Color(t.Mine)
	ColorTheirs = lipgloss.Color(t.Theirs)
	ColorWarning = lipgloss.Color(t.Warning)
	ColorInfo = lipgloss.Color(t.Info)
	ColorError = lipgloss.Color(t.Error)
	ColorHighlight = lipgloss.Color(t.Highlight)

	// Update header styles
	HeaderTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText)

	// Update footer styles
	FooterStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Padding(0, 1)

	FooterKeyStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSecondary)

	FooterDescStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	FooterFlashStyle = lipgloss.NewStyle().
		Foreground(ColorInfo).
		Italic(true)

	// Update chat styles
	BannerStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Italic(true).
		Align(lipgloss.Center)

	BubbleMineStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorMine).
		Padding(0, 1)

	BubbleTheirsStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTheirs).
		Padding(0, 1)

	BubbleLabelStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Bold(true)

	BubblePendingStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Italic(true)

	ChatInputStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	ChatInputFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorderFocus).
		Padding(0, 1)

	PreviewTitleStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true)

	PreviewPlaceholderStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Italic(true)

	QuoteIndicatorStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Italic(true)

	// Update modal styles
	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)

	ModalClosingStyle = ModalStyle.
		BorderForeground(ColorBorder)

	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Italic(true)

	ModalButtonStyle = lipgloss.NewStyle().
		Padding(0, 2).
		Foreground(ColorTextInverse).
		Background(ColorPrimary)

	ModalSecondaryButtonStyle = lipgloss.NewStyle().
		Padding(0, 2).
		Foreground(ColorTextMuted)

	MenuItemStyle = lipgloss.NewStyle().
		Foreground(ColorText).
		PaddingLeft(2)

	MenuSelectedStyle = lipgloss.NewStyle().
		Foreground(ColorText).
		Background(ColorBgSelected).
		Bold(true).
		PaddingLeft(2)

	SplashTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	// Update status styles
	StatusOnlineStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)

	StatusOfflineStyle = lipgloss.NewStyle().
		Foreground(ColorWarning).
		Italic(true)
}

func init() {
	regenerateStyles()
}
