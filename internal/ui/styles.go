package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Color palette, regenerated from the current theme.
var (
	ColorPrimary     color.Color
	ColorSecondary   color.Color
	ColorBorder      color.Color
	ColorBorderFocus color.Color
	ColorBg          color.Color
	ColorBgSelected  color.Color
	ColorBgPressed   color.Color
	ColorText        color.Color
	ColorTextMuted   color.Color
	ColorTextInverse color.Color
	ColorMine        color.Color
	ColorTheirs      color.Color
	ColorWarning     color.Color
	ColorInfo        color.Color
	ColorError       color.Color
	ColorHighlight   color.Color
)

// Header styles
var HeaderTitleStyle lipgloss.Style

// Footer styles
var (
	FooterStyle      lipgloss.Style
	FooterKeyStyle   lipgloss.Style
	FooterDescStyle  lipgloss.Style
	FooterFlashStyle lipgloss.Style
)

// Chat styles
var (
	BannerStyle             lipgloss.Style
	BubbleMineStyle         lipgloss.Style
	BubbleTheirsStyle       lipgloss.Style
	BubbleLabelStyle        lipgloss.Style
	BubblePendingStyle      lipgloss.Style
	ChatInputStyle          lipgloss.Style
	ChatInputFocusedStyle   lipgloss.Style
	PreviewTitleStyle       lipgloss.Style
	PreviewPlaceholderStyle lipgloss.Style
	QuoteIndicatorStyle     lipgloss.Style
)

// Modal styles
var (
	ModalStyle                lipgloss.Style
	ModalClosingStyle         lipgloss.Style
	ModalTitleStyle           lipgloss.Style
	ModalHelpStyle            lipgloss.Style
	ModalButtonStyle          lipgloss.Style
	ModalSecondaryButtonStyle lipgloss.Style
	MenuItemStyle             lipgloss.Style
	MenuSelectedStyle         lipgloss.Style
	SplashTitleStyle          lipgloss.Style
)

// Status styles
var (
	StatusOnlineStyle  lipgloss.Style
	StatusOfflineStyle lipgloss.Style
)
