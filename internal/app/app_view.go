package app

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/parleychat/parley/internal/ui"
)

// View renders the app. This is the core Bubble Tea view function.
func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion

	if m.width == 0 || m.height == 0 {
		v.SetContent("Loading...")
		return v
	}

	v.SetContent(m.RenderToString())
	return v
}

// RenderToString renders the current view as a string.
func (m *Model) RenderToString() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	m.syncChrome()

	view := lipgloss.JoinVertical(
		lipgloss.Left,
		m.header.View(),
		m.chat.View(),
		m.footer.View(),
	)

	w := max(m.width, ui.MinTerminalWidth)
	h := max(m.height, ui.MinTerminalHeight)

	var boxes []ui.Box
	for _, in := range m.overlays.All() {
		if box, ok := ui.RenderOverlay(in, w, h); ok {
			boxes = append(boxes, box)
		}
	}
	if len(boxes) == 0 {
		return view
	}
	return ui.Composite(view, w, h, true, boxes...)
}
