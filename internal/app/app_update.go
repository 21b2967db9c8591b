package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/parleychat/parley/internal/keys"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/markup"
	"github.com/parleychat/parley/internal/overlay"
	"github.com/parleychat/parley/internal/ui"
)

// handleKey routes a key press to the top overlay, the message selection
// or the compose box.
func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if key == keys.CtrlC {
		return tea.Quit
	}

	if top := m.overlays.Top(); top != nil {
		m.handleOverlayKey(top, key)
		return nil
	}
	if m.overlays.Register.IsOpen() {
		// An overlay is animating in; swallow input until it shows.
		return nil
	}

	if m.chat.Selected() != "" {
		return m.handleSelectionKey(msg, key)
	}
	return m.handleComposeKey(msg, key)
}

func (m *Model) handleOverlayKey(top *overlay.Instance, key string) {
	if top.Kind() == overlay.KindSplash {
		return
	}
	switch key {
	case keys.Escape:
		top.Cancel()
	case keys.Enter:
		top.Confirm()
	case keys.Up, keys.ShiftTab:
		top.MoveCursor(-1)
	case keys.Down, keys.Tab:
		top.MoveCursor(1)
	}
}

func (m *Model) handleSelectionKey(msg tea.KeyPressMsg, key string) tea.Cmd {
	selected := m.chat.Selected()
	switch key {
	case keys.Escape:
		m.chat.Select("")
		return m.chat.SetFocused(true)
	case keys.Up, keys.CtrlUp:
		m.chat.SelectPrev()
	case keys.Down, keys.CtrlDown:
		m.chat.SelectNext()
	case keys.Enter:
		m.openMenu(selected)
	case "c":
		m.menuAction(menuCopy, selected)
	case "u":
		m.menuAction(menuUnsend, selected)
	case "r":
		m.menuAction(menuReply, selected)
	case "i":
		m.menuAction(menuDetails, selected)
	case "g":
		m.followFirstQuote(selected)
	case keys.PgUp, keys.PgDown, keys.Home, keys.End:
		panel, cmd := m.chat.Update(msg)
		m.chat = panel
		return cmd
	}
	return nil
}

// followFirstQuote jumps to the first message quoted by key.
func (m *Model) followFirstQuote(key string) {
	msg, ok := m.room.Message(key)
	if !ok {
		return
	}
	quoted := markup.QuotedKeys(msg.HTML)
	if len(quoted) == 0 {
		m.enqueue(m.ShowFlashInfo("This message quotes nothing"))
		return
	}
	m.followQuote(quoted[0])
}

// followQuote scrolls to and highlights the quoted original.
func (m *Model) followQuote(key string) {
	if !m.room.FollowQuote(key) {
		m.enqueue(m.ShowFlashInfo("The quoted message is no longer available"))
	}
}

func (m *Model) handleComposeKey(msg tea.KeyPressMsg, key string) tea.Cmd {
	switch key {
	case keys.Enter:
		return m.send()
	case keys.CtrlUp:
		m.chat.SelectPrev()
		if m.chat.Selected() != "" {
			m.chat.SetFocused(false)
		}
		return nil
	case keys.Escape:
		if m.room.QuoteKey() != "" {
			m.room.ClearQuote()
			m.syncQuote()
			m.refreshPreview()
			return nil
		}
		m.chat.SelectPrev()
		if m.chat.Selected() != "" {
			m.chat.SetFocused(false)
		}
		return nil
	case keys.CtrlP:
		m.chat.TogglePreview()
		m.refreshPreview()
		return nil
	case keys.CtrlT:
		m.cycleTheme()
		return nil
	case keys.Backspace, keys.Delete:
		if m.chat.InputValue() == "" && m.room.QuoteKey() != "" {
			m.room.ClearQuote()
			m.syncQuote()
			m.refreshPreview()
			return nil
		}
	}

	panel, cmd := m.chat.Update(msg)
	m.chat = panel
	m.refreshPreview()
	return cmd
}

// cycleTheme switches to the next built-in theme and saves it.
func (m *Model) cycleTheme() {
	names := ui.ThemeNames()
	current := ui.CurrentThemeName()
	next := names[0]
	for i, n := range names {
		if n == current {
			next = names[(i+1)%len(names)]
			break
		}
	}
	ui.SetTheme(next)
	m.cfg.SetTheme(string(next))
	if m.cfg.Path() != "" {
		if err := m.cfg.Save(); err != nil {
			logger.Warn("App: saving theme: %v", err)
		}
	}
	m.layout()
	m.enqueue(m.ShowFlashInfo("Theme: " + ui.CurrentTheme().Name))
}
