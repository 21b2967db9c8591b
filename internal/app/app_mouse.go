package app

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/overlay"
	"github.com/parleychat/parley/internal/sched"
	"github.com/parleychat/parley/internal/ui"
)

// Long-press thresholds.
const (
	// PressDelay is when a held bubble starts rendering pressed.
	PressDelay = 200 * time.Millisecond

	// LongPressDelay opens the context menu or the image download.
	LongPressDelay = 600 * time.Millisecond

	// LinkPressDelay copies the link under the pointer.
	LinkPressDelay = 500 * time.Millisecond
)

// press is a pointer held down on a bubble.
type press struct {
	hit     ui.Hit
	x, y    int
	pressed *sched.Task
	long    *sched.Task
	fired   bool // the long-press action ran; release is not a click
}

func (p *press) cancel() {
	p.pressed.Cancel()
	p.long.Cancel()
}

// handleMouse routes pointer events to the top overlay or the gesture
// tracker.
func (m *Model) handleMouse(msg tea.Msg) tea.Cmd {
	if top := m.overlays.Top(); top != nil {
		switch msg := msg.(type) {
		case tea.MouseClickMsg:
			if msg.Button == tea.MouseLeft {
				m.handleOverlayClick(top, msg.X, msg.Y)
			}
		case tea.MouseReleaseMsg:
			// The gesture that opened the overlay ends here; it is not a click.
			m.cancelPress()
		}
		return nil
	}
	if m.overlays.Register.IsOpen() {
		return nil
	}

	switch msg := msg.(type) {
	case tea.MouseClickMsg:
		if msg.Button != tea.MouseLeft {
			return nil
		}
		adjusted := m.adjustMouseClickMsg(msg)
		m.startPress(adjusted.X, adjusted.Y)

	case tea.MouseMotionMsg:
		if m.press == nil {
			return nil
		}
		adjusted := m.adjustMouseMotionMsg(msg)
		if adjusted.X != m.press.x || adjusted.Y != m.press.y {
			m.cancelPress()
		}

	case tea.MouseReleaseMsg:
		m.endPress()

	case tea.MouseWheelMsg:
		m.cancelPress()
		panel, cmd := m.chat.Update(msg)
		m.chat = panel
		return cmd
	}
	return nil
}

// adjustMouseClickMsg moves a click into chat panel coordinates.
func (m *Model) adjustMouseClickMsg(msg tea.MouseClickMsg) tea.MouseClickMsg {
	return tea.MouseClickMsg{
		X:      msg.X,
		Y:      msg.Y - ui.HeaderHeight,
		Button: msg.Button,
		Mod:    msg.Mod,
	}
}

// adjustMouseMotionMsg moves motion into chat panel coordinates.
func (m *Model) adjustMouseMotionMsg(msg tea.MouseMotionMsg) tea.MouseMotionMsg {
	return tea.MouseMotionMsg{
		X:      msg.X,
		Y:      msg.Y - ui.HeaderHeight,
		Button: msg.Button,
		Mod:    msg.Mod,
	}
}

// startPress arms the press timers for the bubble under x, y.
func (m *Model) startPress(x, y int) {
	m.cancelPress()
	hit, ok := m.chat.HitTest(x, y)
	if !ok {
		return
	}

	p := &press{hit: hit, x: x, y: y}
	m.press = p
	key := hit.Key

	p.pressed = m.sched.After(PressDelay, func() {
		m.chat.SetPressed(key)
	})

	switch line := hit.Line; {
	case len(line.Images) > 0:
		img := line.Images[0]
		p.long = m.sched.After(LongPressDelay, func() {
			p.fired = true
			m.chat.SetPressed("")
			m.confirmDownload(img)
		})
	case len(line.Links) > 0:
		link := line.Links[0]
		p.long = m.sched.After(LinkPressDelay, func() {
			p.fired = true
			m.chat.SetPressed("")
			logger.Debug("App: long press copies link %s", link)
			m.copyText(link)
		})
	default:
		p.long = m.sched.After(LongPressDelay, func() {
			p.fired = true
			m.chat.SetPressed("")
			m.openMenu(key)
		})
	}
}

// cancelPress drops the held press without acting.
func (m *Model) cancelPress() {
	if m.press == nil {
		return
	}
	m.press.cancel()
	m.press = nil
	m.chat.SetPressed("")
}

// endPress finishes a press; a release before the long-press threshold
// is a click, which follows a quote under the pointer.
func (m *Model) endPress() {
	p := m.press
	if p == nil {
		return
	}
	m.cancelPress()
	if p.fired {
		return
	}
	if q := p.hit.Line.QuoteKey; q != "" {
		m.followQuote(q)
	}
}

// handleOverlayClick resolves a click against the top overlay.
func (m *Model) handleOverlayClick(top *overlay.Instance, x, y int) {
	box, ok := ui.RenderOverlay(top, max(m.width, ui.MinTerminalWidth), max(m.height, ui.MinTerminalHeight))
	if !ok {
		return
	}
	target, idx := ui.OverlayHit(top, box, x, y)
	switch target {
	case ui.TargetConfirm:
		top.Confirm()
	case ui.TargetCancel:
		top.Cancel()
	case ui.TargetItem:
		top.SetCursor(idx)
		top.Confirm()
	case ui.TargetOutside:
		if top.Kind() == overlay.KindMenu || top.Kind() == overlay.KindAlert {
			top.Cancel()
		}
	}
}
