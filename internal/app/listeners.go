package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/errors"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/notification"
	"github.com/parleychat/parley/internal/remote"
	"github.com/parleychat/parley/internal/ui"
)

// subscribe opens the room's remote log.
func (m *Model) subscribe() tea.Cmd {
	log, ctx := m.log, m.ctx
	return func() tea.Msg {
		events, err := log.Subscribe(ctx)
		return subscribedMsg{events: events, err: err}
	}
}

// listen waits for the next notification on the current subscription.
func (m *Model) listen() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return feedClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

func (m *Model) handleSubscribed(msg subscribedMsg) tea.Cmd {
	m.overlays.Splash.Hide(m.overlays.HoldRegister)
	if msg.err != nil {
		m.header.SetStatus("offline", false)
		m.showError(m.room.SubscriptionFailed(msg.err))
		return nil
	}

	m.events = msg.events
	m.subscribed = true
	m.subscribedAt = m.sched.Now()
	if m.offline {
		m.header.SetStatus("local", true)
	} else {
		m.header.SetStatus("online", true)
	}
	logger.Info("App: subscribed to %s", m.room.ID())
	m.showWhatsNew()
	return m.listen()
}

func (m *Model) handleEvent(ev remote.Event) tea.Cmd {
	switch ev.Kind {
	case remote.EventAdded:
		away := !m.chat.NearBottom()
		m.room.Added(ev.Record)
		m.notifyIncoming(ev.Record, away)
	case remote.EventRemoved:
		m.room.Removed(ev.Record)
		m.syncQuote()
	case remote.EventError:
		err := m.room.SubscriptionFailed(ev.Err)
		if _, _, ok := chat.Notice(err); ok {
			m.showError(err)
		} else {
			m.enqueue(m.ShowFlashError("Connection problem: " + errors.Message(err)))
		}
	}
	return m.listen()
}

// notifyIncoming raises a desktop notification for a live message from
// someone else that arrived while the reader was scrolled away.
func (m *Model) notifyIncoming(rec remote.Record, away bool) {
	if !away || !m.cfg.GetNotificationsEnabled() || rec.SenderID == m.room.UserID() {
		return
	}
	if rec.SentAt.Time().Before(m.subscribedAt) {
		return
	}
	title, sender := m.room.Title(), rec.SenderID
	m.enqueue(func() tea.Msg {
		_ = notification.MessageReceived(title, sender)
		return nil
	})
}

// send composes the input and submits it.
func (m *Model) send() tea.Cmd {
	out, err := m.room.Compose(m.chat.InputValue())
	if err == chat.ErrEmpty {
		m.chat.ClearInput()
		m.refreshPreview()
		return nil
	}
	if err != nil {
		m.showError(err)
		return nil
	}

	m.chat.ClearInput()
	m.syncQuote()
	m.refreshPreview()

	if m.log == nil {
		return func() tea.Msg {
			return sentMsg{out: out, err: errors.E(errors.Op("app.send"), errors.KindInvalidState, "not connected")}
		}
	}
	log, ctx := m.log, m.ctx
	return func() tea.Msg {
		return sentMsg{out: out, err: log.Create(ctx, out.Record)}
	}
}

func (m *Model) handleSent(msg sentMsg) tea.Cmd {
	if msg.err == nil {
		m.room.Sent(msg.out)
		return nil
	}
	err := m.room.SendFailed(msg.out, msg.err)
	m.syncQuote()
	m.refreshPreview()
	if _, _, ok := chat.Notice(err); ok {
		m.showError(err)
		return nil
	}
	return m.ShowFlashError("Message not sent")
}

// retract deletes key after the retraction rules allow it.
func (m *Model) retract(key string) {
	if err := m.room.CheckRetract(key); err != nil {
		m.showError(err)
		return
	}
	if m.log == nil {
		return
	}
	log, ctx := m.log, m.ctx
	m.enqueue(func() tea.Msg {
		return deletedMsg{key: key, err: log.Delete(ctx, key)}
	})
}

func (m *Model) handleDeleted(msg deletedMsg) tea.Cmd {
	if msg.err == nil {
		logger.Debug("App: retracted %s", msg.key)
		return nil
	}
	err := m.room.RetractFailed(msg.key, msg.err)
	if _, _, ok := chat.Notice(err); ok {
		m.showError(err)
		return nil
	}
	return m.ShowFlash("Message not unsent", ui.FlashError)
}
