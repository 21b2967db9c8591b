package app

import (
	"fmt"
	"path"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/parleychat/parley/internal/changelog"
	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/errors"
	"github.com/parleychat/parley/internal/host"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/markup"
	"github.com/parleychat/parley/internal/overlay"
)

// Menu entries of the message context menu.
const (
	menuCopy     = "Copy"
	menuUnsend   = "Unsend"
	menuReply    = "Reply"
	menuDetails  = "Details"
	menuDownload = "Download image"
)

// quoteLabelWidth bounds the quoted text shown above the input.
const quoteLabelWidth = 60

// paragraph wraps escaped text in a paragraph.
func paragraph(text string) string {
	return "<p>" + markup.EscapeTags(text) + "</p>"
}

// showAlert displays an alert dialog, logging when another is up.
func (m *Model) showAlert(title, body string, onConfirm func()) {
	if err := m.overlays.Alert.Display(overlay.Content{Title: title, Body: body}, onConfirm); err != nil {
		logger.Error("App: alert %q: %v", title, err)
	}
}

// showAction displays an action dialog.
func (m *Model) showAction(title, body, button string, onConfirm func()) {
	if err := m.overlays.Action.Display(overlay.Content{Title: title, Body: body, Button: button}, onConfirm); err != nil {
		logger.Error("App: action %q: %v", title, err)
	}
}

// showError shows user-facing errors as alerts and logs the rest.
func (m *Model) showError(err error) {
	if err == nil {
		return
	}
	title, body, ok := chat.Notice(err)
	if !ok {
		logger.Error("App: %v", err)
		return
	}
	m.showAlert(title, paragraph(body), nil)
}

// showFatal shows an unrecoverable error; confirming quits.
func (m *Model) showFatal(err error) {
	logger.Error("App: fatal: %v", err)
	m.showAlert(chat.TitleFatal, paragraph(errors.Message(err)), func() {
		m.overlays.Alert.Hide(func() {
			m.enqueue(tea.Quit)
		})
	})
}

// openMenu shows the context menu for key.
func (m *Model) openMenu(key string) {
	if _, ok := m.room.Message(key); !ok {
		return
	}
	items := []string{menuCopy, menuUnsend, menuReply, menuDetails}
	if len(m.room.Images(key)) > 0 {
		items = append(items, menuDownload)
	}
	m.menuKey = key
	menu := m.overlays.Menu
	err := menu.Display(overlay.Content{Title: "Message", Items: items}, func() {
		item := menu.Selected()
		menu.Hide(func() {
			m.menuAction(item, key)
		})
	})
	if err != nil {
		logger.Error("App: menu: %v", err)
	}
}

// menuAction runs a menu entry once the menu has closed.
func (m *Model) menuAction(item, key string) {
	logger.Debug("App: menu %q on %s", item, key)
	switch item {
	case menuCopy:
		text, err := m.room.CopyText(key)
		if err != nil {
			m.showError(err)
			return
		}
		m.copyText(text)
	case menuUnsend:
		m.retract(key)
	case menuReply:
		m.reply(key)
	case menuDetails:
		m.showDetails(key)
	case menuDownload:
		if imgs := m.room.Images(key); len(imgs) > 0 {
			m.confirmDownload(imgs[0])
		}
	}
}

// copyText puts text on the clipboard through the bridge, falling back to
// the terminal.
func (m *Model) copyText(text string) {
	if m.bridge != nil {
		err := m.bridge.CopyText(text)
		if err == nil {
			m.enqueue(m.ShowFlashInfo("Copied to clipboard"))
			return
		}
		logger.Warn("App: bridge copy failed: %v", err)
	}
	if m.osc52 {
		m.enqueue(tea.SetClipboard(text))
		m.enqueue(m.ShowFlashInfo("Copied to clipboard"))
		return
	}
	m.showAlert("Oops!", paragraph("Copy text to clipboard failed"), nil)
}

// reply quotes key in the next message.
func (m *Model) reply(key string) {
	if err := m.room.Quote(key); err != nil {
		m.showError(err)
		return
	}
	m.syncQuote()
	m.refreshPreview()
	m.chat.Select("")
	m.enqueue(m.chat.SetFocused(true))
}

// syncQuote mirrors the room's pending quote into the indicator.
func (m *Model) syncQuote() {
	key := m.room.QuoteKey()
	if key == "" {
		m.chat.SetQuote("")
		return
	}
	msg, ok := m.room.Message(key)
	if !ok {
		m.chat.SetQuote("")
		return
	}
	who := msg.Record.SenderID
	if msg.FromMe {
		who = "You"
	}
	text, _ := m.room.CopyText(key)
	m.chat.SetQuote(ansi.Truncate(who+": "+firstLine(text), quoteLabelWidth, "…"))
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// refreshPreview re-renders the preview from the input.
func (m *Model) refreshPreview() {
	if m.chat.PreviewOn() {
		m.chat.SetPreview(m.room.Preview(m.chat.InputValue()))
	}
}

// showDetails shows the details dialog; its button opens the raw data.
func (m *Model) showDetails(key string) {
	d, err := m.room.Details(key)
	if err != nil {
		m.showError(err)
		return
	}
	action := m.overlays.Action
	m.showAction("Details", d.Summary(), "Advanced", func() {
		action.Hide(func() {
			m.showAlert("Advanced", d.Advanced(), nil)
		})
	})
}

// confirmDownload asks before saving img.
func (m *Model) confirmDownload(img markup.Image) {
	label := img.Alt
	if label == "" {
		label = path.Base(img.Src)
	}
	action := m.overlays.Action
	m.showAction("Download image", paragraph(fmt.Sprintf("Save %q to your downloads?", label)), "Download", func() {
		action.Hide(func() {
			name := host.DownloadName(img.Alt, host.AppName, m.sched.Now())
			m.download(img.Src, name)
		})
	})
}

// download saves src through the bridge or a plain fetch.
func (m *Model) download(src, name string) {
	bridge, client, dir, ctx := m.bridge, m.client, m.cfg.GetDownloadDir(), m.ctx
	if bridge == nil {
		m.enqueue(m.ShowFlashInfo("Downloading " + name))
	}
	m.enqueue(func() tea.Msg {
		var (
			p   string
			err error
		)
		if bridge != nil {
			p, err = bridge.Download(ctx, src, name)
		} else {
			p, err = host.Fetch(ctx, client, src, dir, name)
		}
		return downloadedMsg{src: src, path: p, err: err}
	})
}

func (m *Model) handleDownloaded(msg downloadedMsg) tea.Cmd {
	if msg.err != nil {
		logger.Error("App: download %s: %v", msg.src, msg.err)
		m.showAlert("Download failed", "<p>Could not download <code>"+markup.EscapeTags(msg.src)+"</code></p>", nil)
		return nil
	}
	return m.ShowFlashInfo("Saved to " + msg.path)
}

// checkUpdate asks the bridge for a newer release.
func (m *Model) checkUpdate() tea.Cmd {
	bridge, ctx, current := m.bridge, m.ctx, m.version
	return func() tea.Msg {
		rel, newer, err := bridge.CheckUpdate(ctx, current)
		return updateMsg{release: rel, newer: newer, err: err}
	}
}

func (m *Model) handleUpdate(msg updateMsg) tea.Cmd {
	if msg.err != nil {
		logger.Warn("App: update check failed: %v", msg.err)
		return nil
	}
	if !msg.newer {
		return nil
	}
	rel := msg.release
	action := m.overlays.Action
	m.showAction("Update available", paragraph(fmt.Sprintf("Version %s is available. You are running %s.", rel.Version, m.version)), "Download", func() {
		action.Hide(func() {
			m.download(rel.URL, path.Base(rel.URL))
		})
	})
	return nil
}

// showWhatsNew shows the release notes added since the last version the
// user ran. Dev builds and first runs only record the version.
func (m *Model) showWhatsNew() {
	if m.version == "" || m.version == "dev" {
		return
	}
	lastSeen := m.cfg.GetLastSeenVersion()
	if lastSeen == m.version {
		return
	}
	m.cfg.SetLastSeenVersion(m.version)
	if m.cfg.Path() != "" {
		if err := m.cfg.Save(); err != nil {
			logger.Warn("App: saving last seen version: %v", err)
		}
	}
	if lastSeen == "" {
		return
	}

	changes := changelog.GetChangesSince(lastSeen, changelog.Parse(changelog.Content))
	if len(changes) == 0 {
		return
	}
	logger.Info("App: showing release notes (%s -> %s, %d entries)", lastSeen, m.version, len(changes))
	m.showAlert("What's new", changelog.HTML(changes), nil)
}
