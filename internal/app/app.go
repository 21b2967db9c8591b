// Package app is the Bubble Tea program of the chat client. It owns the
// single event loop every state change runs on: remote notifications,
// submit results, scheduler wake-ups, keys and mouse gestures all arrive
// here as tea messages and are routed to the room view-model, the overlay
// set or the chat panel.
package app

import (
	"context"
	"net/http"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/benbjohnson/clock"

	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/errors"
	"github.com/parleychat/parley/internal/host"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/overlay"
	"github.com/parleychat/parley/internal/remote"
	"github.com/parleychat/parley/internal/sched"
	"github.com/parleychat/parley/internal/ui"
)

// Options configures a Model.
type Options struct {
	Config  *config.Config
	Version string
	Room    string
	UserID  string

	// Log is the room's remote log. It may be nil when StartupErr is set.
	Log remote.Log

	// Bridge is the desktop bridge, nil in a bare terminal.
	Bridge host.Bridge

	// TerminalClipboard enables copying through the terminal's OSC 52
	// escape when no bridge is present or the bridge fails.
	TerminalClipboard bool

	// Offline marks a local in-memory log.
	Offline bool

	// StartupErr is shown as a fatal error dialog on start.
	StartupErr error

	Clock      clock.Clock
	HTTPClient *http.Client
}

// Model is the main Bubble Tea model
type Model struct {
	cfg     *config.Config
	version string

	header *ui.Header
	footer *ui.Footer
	chat   *ui.Chat

	sched    *sched.Scheduler
	overlays *overlay.Set
	room     *chat.Room
	log      remote.Log
	bridge   host.Bridge
	client   *http.Client

	ctx    context.Context
	cancel context.CancelFunc

	events       <-chan remote.Event
	subscribed   bool
	subscribedAt time.Time
	offline      bool
	osc52        bool
	startupErr   error

	width  int
	height int

	press   *press
	menuKey string

	// cmds queued by overlay and timer callbacks, flushed after Update
	pending []tea.Cmd
	wakeAt  time.Time
}

// Message types delivered to Update.
type (
	// subscribedMsg carries the result of subscribing to the log.
	subscribedMsg struct {
		events <-chan remote.Event
		err    error
	}

	// eventMsg is one remote notification.
	eventMsg struct{ event remote.Event }

	// feedClosedMsg reports the end of the subscription.
	feedClosedMsg struct{}

	// sentMsg reports the result of submitting a composed message.
	sentMsg struct {
		out chat.Outgoing
		err error
	}

	// deletedMsg reports the result of a retraction.
	deletedMsg struct {
		key string
		err error
	}

	// downloadedMsg reports the result of an image or update download.
	downloadedMsg struct {
		src  string
		path string
		err  error
	}

	// updateMsg carries the result of the startup update check.
	updateMsg struct {
		release host.Release
		newer   bool
		err     error
	}

	// wakeMsg fires when the earliest scheduled task is due.
	wakeMsg time.Time
)

// clockKeys issues push keys when there is no log to ask.
type clockKeys struct {
	gen   *remote.KeyGen
	clock clock.Clock
}

func (k clockKeys) NewKey() string { return k.gen.Next(k.clock.Now()) }

// New creates a new app model
func New(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	if savedTheme := cfg.GetTheme(); savedTheme != "" {
		ui.SetThemeByName(savedTheme)
	}

	c := opts.Clock
	if c == nil {
		c = clock.New()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	s := sched.New(c)
	reg := overlay.NewRegister()
	reg.SetAnimationDuration(cfg.AnimationDuration())

	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		cfg:        cfg,
		version:    opts.Version,
		header:     ui.NewHeader(),
		footer:     ui.NewFooter(),
		chat:       ui.NewChat(),
		sched:      s,
		overlays:   overlay.NewSet(reg, s),
		log:        opts.Log,
		bridge:     opts.Bridge,
		client:     client,
		ctx:        ctx,
		cancel:     cancel,
		offline:    opts.Offline,
		osc52:      opts.TerminalClipboard,
		startupErr: opts.StartupErr,
	}

	var keys chat.KeySource = opts.Log
	if keys == nil {
		keys = clockKeys{gen: remote.NewKeyGen(), clock: c}
	}
	m.room = chat.NewRoom(opts.Room, opts.UserID, keys, s, m.chat)

	m.header.SetTitle(m.room.Title())
	m.header.SetStatus("connecting…", false)
	m.chat.SetFocused(true)

	logger.Info("App: room=%s uid=%s bridge=%v offline=%v", opts.Room, opts.UserID, opts.Bridge != nil, opts.Offline)
	return m
}

// Init starts the subscription and the update check.
func (m *Model) Init() tea.Cmd {
	if m.startupErr != nil {
		err := m.startupErr
		if errors.IsPermissionText(err) {
			// The relay refuses the join at connect time.
			err = m.room.SubscriptionFailed(err)
		}
		m.showFatal(err)
		return tea.Batch(m.flush()...)
	}

	cmds := []tea.Cmd{m.chat.SetFocused(true)}
	if err := m.overlays.Splash.Display(overlay.Content{
		Title: "parley",
		Body:  "<p>Connecting to <b>" + m.room.Title() + "</b>…</p>",
	}, nil); err != nil {
		logger.Error("App: splash: %v", err)
	}
	if m.log != nil {
		cmds = append(cmds, m.subscribe())
	}
	if m.bridge != nil {
		cmds = append(cmds, m.checkUpdate())
	}
	cmds = append(cmds, m.flush()...)
	return tea.Batch(cmds...)
}

// Close stops background work and closes the log.
func (m *Model) Close() error {
	m.cancel()
	if m.log != nil {
		return m.log.Close()
	}
	return nil
}

// Update routes msg and flushes the work its handlers queued.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.update(msg)}
	cmds = append(cmds, m.flush()...)
	m.syncChrome()
	return m, tea.Batch(cmds...)
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return nil

	case wakeMsg:
		m.wakeAt = time.Time{}
		if n := m.sched.RunDue(); n > 0 {
			logger.Debug("App: ran %d scheduled tasks", n)
		}
		return nil

	case ui.FlashTickMsg:
		if m.footer.HasFlash() {
			return ui.FlashTick()
		}
		return nil

	case subscribedMsg:
		return m.handleSubscribed(msg)
	case eventMsg:
		return m.handleEvent(msg.event)
	case feedClosedMsg:
		m.subscribed = false
		m.events = nil
		m.header.SetStatus("offline", false)
		logger.Warn("App: subscription closed")
		return nil
	case sentMsg:
		return m.handleSent(msg)
	case deletedMsg:
		return m.handleDeleted(msg)
	case downloadedMsg:
		return m.handleDownloaded(msg)
	case updateMsg:
		return m.handleUpdate(msg)

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	case tea.MouseClickMsg, tea.MouseReleaseMsg, tea.MouseMotionMsg, tea.MouseWheelMsg:
		return m.handleMouse(msg)
	}

	panel, cmd := m.chat.Update(msg)
	m.chat = panel
	return cmd
}

// enqueue queues cmd to be returned from the current Update.
func (m *Model) enqueue(cmd tea.Cmd) {
	if cmd != nil {
		m.pending = append(m.pending, cmd)
	}
}

// flush drains queued cmds and arms the scheduler wake-up.
func (m *Model) flush() []tea.Cmd {
	cmds := m.pending
	m.pending = nil
	if wake := m.armWake(); wake != nil {
		cmds = append(cmds, wake)
	}
	return cmds
}

// armWake returns a tick for the earliest scheduled task unless one at
// or before it is already armed.
func (m *Model) armWake() tea.Cmd {
	d, ok := m.sched.Next()
	if !ok {
		return nil
	}
	due := m.sched.Now().Add(d)
	if !m.wakeAt.IsZero() && !due.Before(m.wakeAt) {
		return nil
	}
	m.wakeAt = due
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return wakeMsg(t)
	})
}

// layout sizes the panels for the terminal.
func (m *Model) layout() {
	w := max(m.width, ui.MinTerminalWidth)
	h := max(m.height, ui.MinTerminalHeight)
	m.header.SetWidth(w)
	m.footer.SetWidth(w)
	m.chat.SetSize(w, h-ui.HeaderHeight-ui.FooterHeight)
}

// syncChrome updates the footer bindings for the current input mode.
func (m *Model) syncChrome() {
	switch top := m.overlays.Top(); {
	case top == nil:
		if m.chat.Selected() != "" {
			m.footer.SetMode(ui.FooterSelecting)
		} else {
			m.footer.SetMode(ui.FooterChat)
		}
	case top.Kind() == overlay.KindMenu:
		m.footer.SetMode(ui.FooterMenu)
	case top.Kind() == overlay.KindSplash:
		m.footer.SetMode(ui.FooterSplash)
	default:
		m.footer.SetMode(ui.FooterOverlay)
	}
}

// Room returns the room view-model.
func (m *Model) Room() *chat.Room {
	return m.room
}
