package app

import (
	"context"
	"os"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/benbjohnson/clock"

	"github.com/parleychat/parley/internal/codec"
	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/host"
	"github.com/parleychat/parley/internal/keys"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/overlay"
	"github.com/parleychat/parley/internal/remote"
	"github.com/parleychat/parley/internal/ui"
)

const (
	testRoom = "alice:u1:u2:bob"
	testUser = "alice"
)

var testStart = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	logger.Reset()
	_ = logger.Init(os.DevNull)
	os.Exit(m.Run())
}

// testConfig creates a minimal config for testing.
func testConfig() *config.Config {
	return &config.Config{AnimationMs: 250}
}

// testEnv is a model wired to an in-memory log and a mock clock.
type testEnv struct {
	m     *Model
	clock *clock.Mock
	log   *remote.Memory
}

// newTestEnv creates a sized model; opts may adjust the options first.
func newTestEnv(t *testing.T, opts ...func(*Options)) *testEnv {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(testStart)
	mem := remote.NewMemory(mock)

	o := Options{
		Config:  testConfig(),
		Version: "0.0.0-test",
		Room:    testRoom,
		UserID:  testUser,
		Log:     mem,
		Clock:   mock,
	}
	for _, fn := range opts {
		fn(&o)
	}
	m := New(o)
	t.Cleanup(func() { _ = m.Close() })
	setSize(m, 80, 30)
	return &testEnv{m: m, clock: mock, log: mem}
}

// advance moves the mock clock and delivers the scheduler wake-up.
func (e *testEnv) advance(d time.Duration) {
	e.clock.Add(d)
	e.m.Update(wakeMsg(e.clock.Now()))
}

// settle waits out one overlay animation.
func (e *testEnv) settle() {
	e.advance(e.m.cfg.AnimationDuration())
}

// record builds a record sent by uid at the current mock time.
func (e *testEnv) record(key, uid, html string) remote.Record {
	return remote.Record{
		Key:      key,
		SenderID: uid,
		Body:     codec.Encode(html),
		SentAt:   remote.NewTimestamp(e.clock.Now()),
	}
}

// add delivers a remote add notification.
func (e *testEnv) add(rec remote.Record) {
	e.m.Update(eventMsg{event: remote.Event{Kind: remote.EventAdded, Record: rec}})
}

// remove delivers a remote remove notification.
func (e *testEnv) remove(rec remote.Record) {
	e.m.Update(eventMsg{event: remote.Event{Kind: remote.EventRemoved, Record: rec}})
}

// bubbleAt returns screen coordinates on the body of key, optionally on
// a line quoting quoted.
func (e *testEnv) bubbleAt(t *testing.T, key, quoted string) (int, int) {
	t.Helper()
	for y := 0; y < e.m.chat.ViewportHeight(); y++ {
		for x := 0; x < e.m.width; x++ {
			hit, ok := e.m.chat.HitTest(x, y)
			if !ok || hit.Key != key || !hit.OnBody {
				continue
			}
			if quoted != "" && hit.Line.QuoteKey != quoted {
				continue
			}
			return x, y + ui.HeaderHeight
		}
	}
	t.Fatalf("no body cell for %q (quote %q) on screen", key, quoted)
	return 0, 0
}

// overlayAt returns screen coordinates of target on the top overlay.
func (e *testEnv) overlayAt(t *testing.T, target ui.OverlayTarget, item int) (int, int) {
	t.Helper()
	top := e.m.overlays.Top()
	if top == nil {
		t.Fatal("no overlay on top")
	}
	box, ok := ui.RenderOverlay(top, e.m.width, e.m.height)
	if !ok {
		t.Fatal("top overlay did not render")
	}
	for y := 0; y < e.m.height; y++ {
		for x := 0; x < e.m.width; x++ {
			got, idx := ui.OverlayHit(top, box, x, y)
			if got == target && (target != ui.TargetItem || idx == item) {
				return x, y
			}
		}
	}
	t.Fatalf("target %d not found on %s", target, top.Kind())
	return 0, 0
}

// run executes cmd and feeds its message back into the model.
func (e *testEnv) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		e.m.Update(msg)
	}
}

// runPending executes the cmds queued by callbacks.
func (e *testEnv) runPending() {
	cmds := e.m.pending
	e.m.pending = nil
	for _, cmd := range cmds {
		e.run(cmd)
	}
}

func assertTop(t *testing.T, m *Model, kind overlay.Kind, title string) {
	t.Helper()
	top := m.overlays.Top()
	if top == nil {
		t.Fatalf("no overlay on top, want %s %q", kind, title)
	}
	if top.Kind() != kind || top.Content().Title != title {
		t.Fatalf("top = %s %q, want %s %q", top.Kind(), top.Content().Title, kind, title)
	}
}

// fakeBridge records host calls.
type fakeBridge struct {
	copied  []string
	copyErr error
	saved   []string
	release host.Release
	newer   bool
}

func (b *fakeBridge) Name() string { return "fake" }

func (b *fakeBridge) CopyText(text string) error {
	if b.copyErr != nil {
		return b.copyErr
	}
	b.copied = append(b.copied, text)
	return nil
}

func (b *fakeBridge) Toast(string) error { return nil }

func (b *fakeBridge) Download(_ context.Context, src, name string) (string, error) {
	b.saved = append(b.saved, src)
	return "/downloads/" + name, nil
}

func (b *fakeBridge) CheckUpdate(context.Context, string) (host.Release, bool, error) {
	return b.release, b.newer, nil
}

// keyPress creates a tea.KeyPressMsg for the given key string.
// Examples: "a", "enter", "tab", "esc", "ctrl+c", "up", "down"
func keyPress(key string) tea.KeyPressMsg {
	switch key {
	case keys.Enter:
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case keys.Tab:
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case keys.ShiftTab:
		return tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
	case keys.Escape:
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case keys.Backspace:
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	case keys.Up:
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case keys.Down:
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case keys.CtrlUp:
		return tea.KeyPressMsg{Code: tea.KeyUp, Mod: tea.ModCtrl}
	case keys.CtrlC:
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	case keys.CtrlP:
		return tea.KeyPressMsg{Code: 'p', Mod: tea.ModCtrl}
	case keys.CtrlT:
		return tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl}
	default:
		if len(key) == 1 {
			return tea.KeyPressMsg{Code: rune(key[0]), Text: key}
		}
		return tea.KeyPressMsg{Text: key}
	}
}

// sendKey sends a key press to the model and returns the resulting cmd.
func sendKey(m *Model, key string) tea.Cmd {
	_, cmd := m.Update(keyPress(key))
	return cmd
}

// typeText simulates typing a string by sending individual character key presses.
func typeText(m *Model, text string) {
	for _, ch := range text {
		sendKey(m, string(ch))
	}
}

// setSize sends a window size message to the model.
func setSize(m *Model, width, height int) {
	m.Update(tea.WindowSizeMsg{Width: width, Height: height})
}

func mouseClick(x, y int) tea.MouseClickMsg {
	return tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func mouseMotion(x, y int) tea.MouseMotionMsg {
	return tea.MouseMotionMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func mouseRelease(x, y int) tea.MouseReleaseMsg {
	return tea.MouseReleaseMsg{X: x, Y: y, Button: tea.MouseLeft}
}
