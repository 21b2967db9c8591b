package overlay

import (
	"fmt"

	"github.com/parleychat/parley/internal/errors"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/sched"
)

// Kind identifies one of the overlay instances.
type Kind int

const (
	KindAlert Kind = iota
	KindAction
	KindMenu
	KindSplash
)

func (k Kind) String() string {
	switch k {
	case KindAlert:
		return "alert"
	case KindAction:
		return "action"
	case KindMenu:
		return "menu"
	case KindSplash:
		return "splash"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a category name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "alert":
		return KindAlert, nil
	case "action":
		return KindAction, nil
	case "menu":
		return KindMenu, nil
	case "splash":
		return KindSplash, nil
	}
	return 0, errors.UnknownOverlayKind(name)
}

// State is the render state of an instance. Opening and Closing are the
// animation phases around Visible; only Hidden and Visible are settled.
type State int

const (
	StateHidden State = iota
	StateOpening
	StateVisible
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateOpening:
		return "opening"
	case StateVisible:
		return "visible"
	case StateClosing:
		return "closing"
	default:
		return "hidden"
	}
}

// Content is what an instance shows.
type Content struct {
	Title  string
	Body   string
	Button string   // confirm label for dialogs
	Items  []string // menu entries
}

func (c Content) withDefaults(k Kind) Content {
	switch k {
	case KindAlert:
		if c.Title == "" {
			c.Title = "Alert!"
		}
		if c.Button == "" {
			c.Button = "Close"
		}
	case KindAction:
		if c.Title == "" {
			c.Title = "Alert!"
		}
		if c.Button == "" {
			c.Button = "OK"
		}
	case KindMenu:
		if c.Title == "" {
			c.Title = "Menu"
		}
	}
	return c
}

// Instance is one overlay with a HIDDEN/VISIBLE life cycle.
type Instance struct {
	kind      Kind
	reg       *Register
	sched     *sched.Scheduler
	state     State
	content   Content
	onConfirm func()
	onClosed  []func()
	pending   *sched.Task
	cursor    int
}

// NewInstance creates a hidden instance bound to reg and s.
func NewInstance(kind Kind, reg *Register, s *sched.Scheduler) *Instance {
	return &Instance{kind: kind, reg: reg, sched: s}
}

// Kind returns the instance kind.
func (in *Instance) Kind() Kind { return in.kind }

// State returns the current render state.
func (in *Instance) State() State { return in.state }

// Visible reports whether content is applied, including while closing.
func (in *Instance) Visible() bool {
	return in.state == StateVisible || in.state == StateClosing
}

// Content returns the applied content.
func (in *Instance) Content() Content { return in.content }

// Display shows content, deferring by one animation duration when another
// overlay holds the register. onConfirm replaces any previous callback.
func (in *Instance) Display(content Content, onConfirm func()) error {
	if in.state != StateHidden {
		return errors.OverlayAlreadyVisible(in.kind.String())
	}
	if in.kind == KindAction && onConfirm == nil {
		return errors.E(errors.Op("overlay.Display"), errors.KindInvalidArgument, "action dialog needs a confirm callback")
	}

	in.onConfirm = nil
	content = content.withDefaults(in.kind)

	if !in.reg.IsOpen() {
		in.apply(content, onConfirm)
		return nil
	}

	log := logger.ComponentLogger("overlay")
	log.Debug().Str("kind", in.kind.String()).Dur("delay", in.reg.AnimationDuration()).Msg("display deferred")

	in.state = StateOpening
	in.pending = in.sched.After(in.reg.AnimationDuration(), func() {
		in.pending = nil
		in.apply(content, onConfirm)
	})
	return nil
}

func (in *Instance) apply(content Content, onConfirm func()) {
	in.content = content
	in.onConfirm = onConfirm
	in.cursor = 0
	in.state = StateVisible
	in.reg.SetOpen(true)
}

// Hide closes the instance. A visible instance animates out for one
// duration; a hidden one settles immediately, cancelling any deferred
// display. onClosed runs once the instance is hidden and the register
// cleared.
func (in *Instance) Hide(onClosed func()) {
	in.onConfirm = nil
	if onClosed != nil {
		in.onClosed = append(in.onClosed, onClosed)
	}

	switch in.state {
	case StateClosing:
		// Joins the close already in flight.
		return
	case StateVisible:
		in.state = StateClosing
		in.pending = in.sched.After(in.reg.AnimationDuration(), in.settle)
	default:
		in.pending.Cancel()
		in.pending = nil
		in.settle()
	}
}

func (in *Instance) settle() {
	in.pending = nil
	in.state = StateHidden
	in.reg.SetOpen(false)

	callbacks := in.onClosed
	in.onClosed = nil
	for _, fn := range callbacks {
		fn()
	}
}

// Confirm activates the confirm button. Alert callbacks fire at most once;
// with no callback the instance hides itself. It reports whether anything
// happened.
func (in *Instance) Confirm() bool {
	if in.state != StateVisible {
		return false
	}
	fn := in.onConfirm
	if in.kind == KindAlert || in.kind == KindMenu {
		in.onConfirm = nil
	}
	if fn == nil {
		in.Hide(nil)
		return true
	}
	fn()
	return true
}

// Cancel hides a visible instance without confirming.
func (in *Instance) Cancel() bool {
	if in.state != StateVisible {
		return false
	}
	in.Hide(nil)
	return true
}

// MoveCursor moves the menu selection by delta, clamped to the items.
func (in *Instance) MoveCursor(delta int) {
	n := len(in.content.Items)
	if n == 0 {
		return
	}
	in.cursor += delta
	if in.cursor < 0 {
		in.cursor = 0
	}
	if in.cursor >= n {
		in.cursor = n - 1
	}
}

// SetCursor selects a menu item by index.
func (in *Instance) SetCursor(i int) {
	if i >= 0 && i < len(in.content.Items) {
		in.cursor = i
	}
}

// Cursor returns the selected menu index.
func (in *Instance) Cursor() int { return in.cursor }

// Selected returns the selected menu item, or "" when there are none.
func (in *Instance) Selected() string {
	if in.cursor < len(in.content.Items) {
		return in.content.Items[in.cursor]
	}
	return ""
}
