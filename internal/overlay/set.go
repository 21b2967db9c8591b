package overlay

import (
	"github.com/parleychat/parley/internal/errors"
	"github.com/parleychat/parley/internal/sched"
)

// Set groups the four overlay instances over one register.
type Set struct {
	Register *Register
	Alert    *Instance
	Action   *Instance
	Menu     *Instance
	Splash   *Instance
}

// NewSet creates all instances sharing reg and s.
func NewSet(reg *Register, s *sched.Scheduler) *Set {
	return &Set{
		Register: reg,
		Alert:    NewInstance(KindAlert, reg, s),
		Action:   NewInstance(KindAction, reg, s),
		Menu:     NewInstance(KindMenu, reg, s),
		Splash:   NewInstance(KindSplash, reg, s),
	}
}

// Get returns the instance for kind.
func (s *Set) Get(kind Kind) (*Instance, error) {
	switch kind {
	case KindAlert:
		return s.Alert, nil
	case KindAction:
		return s.Action, nil
	case KindMenu:
		return s.Menu, nil
	case KindSplash:
		return s.Splash, nil
	}
	return nil, errors.UnknownOverlayKind(kind.String())
}

// Show displays content on the named dialog category ("alert" or
// "action").
func (s *Set) Show(category string, content Content, onConfirm func()) error {
	in, err := s.dialog(category)
	if err != nil {
		return err
	}
	return in.Display(content, onConfirm)
}

// HideDialog hides the named dialog category.
func (s *Set) HideDialog(category string, onClosed func()) error {
	in, err := s.dialog(category)
	if err != nil {
		return err
	}
	in.Hide(onClosed)
	return nil
}

func (s *Set) dialog(category string) (*Instance, error) {
	kind, err := ParseKind(category)
	if err != nil {
		return nil, err
	}
	if kind != KindAlert && kind != KindAction {
		return nil, errors.UnknownOverlayKind(category)
	}
	return s.Get(kind)
}

// Top returns the instance that should receive input and be drawn above
// the rest, or nil when none is showing. Splash sits below dialogs and
// instances still waiting to open are skipped.
func (s *Set) Top() *Instance {
	for _, in := range []*Instance{s.Alert, s.Action, s.Menu, s.Splash} {
		if in.Visible() {
			return in
		}
	}
	return nil
}

// HoldRegister marks the register open again while another instance is
// still showing. Closing an instance clears the register unconditionally,
// so pass this as the onClosed of an overlay that can sit below others.
func (s *Set) HoldRegister() {
	if s.Top() != nil {
		s.Register.SetOpen(true)
	}
}

// All returns the instances in drawing order, bottom first.
func (s *Set) All() []*Instance {
	return []*Instance{s.Splash, s.Menu, s.Action, s.Alert}
}
