// Package overlay sequences modal overlays: alert and action dialogs, the
// context menu and the splash screen.
//
// All instances share one Register. An instance asked to display while the
// register says another overlay is open waits one animation duration before
// applying its content, which gives the closing overlay time to finish.
package overlay

import "time"

// DefaultAnimationDuration is the fade/scale time of every overlay.
const DefaultAnimationDuration = 250 * time.Millisecond

// Register is the process-wide overlay state shared by every instance.
type Register struct {
	open     bool
	duration time.Duration
}

// NewRegister returns a closed register with the default animation duration.
func NewRegister() *Register {
	return &Register{duration: DefaultAnimationDuration}
}

// SetOpen records whether some overlay is open.
func (r *Register) SetOpen(open bool) {
	r.open = open
}

// IsOpen reports whether some overlay is open.
func (r *Register) IsOpen() bool {
	return r.open
}

// SetAnimationDuration changes the transition time. Values outside
// (0, 5s) are accepted as given.
func (r *Register) SetAnimationDuration(d time.Duration) {
	r.duration = d
}

// AnimationDuration returns the transition time.
func (r *Register) AnimationDuration() time.Duration {
	return r.duration
}
