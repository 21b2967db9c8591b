package ui

import (
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/x/ansi"

	"github.com/parleychat/parley/internal/overlay"
	"github.com/parleychat/parley/internal/sched"
)

func newTestSet() *overlay.Set {
	return overlay.NewSet(overlay.NewRegister(), sched.New(clock.NewMock()))
}

func TestRenderOverlay_Hidden(t *testing.T) {
	set := newTestSet()
	if _, ok := RenderOverlay(set.Alert, 80, 24); ok {
		t.Error("hidden instance should not render")
	}
}

func TestRenderOverlay_AlertCentered(t *testing.T) {
	set := newTestSet()
	if err := set.Alert.Display(overlay.Content{Title: "Oops!", Body: "<p>Copy text to clipboard failed</p>"}, nil); err != nil {
		t.Fatal(err)
	}

	box, ok := RenderOverlay(set.Alert, 80, 24)
	if !ok {
		t.Fatal("visible alert should render")
	}
	view := ansi.Strip(box.View)
	for _, want := range []string{"Oops!", "Copy text to clipboard failed", "Close"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in %q", want, view)
		}
	}
	if box.W != ModalWidth {
		t.Errorf("W = %d, want %d", box.W, ModalWidth)
	}
	if box.X != (80-box.W)/2 || box.Y != (24-box.H)/2 {
		t.Errorf("box at %d,%d is not centered", box.X, box.Y)
	}
}

func TestOverlayHit_Dialog(t *testing.T) {
	set := newTestSet()
	if err := set.Action.Display(overlay.Content{Title: "Download image", Body: "<p>photo.png</p>", Button: "Download"}, func() {}); err != nil {
		t.Fatal(err)
	}
	box, _ := RenderOverlay(set.Action, 80, 24)
	buttonY := box.Y + box.H - 3
	right := box.X + box.W - modalFrameLeft - 1

	if got, _ := OverlayHit(set.Action, box, right, buttonY); got != TargetConfirm {
		t.Errorf("hit on confirm = %v", got)
	}

	confirmW := len("Download") + 4
	cancelX := right - confirmW - 2
	if got, _ := OverlayHit(set.Action, box, cancelX, buttonY); got != TargetCancel {
		t.Errorf("hit on cancel = %v", got)
	}

	if got, _ := OverlayHit(set.Action, box, box.X+modalFrameLeft, box.Y+modalFrameTop); got != TargetNone {
		t.Errorf("hit on title = %v", got)
	}
	if got, _ := OverlayHit(set.Action, box, 0, 0); got != TargetOutside {
		t.Errorf("hit outside = %v", got)
	}
}

func TestOverlayHit_MenuItems(t *testing.T) {
	set := newTestSet()
	items := []string{"Copy", "Unsend", "Reply", "Details"}
	if err := set.Menu.Display(overlay.Content{Items: items}, func() {}); err != nil {
		t.Fatal(err)
	}
	set.Menu.SetCursor(2)

	box, _ := RenderOverlay(set.Menu, 80, 24)
	view := ansi.Strip(box.View)
	if !strings.Contains(view, "> Reply") {
		t.Errorf("selected item should be marked in %q", view)
	}

	for i := range items {
		target, idx := OverlayHit(set.Menu, box, box.X+modalFrameLeft+1, box.Y+menuFirstItemRow+i)
		if target != TargetItem || idx != i {
			t.Errorf("row %d: got %v, %d", i, target, idx)
		}
	}
	if target, _ := OverlayHit(set.Menu, box, box.X+modalFrameLeft, box.Y+modalFrameTop); target != TargetNone {
		t.Errorf("title row = %v, want none", target)
	}
}

func TestRenderOverlay_Splash(t *testing.T) {
	set := newTestSet()
	if err := set.Splash.Display(overlay.Content{Title: "parley", Body: "<p>Connecting…</p>"}, nil); err != nil {
		t.Fatal(err)
	}
	box, ok := RenderOverlay(set.Splash, 80, 24)
	if !ok {
		t.Fatal("splash should render")
	}
	if box.W != SplashWidth {
		t.Errorf("W = %d, want %d", box.W, SplashWidth)
	}
	if !strings.Contains(ansi.Strip(box.View), "Connecting…") {
		t.Error("splash should show its body")
	}
}

func TestComposite(t *testing.T) {
	base := strings.Repeat(strings.Repeat(".", 40)+"\n", 9) + strings.Repeat(".", 40)
	box := Box{View: "┌──┐\n│hi│\n└──┘", X: 10, Y: 3, W: 4, H: 3}

	out := ansi.Strip(Composite(base, 40, 10, true, box))
	lines := strings.Split(out, "\n")
	if len(lines) < 5 {
		t.Fatalf("Composite() returned %d lines", len(lines))
	}
	if !strings.Contains(lines[4], "│hi│") {
		t.Errorf("line 4 = %q, want the box drawn over the base", lines[4])
	}
	if !strings.HasPrefix(lines[4], "..........") {
		t.Errorf("line 4 = %q, base should remain left of the box", lines[4])
	}
}

func TestComposite_NoBoxes(t *testing.T) {
	if got := Composite("base", 10, 1, true); got != "base" {
		t.Errorf("Composite() = %q, want base unchanged", got)
	}
}
