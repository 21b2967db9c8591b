package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/parleychat/parley/internal/markup"
	"github.com/parleychat/parley/internal/overlay"
)

// Rows of the modal frame above the title: top border and padding.
const (
	modalFrameTop  = 2
	modalFrameLeft = 3
	// menuFirstItemRow is the box row of the first menu entry: frame,
	// title and a blank line.
	menuFirstItemRow = modalFrameTop + 2
)

// cancelLabel is the secondary button of action dialogs.
const cancelLabel = "Cancel"

// Box is an overlay drawn at a position on the screen.
type Box struct {
	View string
	X, Y int
	W, H int
}

// Contains reports whether the cell at x, y is inside the box.
func (b Box) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.W && y >= b.Y && y < b.Y+b.H
}

// OverlayTarget is what a click on an overlay landed on.
type OverlayTarget int

const (
	TargetNone OverlayTarget = iota
	TargetOutside
	TargetConfirm
	TargetCancel
	TargetItem
)

// RenderOverlay draws in centered on a width by height screen. It
// returns false when the instance has nothing to show.
func RenderOverlay(in *overlay.Instance, width, height int) (Box, bool) {
	if !in.Visible() {
		return Box{}, false
	}
	closing := in.State() == overlay.StateClosing

	var view string
	switch in.Kind() {
	case overlay.KindMenu:
		view = renderMenu(in, width, closing)
	case overlay.KindSplash:
		view = renderSplash(in.Content(), width, closing)
	default:
		view = renderDialog(in, width, closing)
	}

	w := lipgloss.Width(view)
	h := lipgloss.Height(view)
	return Box{
		View: view,
		X:    max((width-w)/2, 0),
		Y:    max((height-h)/2, 0),
		W:    w,
		H:    h,
	}, true
}

func modalWidth(screen int) int {
	return max(min(ModalWidth, screen-2), 12)
}

func modalStyle(closing bool) lipgloss.Style {
	if closing {
		return ModalClosingStyle.Faint(true)
	}
	return ModalStyle
}

func renderDialog(in *overlay.Instance, screen int, closing bool) string {
	c := in.Content()
	width := modalWidth(screen)
	inner := width - 2*modalFrameLeft

	rows := []string{ModalTitleStyle.Render(c.Title), ""}
	for _, l := range markup.Render(c.Body, inner, MarkupTheme()) {
		rows = append(rows, l.Text)
	}
	rows = append(rows, "", buttonRow(in, inner))

	return modalStyle(closing).Width(width).Render(strings.Join(rows, "\n"))
}

// buttonRow renders the dialog buttons right-aligned in inner columns.
func buttonRow(in *overlay.Instance, inner int) string {
	confirm := ModalButtonStyle.Render(in.Content().Button)
	row := confirm
	if in.Kind() == overlay.KindAction {
		row = ModalSecondaryButtonStyle.Render(cancelLabel) + "  " + confirm
	}
	return lipgloss.PlaceHorizontal(inner, lipgloss.Right, row)
}

func renderMenu(in *overlay.Instance, screen int, closing bool) string {
	c := in.Content()
	width := modalWidth(screen)

	rows := []string{ModalTitleStyle.Render(c.Title), ""}
	for i, item := range c.Items {
		style := MenuItemStyle
		prefix := "  "
		if i == in.Cursor() {
			style = MenuSelectedStyle
			prefix = "> "
		}
		rows = append(rows, style.Width(width-2*modalFrameLeft).Render(prefix+item))
	}
	rows = append(rows, "", ModalHelpStyle.Render("↑/↓ navigate  enter select  esc close"))

	return modalStyle(closing).Width(width).Render(strings.Join(rows, "\n"))
}

func renderSplash(c overlay.Content, screen int, closing bool) string {
	width := max(min(SplashWidth, screen-2), 12)
	inner := width - 2*modalFrameLeft

	rows := []string{
		lipgloss.PlaceHorizontal(inner, lipgloss.Center, SplashTitleStyle.Render(c.Title)),
	}
	if c.Body != "" {
		rows = append(rows, "")
		for _, l := range markup.Render(c.Body, inner, MarkupTheme()) {
			rows = append(rows, lipgloss.PlaceHorizontal(inner, lipgloss.Center, l.Text))
		}
	}
	return modalStyle(closing).Width(width).Render(strings.Join(rows, "\n"))
}

// OverlayHit resolves a click at x, y against an instance drawn in box.
// For TargetItem the menu index is returned.
func OverlayHit(in *overlay.Instance, box Box, x, y int) (OverlayTarget, int) {
	if !box.Contains(x, y) {
		return TargetOutside, -1
	}
	row := y - box.Y
	col := x - box.X - modalFrameLeft
	inner := box.W - 2*modalFrameLeft

	switch in.Kind() {
	case overlay.KindMenu:
		i := row - menuFirstItemRow
		if i >= 0 && i < len(in.Content().Items) {
			return TargetItem, i
		}
	case overlay.KindAlert, overlay.KindAction:
		// The button row sits above the bottom padding and border.
		if row != box.H-modalFrameTop-1 {
			return TargetNone, -1
		}
		confirmW := lipgloss.Width(ModalButtonStyle.Render(in.Content().Button))
		if col >= inner-confirmW && col < inner {
			return TargetConfirm, -1
		}
		if in.Kind() == overlay.KindAction {
			cancelW := lipgloss.Width(ModalSecondaryButtonStyle.Render(cancelLabel))
			end := inner - confirmW - 2
			if col >= end-cancelW && col < end {
				return TargetCancel, -1
			}
		}
	}
	return TargetNone, -1
}

// Composite draws boxes over base on a width by height screen, bottom
// first. With dim set, cells of base outside the top box are muted.
func Composite(base string, width, height int, dim bool, boxes ...Box) string {
	if width <= 0 || height <= 0 || len(boxes) == 0 {
		return base
	}

	area := uv.Rect(0, 0, width, height)
	scr := uv.NewScreenBuffer(area.Dx(), area.Dy())
	uv.NewStyledString(base).Draw(scr, area)

	if dim {
		top := boxes[len(boxes)-1]
		muted := ColorTextMuted
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if top.Contains(x, y) {
					continue
				}
				cell := scr.CellAt(x, y)
				if cell != nil {
					cell = cell.Clone()
					cell.Style.Fg = muted
					scr.SetCell(x, y, cell)
				}
			}
		}
	}

	for _, b := range boxes {
		uv.NewStyledString(b.View).Draw(scr, uv.Rect(b.X, b.Y, b.W, b.H))
	}

	return scr.Render()
}
