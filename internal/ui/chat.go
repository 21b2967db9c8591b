package ui

import (
	"slices"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/markup"
)

// bubbleBodyOffset is the number of box rows above the first body line:
// the top border and the sender label.
const bubbleBodyOffset = 2

// bubble is one drawn message with its cached rendering.
type bubble struct {
	msg         chat.Message
	highlighted bool

	width int           // max width the cache was built for, 0 when stale
	rows  []string      // rendered box rows
	lines []markup.Line // body lines, aligned with rows[bubbleBodyOffset:]
}

func (b *bubble) key() string { return b.msg.BubbleKey() }

// lineRef maps one content row back to what is drawn on it.
type lineRef struct {
	key  string // bubble key, "" for rows outside any hittable bubble
	body int    // index into the bubble's body lines, -1 for the frame
	x0   int    // first column of the bubble box
	x1   int    // column after the bubble box
}

// Hit is what a pointer position on the chat panel refers to.
type Hit struct {
	Key string // message key

	// Line is the body line under the pointer; zero when the pointer is
	// on the bubble frame or label.
	Line   markup.Line
	OnBody bool
}

// Chat is the conversation panel: message bubbles, an optional quote
// indicator and markdown preview, and the compose box.
type Chat struct {
	viewport viewport.Model
	input    textarea.Model
	width    int
	height   int
	focused  bool

	bubbles []*bubble
	content []string  // placed rows, aligned with refs
	refs    []lineRef
	starts  map[string]int // bubble key -> first content row

	// The viewport is refreshed lazily: dirty marks content it has not
	// seen yet and follow a pending jump to the bottom.
	dirty  bool
	follow bool

	selected string
	pressed  string

	quoteLabel  string
	previewOn   bool
	previewHTML string
}

var _ chat.View = (*Chat)(nil)

// NewChat creates a new chat panel
func NewChat() *Chat {
	ti := textarea.New()
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 0
	ti.SetHeight(TextareaHeight)
	ti.ShowLineNumbers = false
	ti.Prompt = ""
	// Enter is intercepted by the app to send.
	ti.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))

	vp := viewport.New()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	c := &Chat{
		viewport: vp,
		input:    ti,
		starts:   make(map[string]int),
	}
	c.SetSize(DefaultWrapWidth, MinTerminalHeight)
	return c
}

// SetSize sets the chat panel dimensions, keeping the newest message in
// view if it was before.
func (c *Chat) SetSize(width, height int) {
	follow := c.NearBottom()
	c.width = width
	c.height = height
	c.layout()
	for _, b := range c.bubbles {
		b.width = 0
	}
	c.rebuild()
	if follow {
		c.follow = true
	}
}

// layout sizes the viewport and input for the current extras.
func (c *Chat) layout() {
	vh := c.height - InputTotalHeight - c.extraHeight()
	if vh < 1 {
		vh = 1
	}
	c.viewport.SetWidth(c.width)
	c.viewport.SetHeight(vh)
	c.input.SetWidth(max(c.width-InputBorderWidth-InputPaddingWidth, 1))
}

func (c *Chat) extraHeight() int {
	h := 0
	if c.quoteLabel != "" {
		h += QuoteIndicatorHeight
	}
	if c.previewOn {
		h += PreviewHeight
	}
	return h
}

// ViewportHeight returns the number of message rows shown.
func (c *Chat) ViewportHeight() int {
	return c.viewport.Height()
}

// SetFocused sets the focus state of the compose box
func (c *Chat) SetFocused(focused bool) tea.Cmd {
	c.focused = focused
	if focused {
		return c.input.Focus()
	}
	c.input.Blur()
	return nil
}

// IsFocused returns the focus state
func (c *Chat) IsFocused() bool {
	return c.focused
}

// InputValue returns the text in the compose box
func (c *Chat) InputValue() string {
	return c.input.Value()
}

// ClearInput empties the compose box
func (c *Chat) ClearInput() {
	c.input.Reset()
}

// SetDraft replaces the compose box contents.
func (c *Chat) SetDraft(text string) {
	c.input.SetValue(text)
}

// SetQuote shows label above the compose box, or hides it when empty.
func (c *Chat) SetQuote(label string) {
	if label == c.quoteLabel {
		return
	}
	follow := c.NearBottom()
	c.quoteLabel = label
	c.layout()
	if follow {
		c.follow = true
	}
}

// QuoteLabel returns the text of the quote indicator.
func (c *Chat) QuoteLabel() string {
	return c.quoteLabel
}

// TogglePreview shows or hides the markdown preview.
func (c *Chat) TogglePreview() {
	follow := c.NearBottom()
	c.previewOn = !c.previewOn
	c.layout()
	if follow {
		c.follow = true
	}
}

// PreviewOn reports whether the preview is shown.
func (c *Chat) PreviewOn() bool {
	return c.previewOn
}

// SetPreview sets the sanitized HTML the preview renders.
func (c *Chat) SetPreview(html string) {
	c.previewHTML = html
}

// NearBottom reports whether the newest rows are in view.
func (c *Chat) NearBottom() bool {
	if c.follow {
		return true
	}
	end := c.viewport.YOffset() + c.viewport.Height()
	return len(c.content)-end <= NearBottomLines
}

// AppendBubble draws m after the existing bubbles.
func (c *Chat) AppendBubble(m chat.Message) {
	b := &bubble{msg: m}
	c.bubbles = append(c.bubbles, b)
	c.place(b)
	c.dirty = true
}

// RemoveBubble erases the bubble with key.
func (c *Chat) RemoveBubble(bubbleKey string) {
	for i, b := range c.bubbles {
		if b.key() == bubbleKey {
			c.bubbles = append(c.bubbles[:i], c.bubbles[i+1:]...)
			break
		}
	}
	if c.selected == bubbleKey {
		c.selected = ""
	}
	if c.pressed == bubbleKey {
		c.pressed = ""
	}
	c.rebuild()
}

// ScrollToBottom shows the newest rows.
func (c *Chat) ScrollToBottom() {
	c.follow = true
}

// ScrollTo brings the bubble with key into view.
func (c *Chat) ScrollTo(bubbleKey string) bool {
	start, ok := c.starts[bubbleKey]
	if !ok {
		return false
	}
	c.sync()
	b := c.find(bubbleKey)
	end := start + len(b.rows)
	off := c.viewport.YOffset()
	switch {
	case start < off:
		c.viewport.SetYOffset(start)
	case end > off+c.viewport.Height():
		c.viewport.SetYOffset(max(end-c.viewport.Height(), 0))
	}
	return true
}

// Highlight marks or unmarks a bubble.
func (c *Chat) Highlight(bubbleKey string, on bool) {
	b := c.find(bubbleKey)
	if b == nil || b.highlighted == on {
		return
	}
	b.highlighted = on
	b.width = 0
	c.rebuild()
}

// IsHighlighted reports whether the bubble with key is marked.
func (c *Chat) IsHighlighted(bubbleKey string) bool {
	b := c.find(bubbleKey)
	return b != nil && b.highlighted
}

// SetPressed marks the bubble under a held press, "" to clear.
func (c *Chat) SetPressed(bubbleKey string) {
	if c.pressed == bubbleKey {
		return
	}
	c.invalidate(c.pressed)
	c.pressed = bubbleKey
	c.invalidate(bubbleKey)
	c.rebuild()
}

// Pressed returns the bubble under a held press.
func (c *Chat) Pressed() string {
	return c.pressed
}

// Selected returns the keyboard-selected message key, or "".
func (c *Chat) Selected() string {
	return c.selected
}

// Select makes key the keyboard selection, "" to clear.
func (c *Chat) Select(msgKey string) {
	if c.selected == msgKey {
		return
	}
	c.invalidate(c.selected)
	c.selected = msgKey
	c.invalidate(msgKey)
	c.rebuild()
	if msgKey != "" {
		c.ScrollTo(msgKey)
	}
}

// SelectPrev moves the selection to the previous confirmed message,
// starting from the newest when nothing is selected.
func (c *Chat) SelectPrev() {
	keys := c.selectable()
	if len(keys) == 0 {
		return
	}
	i := indexOf(keys, c.selected)
	switch {
	case i < 0:
		c.Select(keys[len(keys)-1])
	case i > 0:
		c.Select(keys[i-1])
	}
}

// SelectNext moves the selection to the next confirmed message.
func (c *Chat) SelectNext() {
	keys := c.selectable()
	i := indexOf(keys, c.selected)
	if i >= 0 && i < len(keys)-1 {
		c.Select(keys[i+1])
	}
}

func (c *Chat) selectable() []string {
	keys := make([]string, 0, len(c.bubbles))
	for _, b := range c.bubbles {
		if !b.msg.Pending {
			keys = append(keys, b.key())
		}
	}
	return keys
}

func indexOf(keys []string, k string) int {
	if k == "" {
		return -1
	}
	for i, s := range keys {
		if s == k {
			return i
		}
	}
	return -1
}

// BubbleKeys returns the drawn bubble keys in order.
func (c *Chat) BubbleKeys() []string {
	keys := make([]string, len(c.bubbles))
	for i, b := range c.bubbles {
		keys[i] = b.key()
	}
	return keys
}

// HitTest resolves a pointer position relative to the top-left of the
// message area. Pending bubbles are not hittable.
func (c *Chat) HitTest(x, y int) (Hit, bool) {
	if y < 0 || y >= c.viewport.Height() {
		return Hit{}, false
	}
	c.sync()
	row := c.viewport.YOffset() + y
	if row >= len(c.refs) {
		return Hit{}, false
	}
	ref := c.refs[row]
	if ref.key == "" || x < ref.x0 || x >= ref.x1 {
		return Hit{}, false
	}
	h := Hit{Key: ref.key}
	if ref.body >= 0 {
		if b := c.find(ref.key); b != nil && ref.body < len(b.lines) {
			h.Line = b.lines[ref.body]
			h.OnBody = true
		}
	}
	return h, true
}

func (c *Chat) find(bubbleKey string) *bubble {
	for _, b := range c.bubbles {
		if b.key() == bubbleKey {
			return b
		}
	}
	return nil
}

func (c *Chat) invalidate(bubbleKey string) {
	if b := c.find(bubbleKey); b != nil {
		b.width = 0
	}
}

// maxBubbleWidth is the widest a bubble box may be at the panel width.
func (c *Chat) maxBubbleWidth() int {
	w := c.width * 3 / 4
	if w < MinBubbleWidth {
		w = min(MinBubbleWidth, c.width)
	}
	return max(w, 5)
}

// rebuild lays out every bubble from scratch.
func (c *Chat) rebuild() {
	c.content = c.content[:0]
	c.refs = c.refs[:0]
	clear(c.starts)

	banner := BannerStyle.Width(max(c.width, 1)).Render(HeadBanner)
	for _, row := range strings.Split(banner, "\n") {
		c.content = append(c.content, row)
		c.refs = append(c.refs, lineRef{body: -1})
	}
	for _, b := range c.bubbles {
		c.place(b)
	}
	c.dirty = true
}

// place appends b's rows below the current content.
func (c *Chat) place(b *bubble) {
	c.renderBubble(b)
	boxWidth := lipgloss.Width(b.rows[0])
	x0 := 0
	if b.msg.FromMe {
		x0 = max(c.width-boxWidth, 0)
	}

	c.content = append(c.content, "")
	c.refs = append(c.refs, lineRef{body: -1})

	bk := b.key()
	c.starts[bk] = len(c.refs)
	hitKey := bk
	if b.msg.Pending {
		hitKey = ""
	}
	for i, row := range b.rows {
		if b.msg.FromMe {
			row = lipgloss.PlaceHorizontal(c.width, lipgloss.Right, row)
		}
		body := i - bubbleBodyOffset
		if body >= len(b.lines) {
			body = -1
		}
		c.content = append(c.content, row)
		c.refs = append(c.refs, lineRef{key: hitKey, body: body, x0: x0, x1: x0 + boxWidth})
	}
}

// sync hands pending content and scrolling to the viewport.
func (c *Chat) sync() {
	if c.dirty {
		c.viewport.SetContentLines(slices.Clone(c.content))
		c.dirty = false
	}
	if c.follow {
		c.viewport.GotoBottom()
		c.follow = false
	}
}

// renderBubble fills b's cache for the current width and state.
func (c *Chat) renderBubble(b *bubble) {
	maxWidth := c.maxBubbleWidth()
	if b.width == maxWidth && b.rows != nil {
		return
	}
	inner := max(maxWidth-4, 1)

	b.lines = markup.Render(b.msg.HTML, inner, MarkupTheme())
	if len(b.lines) == 0 {
		b.lines = []markup.Line{{}}
	}

	label := bubbleLabel(b.msg)
	content := make([]string, 0, len(b.lines)+1)
	widest := lipgloss.Width(label)
	content = append(content, label)
	for _, l := range b.lines {
		content = append(content, l.Text)
		widest = max(widest, lipgloss.Width(l.Text))
	}
	boxWidth := min(max(widest+4, MinBubbleWidth), maxWidth)
	content[0] = ansi.Truncate(label, boxWidth-4, "…")
	if b.msg.Pending {
		content[0] = BubblePendingStyle.Render(content[0])
	} else {
		content[0] = BubbleLabelStyle.Render(content[0])
	}

	style := BubbleTheirsStyle
	if b.msg.FromMe {
		style = BubbleMineStyle
	}
	bk := b.key()
	switch {
	case bk == c.pressed:
		style = style.BorderStyle(lipgloss.ThickBorder()).BorderForeground(ColorPrimary).Background(ColorBgPressed)
	case b.highlighted:
		style = style.BorderStyle(lipgloss.DoubleBorder()).BorderForeground(ColorHighlight)
	case bk == c.selected:
		style = style.BorderStyle(lipgloss.ThickBorder())
	}

	box := style.Width(boxWidth).Render(strings.Join(content, "\n"))
	b.rows = strings.Split(box, "\n")
	b.width = maxWidth
}

func bubbleLabel(m chat.Message) string {
	who := m.Record.SenderID
	if m.FromMe {
		who = "You"
	}
	if m.Pending {
		return who + " · sending…"
	}
	hm := m.Record.SentAt.Clock
	if len(hm) >= 5 {
		hm = hm[:5]
	}
	return who + " · " + hm
}

// Update handles messages
func (c *Chat) Update(msg tea.Msg) (*Chat, tea.Cmd) {
	c.sync()
	var cmds []tea.Cmd

	if keyMsg, isKey := msg.(tea.KeyPressMsg); isKey {
		switch keyMsg.String() {
		case "pgup", "pgdown", "ctrl+up", "ctrl+down", "home", "end":
			var cmd tea.Cmd
			c.viewport, cmd = c.viewport.Update(msg)
			return c, cmd
		}
		if !c.focused {
			return c, nil
		}
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return c, cmd
	}

	if c.focused {
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return c, tea.Batch(cmds...)
}

// View renders the chat panel
func (c *Chat) View() string {
	c.sync()
	parts := []string{c.viewport.View()}

	if c.quoteLabel != "" {
		label := ansi.Truncate("↪ "+c.quoteLabel+"  (esc to cancel)", max(c.width, 1), "…")
		parts = append(parts, QuoteIndicatorStyle.Width(c.width).Render(label))
	}
	if c.previewOn {
		parts = append(parts, c.renderPreview())
	}

	inputStyle := ChatInputStyle
	if c.focused {
		inputStyle = ChatInputFocusedStyle
	}
	parts = append(parts, inputStyle.Width(c.width).Render(c.input.View()))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderPreview draws the last lines of the preview under a title row.
func (c *Chat) renderPreview() string {
	rows := []string{PreviewTitleStyle.Render(PreviewTitle)}
	body := PreviewHeight - 1

	lines := markup.Render(c.previewHTML, max(c.width-2, 1), MarkupTheme())
	if len(lines) == 0 {
		rows = append(rows, PreviewPlaceholderStyle.Render(PreviewPlaceholder))
	} else {
		if len(lines) > body {
			lines = lines[len(lines)-body:]
		}
		for _, l := range lines {
			rows = append(rows, l.Text)
		}
	}
	for len(rows) < PreviewHeight {
		rows = append(rows, "")
	}
	return lipgloss.NewStyle().
		Width(c.width).
		Height(PreviewHeight).
		MaxHeight(PreviewHeight).
		PaddingLeft(1).
		Render(strings.Join(rows, "\n"))
}
