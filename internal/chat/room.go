// Package chat is the view-model of one chat room. It keeps the set of
// messages in step with the remote log's added/removed notifications,
// owns optimistic sends and their rollback, and decides the retraction,
// quoting and highlight rules. Drawing is delegated to a View.
package chat

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/parleychat/parley/internal/codec"
	"github.com/parleychat/parley/internal/errors"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/markup"
	"github.com/parleychat/parley/internal/remote"
	"github.com/parleychat/parley/internal/sched"
)

const (
	// MaxMessageBytes bounds quote plus input of one outgoing message.
	MaxMessageBytes = 2048

	// PlaceholderPrefix marks the bubble of a send not yet confirmed.
	PlaceholderPrefix = "message-placeholder:"

	// RetractWindow is how long after sending a message may be retracted.
	RetractWindow = time.Hour

	// HighlightDuration is how long a followed quote target stays marked.
	HighlightDuration = 10 * time.Second
)

// User-visible texts.
const (
	textNotOwner     = "You can unsend a message only if you have sent it."
	textTooOld       = "You can only unsend a message within 1 hour of sending it."
	textActionDenied = "You are not allowed to take this action."
	textViewDenied   = "You are not allowed to view this page."
)

// ErrEmpty is returned by Compose when there is nothing to send.
var ErrEmpty = errors.E(errors.Op("chat.Compose"), errors.KindInvalidArgument, "nothing to send")

// View draws the room. All calls happen on the UI goroutine.
type View interface {
	// NearBottom reports whether the reader is following the newest
	// messages.
	NearBottom() bool
	AppendBubble(m Message)
	RemoveBubble(bubbleKey string)
	ScrollToBottom()
	// ScrollTo brings the bubble into view; false if it is not drawn.
	ScrollTo(bubbleKey string) bool
	Highlight(bubbleKey string, on bool)
	SetDraft(text string)
}

// KeySource issues push keys for outgoing records.
type KeySource interface {
	NewKey() string
}

// Message is one bubble's worth of state.
type Message struct {
	Record  remote.Record
	HTML    string // decoded, sanitized body
	FromMe  bool
	Pending bool // optimistic send awaiting the remote add
}

// BubbleKey is the key the View knows this message by.
func (m Message) BubbleKey() string {
	if m.Pending {
		return PlaceholderKey(m.Record.Key)
	}
	return m.Record.Key
}

// PlaceholderKey returns the bubble key of the optimistic copy of a send.
func PlaceholderKey(pushKey string) string {
	return PlaceholderPrefix + pushKey
}

// Outgoing is a composed message ready to submit.
type Outgoing struct {
	Record remote.Record
	Draft  string // input as typed, restored on failure
	Quote  string // quote HTML consumed by this send
}

// Room is the view-model of one room.
type Room struct {
	id     string
	userID string
	keys   KeySource
	sched  *sched.Scheduler
	view   View
	log    *zerolog.Logger

	messages     map[string]*Message
	order        []string
	placeholders map[string]*Message

	quote    string
	quoteKey string

	highlighted string
	highlight   *sched.Task
}

// NewRoom creates the view-model for room id as seen by userID.
func NewRoom(id, userID string, keys KeySource, s *sched.Scheduler, v View) *Room {
	return &Room{
		id:           id,
		userID:       userID,
		keys:         keys,
		sched:        s,
		view:         v,
		log:          logger.WithRoom(id),
		messages:     make(map[string]*Message),
		placeholders: make(map[string]*Message),
	}
}

// ID returns the room id.
func (r *Room) ID() string { return r.id }

// UserID returns the local user's id.
func (r *Room) UserID() string { return r.userID }

// Title returns the header text for the room.
func (r *Room) Title() string { return remote.Title(r.id, r.userID) }

// Len returns the number of confirmed messages.
func (r *Room) Len() int { return len(r.messages) }

// Pending returns the number of unconfirmed sends.
func (r *Room) Pending() int { return len(r.placeholders) }

// Message returns the confirmed message with key.
func (r *Room) Message(key string) (Message, bool) {
	m, ok := r.messages[key]
	if !ok {
		return Message{}, false
	}
	return *m, true
}

// Messages returns the confirmed messages in arrival order.
func (r *Room) Messages() []Message {
	out := make([]Message, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, *r.messages[k])
	}
	return out
}

// Added applies a remote add notification.
func (r *Room) Added(rec remote.Record) {
	if _, ok := r.messages[rec.Key]; ok {
		r.log.Debug().Str("key", rec.Key).Msg("duplicate add ignored")
		return
	}
	follow := r.view.NearBottom()

	if ph, ok := r.placeholders[rec.Key]; ok {
		delete(r.placeholders, rec.Key)
		r.view.RemoveBubble(ph.BubbleKey())
	}

	m := &Message{
		Record: rec,
		HTML:   markup.Sanitize(codec.Decode(rec.Body)),
		FromMe: rec.SenderID == r.userID,
	}
	r.messages[rec.Key] = m
	r.order = append(r.order, rec.Key)
	r.view.AppendBubble(*m)
	if follow {
		r.view.ScrollToBottom()
	}
	r.log.Debug().Str("key", rec.Key).Str("uid", rec.SenderID).Msg("message added")
}

// Removed applies a remote remove notification.
func (r *Room) Removed(rec remote.Record) {
	if ph, ok := r.placeholders[rec.Key]; ok {
		delete(r.placeholders, rec.Key)
		r.view.RemoveBubble(ph.BubbleKey())
	}
	if _, ok := r.messages[rec.Key]; !ok {
		return
	}
	delete(r.messages, rec.Key)
	for i, k := range r.order {
		if k == rec.Key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.highlighted == rec.Key {
		r.highlight.Cancel()
		r.highlight = nil
		r.highlighted = ""
	}
	if r.quoteKey == rec.Key {
		r.ClearQuote()
	}
	r.view.RemoveBubble(rec.Key)
	r.log.Debug().Str("key", rec.Key).Msg("message removed")
}

// SubscriptionFailed classifies a failure of the remote subscription.
func (r *Room) SubscriptionFailed(err error) error {
	const op = errors.Op("chat.Subscribe")
	r.log.Error().Err(err).Msg("subscription failed")
	if errors.IsPermissionText(err) {
		return errors.E(op, errors.KindPermission, textViewDenied)
	}
	return errors.E(op, errors.KindRemote, err)
}

// Compose turns the input into an outgoing record. On success the quote
// is consumed and a placeholder bubble is shown; the caller submits the
// record and reports back through Sent or SendFailed.
func (r *Room) Compose(input string) (Outgoing, error) {
	const op = errors.Op("chat.Compose")

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Outgoing{}, ErrEmpty
	}
	msg := r.quote + trimmed
	if len(msg) > MaxMessageBytes {
		return Outgoing{}, errors.TextTooLong(MaxMessageBytes)
	}
	html, err := markup.Convert(msg)
	if err != nil {
		return Outgoing{}, errors.E(op, errors.KindInvalidArgument, err)
	}
	if html == "" {
		return Outgoing{}, ErrEmpty
	}

	out := Outgoing{Draft: input, Quote: r.quote}
	r.ClearQuote()

	out.Record = remote.Record{
		Key:      r.keys.NewKey(),
		SenderID: r.userID,
		Body:     codec.Encode(html),
		SentAt:   remote.NewTimestamp(r.sched.Now()),
	}
	ph := &Message{
		Record:  out.Record,
		HTML:    markup.Sanitize(html),
		FromMe:  true,
		Pending: true,
	}
	r.placeholders[out.Record.Key] = ph
	r.view.AppendBubble(*ph)
	r.view.ScrollToBottom()
	return out, nil
}

// Sent records that the remote accepted out.
func (r *Room) Sent(out Outgoing) {
	r.log.Debug().Str("key", out.Record.Key).Msg("send acknowledged")
}

// SendFailed rolls back an optimistic send and restores the draft. The
// returned error is user-facing for permission failures.
func (r *Room) SendFailed(out Outgoing, err error) error {
	const op = errors.Op("chat.Send")
	if ph, ok := r.placeholders[out.Record.Key]; ok {
		delete(r.placeholders, out.Record.Key)
		r.view.RemoveBubble(ph.BubbleKey())
	}
	if out.Quote != "" && r.quote == "" {
		r.quote = out.Quote
		r.quoteKey = quotedKey(out.Quote)
	}
	r.view.SetDraft(out.Draft)
	return r.classify(op, err)
}

func quotedKey(quote string) string {
	if keys := markup.QuotedKeys(quote); len(keys) > 0 {
		return keys[0]
	}
	return ""
}

func (r *Room) classify(op errors.Op, err error) error {
	r.log.Error().Err(err).Str("op", string(op)).Msg("remote write failed")
	if errors.IsPermissionText(err) {
		return errors.E(op, errors.KindPermission, textActionDenied)
	}
	return errors.RemoteFailed(op, err)
}

// CheckRetract decides whether the local user may retract key now.
func (r *Room) CheckRetract(key string) error {
	m, ok := r.messages[key]
	if !ok {
		return errors.MessageNotFound(key)
	}
	if m.Record.SenderID != r.userID {
		return errors.RetractNotAllowed(textNotOwner)
	}
	if r.sched.Now().UnixMilli()-m.Record.SentAt.Stamp > RetractWindow.Milliseconds() {
		return errors.RetractNotAllowed(textTooOld)
	}
	return nil
}

// RetractFailed classifies a failed remote delete.
func (r *Room) RetractFailed(key string, err error) error {
	return r.classify(errors.Op("chat.Retract"), err)
}

// Quote makes the next outgoing message quote key.
func (r *Room) Quote(key string) error {
	m, ok := r.messages[key]
	if !ok {
		return errors.MessageNotFound(key)
	}
	r.quote = markup.Quote(key, m.HTML)
	r.quoteKey = key
	return nil
}

// ClearQuote drops the pending quote.
func (r *Room) ClearQuote() {
	r.quote = ""
	r.quoteKey = ""
}

// QuoteKey returns the key being quoted, or "".
func (r *Room) QuoteKey() string { return r.quoteKey }

// FollowQuote scrolls to the quoted message and marks it for
// HighlightDuration. A new call restarts the timer.
func (r *Room) FollowQuote(key string) bool {
	if _, ok := r.messages[key]; !ok {
		return false
	}
	if !r.view.ScrollTo(key) {
		return false
	}
	if r.highlight != nil {
		r.highlight.Cancel()
		if r.highlighted != key {
			r.view.Highlight(r.highlighted, false)
		}
	}
	r.highlighted = key
	r.view.Highlight(key, true)
	r.highlight = r.sched.After(HighlightDuration, func() {
		r.view.Highlight(key, false)
		r.highlighted = ""
		r.highlight = nil
	})
	return true
}

// Highlighted returns the key currently marked by FollowQuote, or "".
func (r *Room) Highlighted() string { return r.highlighted }

// Preview renders what input would send, or "" when there is nothing.
func (r *Room) Preview(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" && r.quote == "" {
		return ""
	}
	html, err := markup.Convert(r.quote + trimmed)
	if err != nil {
		r.log.Warn().Err(err).Msg("preview conversion failed")
		return ""
	}
	return markup.Sanitize(html)
}

// CopyText returns the clipboard text of key.
func (r *Room) CopyText(key string) (string, error) {
	m, ok := r.messages[key]
	if !ok {
		return "", errors.MessageNotFound(key)
	}
	return markup.PlainText(m.HTML), nil
}

// Images returns the images in key's body.
func (r *Room) Images(key string) []markup.Image {
	m, ok := r.messages[key]
	if !ok {
		return nil
	}
	return markup.Images(m.HTML)
}
