package chat

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/parleychat/parley/internal/errors"
	"github.com/parleychat/parley/internal/markup"
)

// Details describes one message for the details dialog.
type Details struct {
	Sender string // "You" or the sender's uid
	Date   string // "Mon, Jan 2, 2006"
	Clock  string // "15:04:05 Zone"
	Age    string // "3 minutes ago"

	UserID string
	Key    string
	HTML   string
}

// Details returns the details of key.
func (r *Room) Details(key string) (Details, error) {
	m, ok := r.messages[key]
	if !ok {
		return Details{}, errors.MessageNotFound(key)
	}
	d := Details{
		Sender: m.Record.SenderID,
		Date:   m.Record.SentAt.DateLine(),
		Clock:  m.Record.SentAt.Clock,
		Age:    humanize.RelTime(m.Record.SentAt.Time(), r.sched.Now(), "ago", "from now"),
		UserID: m.Record.SenderID,
		Key:    m.Record.Key,
		HTML:   m.HTML,
	}
	if m.FromMe {
		d.Sender = "You"
	}
	return d, nil
}

// Summary is the details dialog body as HTML.
func (d Details) Summary() string {
	rows := []string{
		"<b>Sent by:</b> " + markup.EscapeTags(d.Sender),
		"<b>Sent on:</b> " + d.Date,
		"<b>Sent at:</b> " + d.Clock,
		"<i>" + d.Age + "</i>",
	}
	return "<p>" + strings.Join(rows, "<br>") + "</p>"
}

// Advanced is the raw-data alert body as HTML. The message source is
// escaped so it shows as text.
func (d Details) Advanced() string {
	return fmt.Sprintf("<p><b>User ID:</b> %s<br><b>Push key:</b> %s</p><p><b>HTML:</b></p><pre>%s</pre>",
		markup.EscapeTags(d.UserID), markup.EscapeTags(d.Key), markup.EscapeTags(d.HTML))
}
