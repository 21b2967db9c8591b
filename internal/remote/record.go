// Package remote defines the chat room's remote message log: the record
// shape stored per message, the added/removed notifications a subscriber
// receives, and the Log interface that transports implement.
package remote

import (
	"fmt"
	"time"

	"github.com/parleychat/parley/internal/errors"
)

// Timestamp is the broken-down send time stored with every record.
type Timestamp struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"` // 1-12
	MonthName string `json:"monthname"`
	Date      int    `json:"date"`
	Day       int    `json:"day"` // 0 = Sunday
	DayName   string `json:"dayname"`
	Stamp     int64  `json:"stamp"` // ms since the Unix epoch
	Clock     string `json:"time"`  // "HH:MM:SS Zone"
}

// NewTimestamp breaks t down in its own location.
func NewTimestamp(t time.Time) Timestamp {
	zone := t.Location().String()
	if zone == "" || zone == "Local" {
		zone, _ = t.Zone()
	}
	return Timestamp{
		Year:      t.Year(),
		Month:     int(t.Month()),
		MonthName: t.Month().String(),
		Date:      t.Day(),
		Day:       int(t.Weekday()),
		DayName:   t.Weekday().String(),
		Stamp:     t.UnixMilli(),
		Clock:     fmt.Sprintf("%s %s", t.Format("15:04:05"), zone),
	}
}

// Time returns the instant the stamp records.
func (ts Timestamp) Time() time.Time {
	return time.UnixMilli(ts.Stamp)
}

// DateLine formats the date as "Mon, Jan 2, 2006" from the stored names.
func (ts Timestamp) DateLine() string {
	return fmt.Sprintf("%s, %s %d, %d", abbrev(ts.DayName), abbrev(ts.MonthName), ts.Date, ts.Year)
}

func abbrev(name string) string {
	r := []rune(name)
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}

// Record is one message in the remote log. Records are immutable: a
// message is either present or deleted.
type Record struct {
	Key      string    `json:"pushkey"`
	SenderID string    `json:"uid"`
	Body     string    `json:"message"` // transport-encoded HTML
	SentAt   Timestamp `json:"time"`
}

// Validate checks the fields every stored record must carry.
func (r Record) Validate() error {
	switch {
	case r.Key == "":
		return errors.E(errors.Op("remote.Record"), errors.KindInvalidArgument, "record has no push key")
	case r.SenderID == "":
		return errors.E(errors.Op("remote.Record"), errors.KindInvalidArgument, fmt.Sprintf("record %s has no sender", r.Key))
	}
	return nil
}

// EventKind is the type of a subscription notification.
type EventKind int

const (
	EventAdded EventKind = iota
	EventRemoved
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	default:
		return "error"
	}
}

// Event is one subscription notification. Err is set only for EventError.
type Event struct {
	Kind   EventKind
	Record Record
	Err    error
}
