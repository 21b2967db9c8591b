package remote

import "context"

// Log is a room's remote message log.
type Log interface {
	// Subscribe replays every existing record as EventAdded and then
	// streams changes until ctx is done or the log closes, at which point
	// the channel is closed.
	Subscribe(ctx context.Context) (<-chan Event, error)

	// NewKey returns a fresh, time-ordered push key.
	NewKey() string

	// Create stores rec under rec.Key.
	Create(ctx context.Context, rec Record) error

	// Delete removes the record stored under key.
	Delete(ctx context.Context, key string) error

	Close() error
}
