package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/parleychat/parley/internal/errors"
)

// Memory is an in-process Log used for offline mode and tests.
type Memory struct {
	mu       sync.Mutex
	clock    clock.Clock
	keys     *KeyGen
	records  map[string]Record
	order    []string
	feeds    map[*feed]struct{}
	failNext error
	readOnly bool
	closed   bool
}

// NewMemory returns an empty log. A nil clock means the wall clock.
func NewMemory(c clock.Clock) *Memory {
	if c == nil {
		c = clock.New()
	}
	return &Memory{
		clock:   c,
		keys:    NewKeyGen(),
		records: make(map[string]Record),
		feeds:   make(map[*feed]struct{}),
	}
}

// Seed stores records without notifying subscribers.
func (m *Memory) Seed(recs ...Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recs {
		if _, ok := m.records[r.Key]; !ok {
			m.order = append(m.order, r.Key)
		}
		m.records[r.Key] = r
	}
}

// FailNext makes the next Create or Delete return err.
func (m *Memory) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// SetReadOnly makes every write fail with a permission error.
func (m *Memory) SetReadOnly(ro bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readOnly = ro
}

// Records returns the stored records in insertion order.
func (m *Memory) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.records[k])
	}
	return out
}

func (m *Memory) Subscribe(ctx context.Context) (<-chan Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.E(errors.Op("remote.Subscribe"), errors.KindInvalidState, "log is closed")
	}

	f := newFeed()
	for _, k := range m.order {
		f.push(Event{Kind: EventAdded, Record: m.records[k]})
	}
	m.feeds[f] = struct{}{}
	go f.run(ctx, func() {
		m.mu.Lock()
		delete(m.feeds, f)
		m.mu.Unlock()
	})
	return f.out, nil
}

func (m *Memory) NewKey() string {
	return m.keys.Next(m.clock.Now())
}

func (m *Memory) checkWrite(op errors.Op) error {
	if m.closed {
		return errors.E(op, errors.KindInvalidState, "log is closed")
	}
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}
	if m.readOnly {
		return errors.E(op, errors.KindPermission, "PERMISSION_DENIED: permission denied")
	}
	return nil
}

func (m *Memory) Create(ctx context.Context, rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkWrite("remote.Create"); err != nil {
		return err
	}
	if _, ok := m.records[rec.Key]; ok {
		return errors.E(errors.Op("remote.Create"), errors.KindInvalidState, fmt.Sprintf("record %s already exists", rec.Key))
	}
	m.records[rec.Key] = rec
	m.order = append(m.order, rec.Key)
	m.publishLocked(Event{Kind: EventAdded, Record: rec})
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkWrite("remote.Delete"); err != nil {
		return err
	}
	rec, ok := m.records[key]
	if !ok {
		return nil
	}
	delete(m.records, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.publishLocked(Event{Kind: EventRemoved, Record: rec})
	return nil
}

// Fail pushes an error notification to every subscriber.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishLocked(Event{Kind: EventError, Err: err})
}

func (m *Memory) publishLocked(ev Event) {
	for f := range m.feeds {
		f.push(ev)
	}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for f := range m.feeds {
		f.stop()
	}
	return nil
}
