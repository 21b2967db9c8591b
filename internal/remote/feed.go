package remote

import (
	"context"
	"sync"
)

// feed delivers events to one subscriber in order without ever blocking
// the publisher: events queue until the subscriber's goroutine hands them
// to the consumer.
type feed struct {
	out   chan Event
	mu    sync.Mutex
	queue []Event
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newFeed() *feed {
	return &feed{
		out:  make(chan Event),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (f *feed) push(ev Event) {
	f.mu.Lock()
	f.queue = append(f.queue, ev)
	f.mu.Unlock()
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// stop ends delivery after the queued events drain.
func (f *feed) stop() {
	f.once.Do(func() { close(f.done) })
}

func (f *feed) run(ctx context.Context, onExit func()) {
	defer close(f.out)
	defer onExit()

	stopping := false
	for {
		f.mu.Lock()
		if len(f.queue) == 0 {
			f.mu.Unlock()
			if stopping {
				return
			}
			select {
			case <-f.wake:
			case <-f.done:
				stopping = true
			case <-ctx.Done():
				return
			}
			continue
		}
		ev := f.queue[0]
		f.queue[0] = Event{}
		f.queue = f.queue[1:]
		f.mu.Unlock()

		select {
		case f.out <- ev:
		case <-ctx.Done():
			return
		}
	}
}
