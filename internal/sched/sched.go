// Package sched is the single-threaded timer queue behind every delayed UI
// action: overlay transitions, long-press thresholds and highlight expiry.
//
// Tasks never run on their own goroutine. The owner calls RunDue from its
// event loop whenever the deadline reported by Next has passed, so callbacks
// run with the same guarantees as any other state change.
package sched

import (
	"container/heap"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Task is a handle to a scheduled callback.
type Task struct {
	s     *Scheduler
	seq   uint64
	due   time.Time
	fn    func()
	index int // position in the heap, -1 once removed
}

// Cancel prevents the task from running. It reports whether the task was
// still pending. Cancelling a nil, fired or already cancelled task is a
// no-op.
func (t *Task) Cancel() bool {
	if t == nil || t.s == nil {
		return false
	}
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.index < 0 {
		return false
	}
	heap.Remove(&s.queue, t.index)
	return true
}

// Pending reports whether the task is still waiting to run.
func (t *Task) Pending() bool {
	if t == nil || t.s == nil {
		return false
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.index >= 0
}

// Due returns the time the task becomes runnable.
func (t *Task) Due() time.Time {
	return t.due
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*Task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler orders tasks by deadline, then by scheduling order.
type Scheduler struct {
	mu    sync.Mutex
	clock clock.Clock
	queue taskQueue
	seq   uint64
}

// New creates a scheduler reading time from c. A nil clock means the wall
// clock.
func New(c clock.Clock) *Scheduler {
	if c == nil {
		c = clock.New()
	}
	return &Scheduler{clock: c}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Clock returns the clock the scheduler reads.
func (s *Scheduler) Clock() clock.Clock {
	return s.clock
}

// After schedules fn to run once d has elapsed. Negative durations are
// treated as zero.
func (s *Scheduler) After(d time.Duration, fn func()) *Task {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &Task{s: s, seq: s.seq, due: s.clock.Now().Add(d), fn: fn}
	heap.Push(&s.queue, t)
	return t
}

// RunDue runs every task whose deadline has passed, including tasks that
// those callbacks schedule with an already-passed deadline. It returns the
// number of callbacks run.
func (s *Scheduler) RunDue() int {
	ran := 0
	for {
		s.mu.Lock()
		if len(s.queue) == 0 || s.queue[0].due.After(s.clock.Now()) {
			s.mu.Unlock()
			return ran
		}
		t := heap.Pop(&s.queue).(*Task)
		s.mu.Unlock()

		if t.fn != nil {
			t.fn()
		}
		ran++
	}
}

// Next reports how long until the earliest pending task is due. The
// boolean is false when nothing is pending.
func (s *Scheduler) Next() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return 0, false
	}
	d := s.queue[0].due.Sub(s.clock.Now())
	if d < 0 {
		d = 0
	}
	return d, true
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
