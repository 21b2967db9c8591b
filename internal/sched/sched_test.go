package sched

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestRunDue_RespectsDeadline(t *testing.T) {
	mock := clock.NewMock()
	s := New(mock)

	ran := false
	task := s.After(200*time.Millisecond, func() { ran = true })

	mock.Add(199 * time.Millisecond)
	if n := s.RunDue(); n != 0 || ran {
		t.Fatalf("task ran early (n=%d)", n)
	}
	if !task.Pending() {
		t.Error("task should still be pending")
	}

	mock.Add(time.Millisecond)
	if n := s.RunDue(); n != 1 || !ran {
		t.Fatalf("task should run at its deadline (n=%d)", n)
	}
	if task.Pending() {
		t.Error("task should not be pending after running")
	}
}

func TestRunDue_Order(t *testing.T) {
	mock := clock.NewMock()
	s := New(mock)

	var order []string
	s.After(600*time.Millisecond, func() { order = append(order, "menu") })
	s.After(200*time.Millisecond, func() { order = append(order, "press") })
	s.After(200*time.Millisecond, func() { order = append(order, "press2") })

	mock.Add(time.Second)
	s.RunDue()

	want := []string{"press", "press2", "menu"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestCancel(t *testing.T) {
	mock := clock.NewMock()
	s := New(mock)

	ran := false
	task := s.After(10*time.Second, func() { ran = true })
	if !task.Cancel() {
		t.Error("Cancel should report a pending task")
	}
	if task.Cancel() {
		t.Error("second Cancel should be a no-op")
	}

	mock.Add(time.Minute)
	s.RunDue()
	if ran {
		t.Error("cancelled task ran")
	}

	var nilTask *Task
	if nilTask.Cancel() || nilTask.Pending() {
		t.Error("nil task should be inert")
	}
}

func TestRunDue_ChainedZeroDelay(t *testing.T) {
	mock := clock.NewMock()
	s := New(mock)

	steps := 0
	s.After(0, func() {
		steps++
		s.After(0, func() { steps++ })
		s.After(time.Second, func() { steps += 100 })
	})

	if n := s.RunDue(); n != 2 {
		t.Errorf("RunDue() = %d, want 2", n)
	}
	if steps != 2 {
		t.Errorf("steps = %d, want 2", steps)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestNext(t *testing.T) {
	mock := clock.NewMock()
	s := New(mock)

	if _, ok := s.Next(); ok {
		t.Error("empty scheduler should report nothing pending")
	}

	s.After(250*time.Millisecond, func() {})
	s.After(100*time.Millisecond, func() {})
	d, ok := s.Next()
	if !ok || d != 100*time.Millisecond {
		t.Errorf("Next() = %v, %v", d, ok)
	}

	mock.Add(time.Second)
	if d, _ := s.Next(); d != 0 {
		t.Errorf("overdue Next() = %v, want 0", d)
	}
}

func TestCancelInsideCallback(t *testing.T) {
	mock := clock.NewMock()
	s := New(mock)

	var later *Task
	ranLater := false
	s.After(time.Millisecond, func() { later.Cancel() })
	later = s.After(2*time.Millisecond, func() { ranLater = true })

	mock.Add(time.Second)
	s.RunDue()
	if ranLater {
		t.Error("task cancelled by an earlier callback still ran")
	}
}
