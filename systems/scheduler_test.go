package systems

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestSchedulerFiresInDueOrder verifies timers fire earliest first, ties by arm order.
func TestSchedulerFiresInDueOrder(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)

	var fired []string
	arm := func(name string, d time.Duration) {
		s.Arm("src", 0, d, func() { fired = append(fired, name) })
	}
	arm("c", 300*time.Millisecond)
	arm("a", 100*time.Millisecond)
	arm("b1", 200*time.Millisecond)
	arm("b2", 200*time.Millisecond)

	if n := s.Advance(clock.Advance(150 * time.Millisecond)); n != 1 {
		t.Errorf("first Advance fired %d, want 1", n)
	}
	if n := s.Advance(clock.Advance(time.Second)); n != 3 {
		t.Errorf("second Advance fired %d, want 3", n)
	}
	if diff := cmp.Diff([]string{"a", "b1", "b2", "c"}, fired); diff != "" {
		t.Errorf("fire order mismatch (-want +got):\n%s", diff)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d after all fired", s.Pending())
	}
}

// TestSchedulerCancel verifies cancelled timers never fire.
func TestSchedulerCancel(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)

	fired := 0
	id := s.Arm("src", 1, time.Second, func() { fired++ })
	s.Arm("src", 2, 2*time.Second, func() { fired++ })

	if !s.Cancel(id) {
		t.Fatal("Cancel of armed timer returned false")
	}
	if s.Cancel(id) {
		t.Error("second Cancel returned true")
	}
	s.Advance(clock.Advance(5 * time.Second))
	if fired != 1 {
		t.Errorf("fired %d timers, want 1", fired)
	}
}

// TestSchedulerCancelAll verifies only the owner's timers are removed.
func TestSchedulerCancelAll(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)

	fired := map[string]int{}
	for i := 0; i < 5; i++ {
		s.Arm("hearts", 0, time.Duration(i+1)*time.Second, func() { fired["hearts"]++ })
	}
	s.Arm("notes", 0, 3*time.Second, func() { fired["notes"]++ })

	if n := s.CancelAll("hearts"); n != 5 {
		t.Errorf("CancelAll returned %d, want 5", n)
	}
	if s.PendingFor("hearts") != 0 || s.PendingFor("notes") != 1 {
		t.Errorf("pending after CancelAll: hearts=%d notes=%d", s.PendingFor("hearts"), s.PendingFor("notes"))
	}
	s.Advance(clock.Advance(10 * time.Second))
	if diff := cmp.Diff(map[string]int{"notes": 1}, fired); diff != "" {
		t.Errorf("fired mismatch (-want +got):\n%s", diff)
	}
}

// TestSchedulerRearmFromCallback verifies callbacks can arm new timers.
func TestSchedulerRearmFromCallback(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)

	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		s.Arm("ambient", 0, time.Second, tick)
	}
	s.Arm("ambient", 0, time.Second, tick)

	for i := 0; i < 5; i++ {
		s.Advance(clock.Advance(time.Second))
	}
	if ticks != 5 {
		t.Errorf("ticks = %d, want 5", ticks)
	}
	due, ok := s.NextDue()
	if !ok || !due.Equal(epoch.Add(6*time.Second)) {
		t.Errorf("NextDue() = %v, %v; want %v", due, ok, epoch.Add(6*time.Second))
	}
}

func TestSchedulerNextDueEmpty(t *testing.T) {
	s := NewScheduler(NewManualClock(epoch))
	if _, ok := s.NextDue(); ok {
		t.Error("NextDue on empty scheduler reported ok")
	}
	if n := s.Advance(epoch.Add(time.Hour)); n != 0 {
		t.Errorf("Advance on empty scheduler fired %d", n)
	}
}
