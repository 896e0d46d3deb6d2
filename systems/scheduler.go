package systems

import (
	"container/heap"
	"time"

	"github.com/pthm-cable/keepsake/components"
)

// TimerID identifies an armed timer.
type TimerID uint64

type timer struct {
	id       TimerID
	seq      uint64
	due      time.Time
	owner    components.SourceID
	particle components.ParticleID
	fire     func()
	index    int
}

// timerQueue orders timers by due time, then by arm order.
type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler arms one-shot expiry timers and fires them when driven past
// their due time. It never starts goroutines; the owner calls Advance from
// its loop, or a test calls it with a manual clock.
type Scheduler struct {
	clock  Clock
	queue  timerQueue
	byID   map[TimerID]*timer
	nextID TimerID
	seq    uint64
}

// NewScheduler creates a scheduler that measures lifetimes from clock.
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{
		clock: clock,
		byID:  make(map[TimerID]*timer),
	}
}

// Arm schedules onExpire to run lifetime from now, on behalf of owner.
func (s *Scheduler) Arm(owner components.SourceID, particle components.ParticleID, lifetime time.Duration, onExpire func()) TimerID {
	return s.ArmAt(owner, particle, s.clock.Now().Add(lifetime), onExpire)
}

// ArmAt schedules onExpire at an absolute due time.
func (s *Scheduler) ArmAt(owner components.SourceID, particle components.ParticleID, due time.Time, onExpire func()) TimerID {
	s.nextID++
	s.seq++
	t := &timer{
		id:       s.nextID,
		seq:      s.seq,
		due:      due,
		owner:    owner,
		particle: particle,
		fire:     onExpire,
	}
	heap.Push(&s.queue, t)
	s.byID[t.id] = t
	return t.id
}

// Cancel removes a single timer. Returns false if it already fired or was cancelled.
func (s *Scheduler) Cancel(id TimerID) bool {
	t, ok := s.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&s.queue, t.index)
	delete(s.byID, id)
	return true
}

// CancelAll removes every outstanding timer owned by owner and returns how
// many were cancelled. None of them will fire afterwards.
func (s *Scheduler) CancelAll(owner components.SourceID) int {
	kept := s.queue[:0]
	cancelled := 0
	for _, t := range s.queue {
		if t.owner == owner {
			delete(s.byID, t.id)
			cancelled++
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(s.queue); i++ {
		s.queue[i] = nil
	}
	s.queue = kept
	for i, t := range s.queue {
		t.index = i
	}
	heap.Init(&s.queue)
	return cancelled
}

// Advance fires every timer due at or before now, earliest first, and returns
// how many fired. Callbacks may arm or cancel other timers; a timer armed
// with a due time <= now during Advance fires in the same call.
func (s *Scheduler) Advance(now time.Time) int {
	fired := 0
	for len(s.queue) > 0 {
		next := s.queue[0]
		if next.due.After(now) {
			break
		}
		heap.Pop(&s.queue)
		delete(s.byID, next.id)
		fired++
		if next.fire != nil {
			next.fire()
		}
	}
	return fired
}

// Pending returns the number of outstanding timers.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// PendingFor returns the number of outstanding timers owned by owner.
func (s *Scheduler) PendingFor(owner components.SourceID) int {
	n := 0
	for _, t := range s.queue {
		if t.owner == owner {
			n++
		}
	}
	return n
}

// NextDue returns the due time of the earliest outstanding timer.
func (s *Scheduler) NextDue() (time.Time, bool) {
	if len(s.queue) == 0 {
		return time.Time{}, false
	}
	return s.queue[0].due, true
}

// Now returns the scheduler clock's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}
