package systems

import "time"

// ThrottleGate enforces a minimum interval between accepted events of one
// interaction stream.
type ThrottleGate struct {
	minInterval time.Duration
	lastEmitAt  time.Time
	emitted     bool
}

// NewThrottleGate creates a gate. A non-positive interval accepts every event.
func NewThrottleGate(minInterval time.Duration) *ThrottleGate {
	return &ThrottleGate{minInterval: minInterval}
}

// TryEmit accepts the event at now if at least minInterval has passed since
// the last accepted one. A denied event leaves the gate unchanged.
func (g *ThrottleGate) TryEmit(now time.Time) bool {
	if g.minInterval > 0 && g.emitted && now.Sub(g.lastEmitAt) < g.minInterval {
		return false
	}
	g.lastEmitAt = now
	g.emitted = true
	return true
}

// MinInterval returns the configured interval.
func (g *ThrottleGate) MinInterval() time.Duration {
	return g.minInterval
}

// LastEmitAt returns the time of the last accepted event.
func (g *ThrottleGate) LastEmitAt() (time.Time, bool) {
	return g.lastEmitAt, g.emitted
}

// Reset forgets the last accepted event.
func (g *ThrottleGate) Reset() {
	g.lastEmitAt = time.Time{}
	g.emitted = false
}
