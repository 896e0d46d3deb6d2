package telemetry

import (
	"time"

	"github.com/pthm-cable/keepsake/components"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// Counts are cumulative lifecycle counters.
type Counts struct {
	Spawned   int
	Expired   int
	Evicted   int
	Throttled int
	Rejected  int
	Dropped   int
	Cancelled int
	Cleared   int
}

// Collector accumulates source lifecycle notifications within time windows
// and produces WindowStats. Its methods match the effect source hooks so it
// can be installed directly. Not safe for concurrent use.
type Collector struct {
	clock          Clock
	start          time.Time
	windowDuration time.Duration
	windowStart    time.Time

	window Counts
	totals Counts

	ages      []float64 // seconds, expired particles
	lifetimes []float64 // seconds, spawned particles

	logEvents bool
	events    []Event
}

// NewCollector creates a collector with the given window length.
func NewCollector(window time.Duration, clock Clock) *Collector {
	if window <= 0 {
		window = 10 * time.Second
	}
	now := clock.Now()
	return &Collector{
		clock:          clock,
		start:          now,
		windowDuration: window,
		windowStart:    now,
	}
}

// EnableEventLog makes the collector buffer one Event per notification.
func (c *Collector) EnableEventLog() {
	c.logEvents = true
}

func (c *Collector) since() time.Duration {
	return c.clock.Now().Sub(c.start)
}

func (c *Collector) record(e Event) {
	if c.logEvents {
		c.events = append(c.events, e)
	}
}

// Spawned records a particle entering a registry.
func (c *Collector) Spawned(source components.SourceID, p components.Particle) {
	c.window.Spawned++
	c.totals.Spawned++
	c.lifetimes = append(c.lifetimes, p.Lifetime.Seconds())
	c.record(NewSpawnEvent(c.since(), source, p))
}

// Expired records a particle retired by its expiry timer.
func (c *Collector) Expired(source components.SourceID, p components.Particle, at time.Time) {
	c.window.Expired++
	c.totals.Expired++
	c.ages = append(c.ages, p.Age(at).Seconds())
	c.record(NewExpireEvent(c.since(), source, p, at))
}

// Evicted records a particle dropped to respect capacity.
func (c *Collector) Evicted(source components.SourceID, p components.Particle, at time.Time) {
	c.window.Evicted++
	c.totals.Evicted++
	c.record(NewEvictEvent(c.since(), source, p, at))
}

// Throttled records an interaction denied by a throttle gate.
func (c *Collector) Throttled(source components.SourceID, _ time.Time) {
	c.window.Throttled++
	c.totals.Throttled++
	c.record(NewThrottleEvent(c.since(), source))
}

// Rejected records an interaction that produced no particles.
func (c *Collector) Rejected(source components.SourceID, _ components.Interaction) {
	c.window.Rejected++
	c.totals.Rejected++
	c.record(NewRejectEvent(c.since(), source))
}

// Dropped records an interaction that reached an unmounted source.
func (c *Collector) Dropped(source components.SourceID, _ components.Interaction) {
	c.window.Dropped++
	c.totals.Dropped++
	c.record(NewDropEvent(c.since(), source))
}

// TornDown records a source unmount.
func (c *Collector) TornDown(source components.SourceID, cancelled, cleared int) {
	c.window.Cancelled += cancelled
	c.totals.Cancelled += cancelled
	c.window.Cleared += cleared
	c.totals.Cleared += cleared
	c.record(NewTeardownEvent(c.since(), source, cancelled))
}

// Totals returns the counters accumulated since the collector was created.
func (c *Collector) Totals() Counts {
	return c.totals
}

// ShouldFlush returns true if the current window has elapsed.
func (c *Collector) ShouldFlush(now time.Time) bool {
	return now.Sub(c.windowStart) >= c.windowDuration
}

// Flush produces a WindowStats and resets counters for the next window.
// live and sources describe the engine at now.
func (c *Collector) Flush(now time.Time, live, sources int) WindowStats {
	elapsed := now.Sub(c.windowStart).Seconds()

	var spawnRate, evictRatio float64
	if elapsed > 0 {
		spawnRate = float64(c.window.Spawned) / elapsed
	}
	if c.window.Spawned > 0 {
		evictRatio = float64(c.window.Evicted) / float64(c.window.Spawned)
	}

	ageMean, ageStd, p10, p50, p90 := ComputeAgeStats(c.ages)
	lifeMean, _, _, _, _ := ComputeAgeStats(c.lifetimes)
	var lifeMax float64
	for _, l := range c.lifetimes {
		lifeMax = max(lifeMax, l)
	}

	stats := WindowStats{
		WindowStartSec: c.windowStart.Sub(c.start).Seconds(),
		WindowEndSec:   now.Sub(c.start).Seconds(),
		Live:           live,
		Sources:        sources,
		Spawned:        c.window.Spawned,
		Expired:        c.window.Expired,
		Evicted:        c.window.Evicted,
		Throttled:      c.window.Throttled,
		Rejected:       c.window.Rejected,
		Dropped:        c.window.Dropped,
		Cancelled:      c.window.Cancelled,
		SpawnRate:      spawnRate,
		EvictRatio:     evictRatio,
		AgeMean:        ageMean,
		AgeStd:         ageStd,
		AgeP10:         p10,
		AgeP50:         p50,
		AgeP90:         p90,
		LifetimeMean:   lifeMean,
		LifetimeMax:    lifeMax,
	}

	c.window = Counts{}
	c.ages = c.ages[:0]
	c.lifetimes = c.lifetimes[:0]
	c.windowStart = now
	return stats
}

// DrainEvents returns and clears the buffered event log.
func (c *Collector) DrainEvents() []Event {
	out := c.events
	c.events = nil
	return out
}
