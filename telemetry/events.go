// Package telemetry tracks effect engine activity: lifecycle events,
// windowed statistics, frame timing and CSV output.
package telemetry

import (
	"time"

	"github.com/pthm-cable/keepsake/components"
)

// EventType identifies telemetry events.
type EventType uint8

const (
	EventSpawn EventType = iota
	EventExpire
	EventEvict
	EventThrottle
	EventReject
	EventDrop
	EventTeardown
)

var eventNames = [...]string{
	EventSpawn:    "spawn",
	EventExpire:   "expire",
	EventEvict:    "evict",
	EventThrottle: "throttle",
	EventReject:   "reject",
	EventDrop:     "drop",
	EventTeardown: "teardown",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (t EventType) MarshalCSV() (string, error) {
	return t.String(), nil
}

// Event is one row of the lifecycle event log.
type Event struct {
	Type       EventType           `csv:"event"`
	AtMS       int64               `csv:"at_ms"` // Milliseconds since the collector started
	Source     components.SourceID `csv:"source"`
	Kind       string              `csv:"kind"`
	ParticleID uint64              `csv:"particle"`
	AgeMS      int64               `csv:"age_ms"`      // Expire/evict only
	LifetimeMS int64               `csv:"lifetime_ms"` // Spawn/expire/evict
	Count      int                 `csv:"count"`       // Teardown: cancelled timers
}

// NewSpawnEvent records a particle entering a registry.
func NewSpawnEvent(at time.Duration, source components.SourceID, p components.Particle) Event {
	return Event{
		Type:       EventSpawn,
		AtMS:       at.Milliseconds(),
		Source:     source,
		Kind:       p.Kind.String(),
		ParticleID: uint64(p.ID),
		LifetimeMS: p.Lifetime.Milliseconds(),
	}
}

// NewExpireEvent records a particle retired by its timer.
func NewExpireEvent(at time.Duration, source components.SourceID, p components.Particle, now time.Time) Event {
	return Event{
		Type:       EventExpire,
		AtMS:       at.Milliseconds(),
		Source:     source,
		Kind:       p.Kind.String(),
		ParticleID: uint64(p.ID),
		AgeMS:      p.Age(now).Milliseconds(),
		LifetimeMS: p.Lifetime.Milliseconds(),
	}
}

// NewEvictEvent records a particle dropped early to make room.
func NewEvictEvent(at time.Duration, source components.SourceID, p components.Particle, now time.Time) Event {
	e := NewExpireEvent(at, source, p, now)
	e.Type = EventEvict
	return e
}

// NewThrottleEvent records an interaction denied by the throttle gate.
func NewThrottleEvent(at time.Duration, source components.SourceID) Event {
	return Event{Type: EventThrottle, AtMS: at.Milliseconds(), Source: source}
}

// NewRejectEvent records an interaction that could not produce particles.
func NewRejectEvent(at time.Duration, source components.SourceID) Event {
	return Event{Type: EventReject, AtMS: at.Milliseconds(), Source: source}
}

// NewDropEvent records an interaction that reached an unmounted source.
func NewDropEvent(at time.Duration, source components.SourceID) Event {
	return Event{Type: EventDrop, AtMS: at.Milliseconds(), Source: source}
}

// NewTeardownEvent records a source unmount.
func NewTeardownEvent(at time.Duration, source components.SourceID, cancelled int) Event {
	return Event{Type: EventTeardown, AtMS: at.Milliseconds(), Source: source, Count: cancelled}
}
