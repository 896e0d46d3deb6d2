package systems

import "github.com/pthm-cable/keepsake/components"

// Registry holds the live particles of one effect source, in insertion order.
// It is owned by a single source and is not safe for concurrent use.
type Registry struct {
	ring *Ring[components.Particle]
	live map[components.ParticleID]struct{}
}

// NewRegistry creates a registry bounded to capacity particles.
func NewRegistry(capacity int) *Registry {
	ring := NewRing[components.Particle](capacity)
	return &Registry{
		ring: ring,
		live: make(map[components.ParticleID]struct{}, ring.Cap()),
	}
}

// Insert appends p. When the registry is full the oldest particle is evicted
// first and returned with ok=true.
func (r *Registry) Insert(p components.Particle) (evicted components.Particle, ok bool) {
	evicted, ok = r.ring.PushBack(p)
	if ok {
		delete(r.live, evicted.ID)
	}
	r.live[p.ID] = struct{}{}
	return evicted, ok
}

// Remove drops the particle with the given id and returns it. Removing an id
// that is not present (already expired or evicted) is a no-op and returns false.
func (r *Registry) Remove(id components.ParticleID) (components.Particle, bool) {
	if _, ok := r.live[id]; !ok {
		return components.Particle{}, false
	}
	delete(r.live, id)
	return r.ring.RemoveFunc(func(p components.Particle) bool { return p.ID == id })
}

// Contains reports whether id is live.
func (r *Registry) Contains(id components.ParticleID) bool {
	_, ok := r.live[id]
	return ok
}

// Snapshot returns a copy of the live particles, oldest first.
func (r *Registry) Snapshot() []components.Particle {
	return r.ring.AppendTo(make([]components.Particle, 0, r.ring.Len()))
}

// Len returns the number of live particles.
func (r *Registry) Len() int { return r.ring.Len() }

// Cap returns the capacity bound.
func (r *Registry) Cap() int { return r.ring.Cap() }

// Clear drops every particle and returns how many were live.
func (r *Registry) Clear() int {
	clear(r.live)
	return r.ring.Clear()
}
