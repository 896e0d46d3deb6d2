package systems

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/keepsake/components"
)

// Hooks receives lifecycle notifications from effect sources.
// Implementations are called synchronously from the engine loop.
type Hooks interface {
	Spawned(source components.SourceID, p components.Particle)
	Expired(source components.SourceID, p components.Particle, at time.Time)
	Evicted(source components.SourceID, p components.Particle, at time.Time)
	Throttled(source components.SourceID, at time.Time)
	Rejected(source components.SourceID, ev components.Interaction)
	Dropped(source components.SourceID, ev components.Interaction)
	TornDown(source components.SourceID, cancelled, cleared int)
}

// NopHooks ignores every notification.
type NopHooks struct{}

func (NopHooks) Spawned(components.SourceID, components.Particle)             {}
func (NopHooks) Expired(components.SourceID, components.Particle, time.Time) {}
func (NopHooks) Evicted(components.SourceID, components.Particle, time.Time) {}
func (NopHooks) Throttled(components.SourceID, time.Time)                    {}
func (NopHooks) Rejected(components.SourceID, components.Interaction)         {}
func (NopHooks) Dropped(components.SourceID, components.Interaction)          {}
func (NopHooks) TornDown(components.SourceID, int, int)                      {}

// Listener receives the ordered live set of a source after each change.
// The slice is shared between listeners of one notification and must not be modified.
type Listener func(source components.SourceID, live []components.Particle)

// SourceConfig describes one effect source.
type SourceConfig struct {
	ID          components.SourceID
	Trigger     components.InteractionType
	Kind        components.Kind
	Capacity    int
	MinInterval time.Duration
	Interval    time.Duration // ambient spawn period, tick sources only
	Surface     components.Surface
}

// Deps are the capabilities a source is built from.
type Deps struct {
	Factory   *Factory
	Scheduler *Scheduler
	Clock     Clock
	Rand      Rand
	Logger    *slog.Logger
	Hooks     Hooks
}

type subscription struct {
	id int
	fn Listener
}

// Source owns the live particles of one interaction stream: a throttle
// gate, a bounded registry and the expiry timers armed on the shared
// scheduler under its id.
type Source struct {
	cfg  SourceConfig
	deps Deps

	gate     *ThrottleGate
	registry *Registry

	active    bool
	nextID    components.ParticleID
	timers    map[components.ParticleID]TimerID
	listeners []subscription
	nextSub   int
}

// NewSource creates an unmounted source.
func NewSource(cfg SourceConfig, deps Deps) *Source {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Hooks == nil {
		deps.Hooks = NopHooks{}
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	return &Source{
		cfg:      cfg,
		deps:     deps,
		gate:     NewThrottleGate(cfg.MinInterval),
		registry: NewRegistry(cfg.Capacity),
		timers:   make(map[components.ParticleID]TimerID),
	}
}

// ID returns the source id.
func (s *Source) ID() components.SourceID { return s.cfg.ID }

// Config returns the source configuration.
func (s *Source) Config() SourceConfig { return s.cfg }

// Active reports whether the source is mounted.
func (s *Source) Active() bool { return s.active }

// SetSurface moves or resizes the interaction surface.
func (s *Source) SetSurface(surface components.Surface) {
	s.cfg.Surface = surface
}

// Mount activates the source. Tick sources start their ambient timer and
// mount sources spawn their single batch.
func (s *Source) Mount() {
	if s.active {
		return
	}
	s.active = true
	s.gate.Reset()
	s.deps.Logger.Info("source mounted", "source", s.cfg.ID, "kind", s.cfg.Kind, "trigger", s.cfg.Trigger)

	switch s.cfg.Trigger {
	case components.InteractionTick:
		if s.cfg.Interval > 0 {
			s.armTick()
		}
	case components.InteractionMount:
		s.Handle(components.Interaction{
			Type:     components.InteractionMount,
			Position: components.NoPoint(),
			At:       s.deps.Clock.Now(),
		})
	}
}

// Unmount deactivates the source, cancels all of its timers and clears the
// live set. Listeners see one empty snapshot. Calling it twice is a no-op.
func (s *Source) Unmount() {
	if !s.active {
		return
	}
	s.active = false
	cancelled := s.deps.Scheduler.CancelAll(s.cfg.ID)
	clear(s.timers)
	cleared := s.registry.Clear()
	s.deps.Hooks.TornDown(s.cfg.ID, cancelled, cleared)
	s.deps.Logger.Info("source unmounted", "source", s.cfg.ID, "cancelled", cancelled, "cleared", cleared)
	s.notify()
}

// Handle turns one interaction into particles and returns how many were spawned.
func (s *Source) Handle(ev components.Interaction) int {
	if !s.active {
		s.deps.Hooks.Dropped(s.cfg.ID, ev)
		return 0
	}
	if ev.Type != s.cfg.Trigger {
		return 0
	}
	at := ev.At
	if at.IsZero() {
		at = s.deps.Clock.Now()
	}

	policy, ok := s.deps.Factory.Policy(s.cfg.Kind)
	if !ok {
		s.reject(ev, "no policy")
		return 0
	}
	if ev.Type.Pointer() && ev.Key == nil && !ev.Position.Valid() {
		s.reject(ev, "missing position")
		return 0
	}
	origin := components.NoPoint()
	if policy.Placement == PlacePointer {
		if !ev.Position.Valid() {
			s.reject(ev, "missing position")
			return 0
		}
		origin = s.cfg.Surface.Relative(ev.Position, policy.Space)
		if !origin.Valid() {
			s.reject(ev, "empty surface")
			return 0
		}
	}

	if !s.gate.TryEmit(at) {
		s.deps.Hooks.Throttled(s.cfg.ID, at)
		s.deps.Logger.Debug("throttled", "source", s.cfg.ID)
		return 0
	}

	batch := s.deps.Factory.Generate(s.cfg.Kind, origin, s.deps.Rand)
	if len(batch) == 0 {
		s.reject(ev, "empty batch")
		return 0
	}

	tint := components.TintNone
	if ev.Key != nil {
		tint = components.TintWhite
		if ev.Key.Black {
			tint = components.TintAmber
		}
	}

	for _, p := range batch {
		s.nextID++
		p.ID = s.nextID
		p.CreatedAt = at
		if tint != components.TintNone {
			p.Attributes.Tint = tint
		}

		if evicted, ok := s.registry.Insert(p); ok {
			if timer, armed := s.timers[evicted.ID]; armed {
				s.deps.Scheduler.Cancel(timer)
				delete(s.timers, evicted.ID)
			}
			s.deps.Hooks.Evicted(s.cfg.ID, evicted, at)
			s.deps.Logger.Debug("evict", "source", s.cfg.ID, "id", evicted.ID)
		}
		id := p.ID
		s.timers[id] = s.deps.Scheduler.ArmAt(s.cfg.ID, id, p.Expiry(), func() { s.expire(id) })
		s.deps.Hooks.Spawned(s.cfg.ID, p)
	}
	s.deps.Logger.Debug("spawn", "source", s.cfg.ID, "kind", s.cfg.Kind, "count", len(batch))
	s.notify()
	return len(batch)
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Source) Subscribe(fn Listener) (unsubscribe func()) {
	s.nextSub++
	id := s.nextSub
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns the live particles, oldest first.
func (s *Source) Snapshot() []components.Particle {
	return s.registry.Snapshot()
}

// Len returns the live particle count.
func (s *Source) Len() int { return s.registry.Len() }

// Pending returns the number of timers this source has outstanding.
func (s *Source) Pending() int {
	return s.deps.Scheduler.PendingFor(s.cfg.ID)
}

func (s *Source) expire(id components.ParticleID) {
	delete(s.timers, id)
	p, ok := s.registry.Remove(id)
	if !ok {
		// Already evicted.
		return
	}
	now := s.deps.Clock.Now()
	s.deps.Hooks.Expired(s.cfg.ID, p, now)
	s.deps.Logger.Debug("expire", "source", s.cfg.ID, "id", id)
	s.notify()
}

func (s *Source) armTick() {
	s.deps.Scheduler.Arm(s.cfg.ID, 0, s.cfg.Interval, func() {
		if !s.active {
			return
		}
		s.Handle(components.Interaction{
			Type:     components.InteractionTick,
			Position: components.NoPoint(),
			At:       s.deps.Clock.Now(),
		})
		s.armTick()
	})
}

func (s *Source) reject(ev components.Interaction, reason string) {
	s.deps.Hooks.Rejected(s.cfg.ID, ev)
	s.deps.Logger.Debug("rejected", "source", s.cfg.ID, "reason", reason)
}

func (s *Source) notify() {
	if len(s.listeners) == 0 {
		return
	}
	live := s.registry.Snapshot()
	subs := append([]subscription(nil), s.listeners...)
	for _, sub := range subs {
		sub.fn(s.cfg.ID, live)
	}
}
