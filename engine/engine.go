// Package engine is the boundary between front-ends and the effect sources:
// it routes interactions, mounts pages and drives expiry timers.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"time"

	"github.com/pthm-cable/keepsake/components"
	"github.com/pthm-cable/keepsake/config"
	"github.com/pthm-cable/keepsake/systems"
)

var (
	// ErrUnknownSource is returned for a source id no page declares.
	ErrUnknownSource = errors.New("unknown source")
	// ErrUnknownPage is returned for a page name the config does not define.
	ErrUnknownPage = errors.New("unknown page")
)

// Keyboard geometry of the music page.
const keyboardOctaves = 3

// Options configure an Engine. Zero values select the wall clock, a
// time-seeded RNG, the default logger and no hooks.
type Options struct {
	Clock  systems.Clock
	Seed   int64
	Logger *slog.Logger
	Hooks  systems.Hooks
}

// page groups the sources and decorations mounted together.
type page struct {
	name    string
	sources []components.SourceID
	flowers int
	ambient *systems.AmbientField
	mounted bool
}

// Engine owns every effect source declared by the configuration. All methods
// must be called from one goroutine (the render loop or Loop.Run).
type Engine struct {
	cfg    *config.Config
	clock  systems.Clock
	rng    *rand.Rand
	logger *slog.Logger
	hooks  systems.Hooks

	factory   *systems.Factory
	scheduler *systems.Scheduler
	keyboard  systems.PianoLayout
	flowers   systems.FlowerPolicy

	sources map[components.SourceID]*systems.Source
	order   []components.SourceID
	pages   map[string]*page
}

// New builds an engine with every page's sources created but unmounted.
func New(cfg *config.Config, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = systems.SystemClock{}
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Hooks == nil {
		opts.Hooks = systems.NopHooks{}
	}

	e := &Engine{
		cfg:       cfg,
		clock:     opts.Clock,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		logger:    opts.Logger,
		hooks:     opts.Hooks,
		factory:   systems.NewFactory(KindTable(cfg)),
		scheduler: systems.NewScheduler(opts.Clock),
		keyboard:  systems.NewPianoLayout(keyboardOctaves),
		flowers:   FlowerPolicy(cfg.Ambient),
		sources:   make(map[components.SourceID]*systems.Source),
		pages:     make(map[string]*page),
	}

	deps := systems.Deps{
		Factory:   e.factory,
		Scheduler: e.scheduler,
		Clock:     e.clock,
		Rand:      e.rng,
		Logger:    e.logger,
		Hooks:     e.hooks,
	}
	for _, name := range cfg.Derived.PageNames {
		p := &page{name: name, flowers: cfg.Pages[name].Flowers}
		for _, sc := range SourceConfigs(cfg, name) {
			e.sources[sc.ID] = systems.NewSource(sc, deps)
			e.order = append(e.order, sc.ID)
			p.sources = append(p.sources, sc.ID)
		}
		if p.flowers > 0 {
			p.ambient = systems.NewAmbientField()
		}
		e.pages[name] = p
	}
	return e
}

// OnInteraction routes ev to every mounted source whose trigger matches and
// whose surface contains the pointer, and returns the number of particles
// spawned. Events without a position reach every matching source.
func (e *Engine) OnInteraction(ev components.Interaction) int {
	if ev.At.IsZero() {
		ev.At = e.clock.Now()
	}
	spawned := 0
	for _, id := range e.order {
		src := e.sources[id]
		cfg := src.Config()
		if !src.Active() || cfg.Trigger != ev.Type {
			continue
		}
		if ev.Position.Valid() && !cfg.Surface.Contains(ev.Position) {
			continue
		}
		spawned += src.Handle(ev)
	}
	return spawned
}

// Dispatch delivers ev to one source, mounted or not. An unmounted source
// drops it.
func (e *Engine) Dispatch(id components.SourceID, ev components.Interaction) (int, error) {
	src, ok := e.sources[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	return src.Handle(ev), nil
}

// OnMount mounts a single source.
func (e *Engine) OnMount(id components.SourceID) error {
	src, ok := e.sources[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	src.Mount()
	return nil
}

// OnUnmount unmounts a single source, cancelling its timers and clearing
// its live set.
func (e *Engine) OnUnmount(id components.SourceID) error {
	src, ok := e.sources[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	src.Unmount()
	return nil
}

// Subscribe registers fn for the ordered snapshot of source id after every
// change. Nothing is delivered until the next change.
func (e *Engine) Subscribe(id components.SourceID, fn systems.Listener) (func(), error) {
	src, ok := e.sources[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	return src.Subscribe(fn), nil
}

// MountPage mounts every source of a page and lays out its decorations.
func (e *Engine) MountPage(name string) error {
	p, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, name)
	}
	if p.mounted {
		return nil
	}
	p.mounted = true
	if p.ambient != nil {
		p.ambient.Populate(p.flowers, e.flowers, e.rng)
	}
	for _, id := range p.sources {
		e.sources[id].Mount()
	}
	e.logger.Info("page mounted", "page", name, "sources", len(p.sources), "flowers", p.flowers)
	return nil
}

// UnmountPage tears down every source of a page and drops its decorations.
// A pending revert timer for the page is cancelled.
func (e *Engine) UnmountPage(name string) error {
	p, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, name)
	}
	e.scheduler.CancelAll(revertOwner(name))
	if !p.mounted {
		return nil
	}
	p.mounted = false
	for _, id := range p.sources {
		e.sources[id].Unmount()
	}
	if p.ambient != nil {
		p.ambient.Clear()
	}
	e.logger.Info("page unmounted", "page", name)
	return nil
}

// Navigate unmounts every other page and mounts name.
func (e *Engine) Navigate(name string) error {
	if _, ok := e.pages[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, name)
	}
	for _, other := range e.cfg.Derived.PageNames {
		if other != name {
			if err := e.UnmountPage(other); err != nil {
				return err
			}
		}
	}
	return e.MountPage(name)
}

// MountFor mounts a page on top of the current ones and unmounts it after d.
// Calling it again while the page is up restarts the countdown.
func (e *Engine) MountFor(name string, d time.Duration) error {
	if _, ok := e.pages[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, name)
	}
	owner := revertOwner(name)
	e.scheduler.CancelAll(owner)
	if err := e.MountPage(name); err != nil {
		return err
	}
	e.scheduler.Arm(owner, 0, d, func() {
		if err := e.UnmountPage(name); err != nil {
			e.logger.Warn("revert failed", "page", name, "error", err)
		}
	})
	return nil
}

// Celebrate mounts the celebration page for the configured duration.
func (e *Engine) Celebrate() error {
	return e.MountFor("celebration", e.cfg.Derived.CelebrationDuration)
}

func revertOwner(page string) components.SourceID {
	return components.SourceID("page:" + page)
}

// Update fires every timer due at now and returns how many fired.
func (e *Engine) Update(now time.Time) int {
	return e.scheduler.Advance(now)
}

// Now returns the engine clock's time.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Snapshot returns the live particles of a source, oldest first.
func (e *Engine) Snapshot(id components.SourceID) ([]components.Particle, error) {
	src, ok := e.sources[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	return src.Snapshot(), nil
}

// Sources returns every source id in page order.
func (e *Engine) Sources() []components.SourceID {
	return slices.Clone(e.order)
}

// Source returns the configuration of a source and whether it is mounted.
func (e *Engine) Source(id components.SourceID) (systems.SourceConfig, bool, error) {
	src, ok := e.sources[id]
	if !ok {
		return systems.SourceConfig{}, false, fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	return src.Config(), src.Active(), nil
}

// PageSources returns the source ids of a page.
func (e *Engine) PageSources(name string) ([]components.SourceID, error) {
	p, ok := e.pages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, name)
	}
	return slices.Clone(p.sources), nil
}

// Pages returns every page name, sorted.
func (e *Engine) Pages() []string {
	return slices.Clone(e.cfg.Derived.PageNames)
}

// MountedPages returns the names of mounted pages, sorted.
func (e *Engine) MountedPages() []string {
	var out []string
	for _, name := range e.cfg.Derived.PageNames {
		if e.pages[name].mounted {
			out = append(out, name)
		}
	}
	return out
}

// Live returns the number of live particles across all sources and the
// number of mounted sources.
func (e *Engine) Live() (particles, mounted int) {
	for _, src := range e.sources {
		particles += src.Len()
		if src.Active() {
			mounted++
		}
	}
	return particles, mounted
}

// Pending returns the number of outstanding timers.
func (e *Engine) Pending() int {
	return e.scheduler.Pending()
}

// SourcePending returns the number of timers a source has outstanding.
func (e *Engine) SourcePending(id components.SourceID) int {
	src, ok := e.sources[id]
	if !ok {
		return 0
	}
	return src.Pending()
}

// Decorations returns the pearl flowers of a mounted page.
func (e *Engine) Decorations(name string) ([]components.Decoration, error) {
	p, ok := e.pages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, name)
	}
	if p.ambient == nil {
		return nil, nil
	}
	return p.ambient.Decorations(), nil
}

// Keyboard returns the music page key layout.
func (e *Engine) Keyboard() systems.PianoLayout {
	return e.keyboard
}

// KeyAt hit-tests an absolute position against the surfaces of mounted
// piano ripple sources.
func (e *Engine) KeyAt(pos components.Point) (components.Key, bool) {
	for _, id := range e.order {
		src := e.sources[id]
		cfg := src.Config()
		if !src.Active() || cfg.Kind != components.KindPianoRipple || !cfg.Surface.Contains(pos) {
			continue
		}
		rel := cfg.Surface.Relative(pos, components.SpacePercent)
		return e.keyboard.KeyAt(rel.X, rel.Y/100)
	}
	return components.Key{}, false
}

// ApplyConfig swaps in a reloaded configuration. Future spawns use the new
// kind table and surfaces; live particles keep their attributes. Sources
// and pages themselves are fixed for the engine's lifetime.
func (e *Engine) ApplyConfig(cfg *config.Config) {
	e.factory.SetTable(KindTable(cfg))
	e.flowers = FlowerPolicy(cfg.Ambient)
	updated := 0
	for _, name := range e.cfg.Derived.PageNames {
		for _, sc := range SourceConfigs(cfg, name) {
			if src, ok := e.sources[sc.ID]; ok {
				src.SetSurface(sc.Surface)
				updated++
			}
		}
	}
	e.logger.Info("config applied", "sources_updated", updated)
}

// Close unmounts every page, releasing all timers.
func (e *Engine) Close() {
	for _, name := range e.cfg.Derived.PageNames {
		_ = e.UnmountPage(name)
	}
	for _, id := range e.order {
		e.sources[id].Unmount()
	}
}
