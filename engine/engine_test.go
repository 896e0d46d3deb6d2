package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm-cable/keepsake/components"
	"github.com/pthm-cable/keepsake/config"
	"github.com/pthm-cable/keepsake/systems"
	"github.com/pthm-cable/keepsake/telemetry"
)

var epoch = time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

type harness struct {
	cfg       *config.Config
	clock     *systems.ManualClock
	collector *telemetry.Collector
	engine    *Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatalf("Defaults() error = %v", err)
	}
	return newHarnessWith(cfg)
}

func newHarnessWith(cfg *config.Config) *harness {
	clock := systems.NewManualClock(epoch)
	collector := telemetry.NewCollector(10*time.Second, clock)
	return &harness{
		cfg:       cfg,
		clock:     clock,
		collector: collector,
		engine: New(cfg, Options{
			Clock: clock,
			Seed:  7,
			Hooks: collector,
		}),
	}
}

func (h *harness) advance(d time.Duration) int {
	return h.engine.Update(h.clock.Advance(d))
}

func (h *harness) at(typ components.InteractionType, x, y float64) components.Interaction {
	return components.Interaction{
		Type:     typ,
		Position: components.Point{X: x, Y: y, Space: components.SpacePixel},
		At:       h.clock.Now(),
	}
}

func (h *harness) live(t *testing.T, id components.SourceID) []components.Particle {
	t.Helper()
	live, err := h.engine.Snapshot(id)
	if err != nil {
		t.Fatalf("Snapshot(%s) error = %v", id, err)
	}
	return live
}

// TestEngineRoutesToMountedSources verifies a click reaches only mounted
// sources with a click trigger.
func TestEngineRoutesToMountedSources(t *testing.T) {
	h := newHarness(t)

	if n := h.engine.OnInteraction(h.at(components.InteractionClick, 400, 300)); n != 0 {
		t.Fatalf("click before mount spawned %d", n)
	}
	if err := h.engine.Navigate("home"); err != nil {
		t.Fatalf("Navigate(home) error = %v", err)
	}

	n := h.engine.OnInteraction(h.at(components.InteractionClick, 400, 300))
	if n != 12 {
		t.Errorf("click spawned %d, want 12", n)
	}
	if got := len(h.live(t, "hearts")); got != 12 {
		t.Errorf("hearts live = %d, want 12", got)
	}
	if got := len(h.live(t, "petals")); got != 0 {
		t.Errorf("petals on unmounted page live = %d, want 0", got)
	}

	// Every heart is retired by its maximum lifetime.
	h.advance(1200 * time.Millisecond)
	if got := len(h.live(t, "hearts")); got != 0 {
		t.Errorf("hearts live after 1200ms = %d, want 0", got)
	}
}

func TestEngineUnknownIDs(t *testing.T) {
	h := newHarness(t)

	if err := h.engine.OnMount("nope"); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("OnMount(nope) error = %v, want ErrUnknownSource", err)
	}
	if err := h.engine.OnUnmount("nope"); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("OnUnmount(nope) error = %v, want ErrUnknownSource", err)
	}
	if _, err := h.engine.Subscribe("nope", func(components.SourceID, []components.Particle) {}); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("Subscribe(nope) error = %v, want ErrUnknownSource", err)
	}
	if _, err := h.engine.Snapshot("nope"); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("Snapshot(nope) error = %v, want ErrUnknownSource", err)
	}
	if err := h.engine.MountPage("attic"); !errors.Is(err, ErrUnknownPage) {
		t.Errorf("MountPage(attic) error = %v, want ErrUnknownPage", err)
	}
	if err := h.engine.MountFor("attic", time.Second); !errors.Is(err, ErrUnknownPage) {
		t.Errorf("MountFor(attic) error = %v, want ErrUnknownPage", err)
	}
}

// TestEngineSubscribe verifies listeners see one snapshot per change and an
// empty snapshot on unmount.
func TestEngineSubscribe(t *testing.T) {
	h := newHarness(t)
	if err := h.engine.OnMount("hearts"); err != nil {
		t.Fatal(err)
	}

	var sizes []int
	unsubscribe, err := h.engine.Subscribe("hearts", func(id components.SourceID, live []components.Particle) {
		if id != "hearts" {
			t.Errorf("listener got source %q", id)
		}
		sizes = append(sizes, len(live))
	})
	if err != nil {
		t.Fatal(err)
	}

	h.engine.OnInteraction(h.at(components.InteractionClick, 100, 100))
	h.engine.OnInteraction(h.at(components.InteractionClick, 200, 100))
	if err := h.engine.OnUnmount("hearts"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{12, 24, 0}, sizes); diff != "" {
		t.Errorf("notification sizes mismatch (-want +got):\n%s", diff)
	}

	unsubscribe()
	h.engine.OnMount("hearts")
	h.engine.OnInteraction(h.at(components.InteractionClick, 100, 100))
	if len(sizes) != 3 {
		t.Errorf("listener called after unsubscribe: %v", sizes)
	}
}

// TestEngineTeardownCancelsTimers verifies unmounting a page leaves no
// pending timers and no later removals.
func TestEngineTeardownCancelsTimers(t *testing.T) {
	h := newHarness(t)
	if err := h.engine.MountPage("home"); err != nil {
		t.Fatal(err)
	}
	h.engine.OnInteraction(h.at(components.InteractionClick, 640, 400))
	if h.engine.Pending() == 0 {
		t.Fatal("no timers pending after click")
	}

	if err := h.engine.UnmountPage("home"); err != nil {
		t.Fatal(err)
	}
	if p := h.engine.Pending(); p != 0 {
		t.Errorf("Pending() = %d after unmount, want 0", p)
	}
	before := h.collector.Totals().Expired
	if fired := h.advance(5 * time.Second); fired != 0 {
		t.Errorf("%d timers fired after unmount", fired)
	}
	if h.collector.Totals().Expired != before {
		t.Error("expiry observed after unmount")
	}
	if h.collector.Totals().Cancelled == 0 {
		t.Error("teardown cancelled no timers")
	}
}

// TestEngineTickSources verifies ambient sources spawn on their interval
// while mounted.
func TestEngineTickSources(t *testing.T) {
	h := newHarness(t)
	h.engine.MountPage("home")

	h.advance(899 * time.Millisecond)
	if got := len(h.live(t, "bubbles")); got != 0 {
		t.Fatalf("bubbles before interval = %d", got)
	}
	h.advance(time.Millisecond)
	if got := len(h.live(t, "bubbles")); got != 1 {
		t.Fatalf("bubbles after one interval = %d, want 1", got)
	}
	for i := 0; i < 60; i++ {
		h.advance(time.Second)
		if got := len(h.live(t, "bubbles")); got > 15 {
			t.Fatalf("bubbles = %d exceeds capacity 15", got)
		}
	}
}

// TestEngineDecorations verifies pearl flowers are laid out once per mount.
func TestEngineDecorations(t *testing.T) {
	h := newHarness(t)
	h.engine.Navigate("letters")

	first, err := h.engine.Decorations("letters")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 18 {
		t.Fatalf("got %d flowers, want 18", len(first))
	}
	for i, d := range first {
		if d.PetalCount != 5 && d.PetalCount != 6 {
			t.Errorf("flower %d has %d petals", i, d.PetalCount)
		}
	}
	h.advance(3 * time.Second)
	again, _ := h.engine.Decorations("letters")
	if diff := cmp.Diff(first, again); diff != "" {
		t.Errorf("decorations changed while mounted (-first +again):\n%s", diff)
	}

	h.engine.Navigate("home")
	gone, _ := h.engine.Decorations("letters")
	if len(gone) != 0 {
		t.Errorf("%d flowers left after unmount", len(gone))
	}
	if pages := h.engine.MountedPages(); !cmp.Equal(pages, []string{"home"}) {
		t.Errorf("MountedPages() = %v, want [home]", pages)
	}
}

// TestEngineMountFor verifies the celebration page reverts after its duration.
func TestEngineMountFor(t *testing.T) {
	h := newHarness(t)
	h.engine.Navigate("home")

	if err := h.engine.Celebrate(); err != nil {
		t.Fatal(err)
	}
	if got := len(h.live(t, "fireworks")); got != 80 {
		t.Fatalf("fireworks = %d on mount, want 80", got)
	}
	if pages := h.engine.MountedPages(); !cmp.Equal(pages, []string{"celebration", "home"}) {
		t.Fatalf("MountedPages() = %v", pages)
	}

	h.advance(4 * time.Second)
	// Restarting pushes the revert out to 10s.
	h.engine.MountFor("celebration", 6*time.Second)
	h.advance(5 * time.Second)
	if pages := h.engine.MountedPages(); !cmp.Equal(pages, []string{"celebration", "home"}) {
		t.Fatalf("celebration reverted early: %v", pages)
	}
	h.advance(time.Second)
	if pages := h.engine.MountedPages(); !cmp.Equal(pages, []string{"home"}) {
		t.Errorf("MountedPages() after revert = %v, want [home]", pages)
	}
	_, active, _ := h.engine.Source("fireworks")
	if active {
		t.Error("fireworks still mounted after revert")
	}
}

// TestEngineKeyboard verifies piano ripples only answer clicks on the
// keyboard and take their tint from the key.
func TestEngineKeyboard(t *testing.T) {
	h := newHarness(t)
	h.engine.Navigate("music")

	if n := h.engine.OnInteraction(h.at(components.InteractionClick, 640, 100)); n != 0 {
		t.Errorf("click above keyboard spawned %d ripples", n)
	}

	// Keyboard surface: x 128..1152, y 560..760.
	blackPos := components.Point{X: 128 + 1024*0.0476*0.9, Y: 580, Space: components.SpacePixel}
	key, ok := h.engine.KeyAt(blackPos)
	if !ok || !key.Black {
		t.Fatalf("KeyAt(%v) = %+v, %v; want a black key", blackPos, key, ok)
	}
	ev := h.at(components.InteractionClick, blackPos.X, blackPos.Y)
	ev.Key = &key
	if n := h.engine.OnInteraction(ev); n != 1 {
		t.Fatalf("key press spawned %d, want 1", n)
	}
	live := h.live(t, "ripples")
	if live[0].Attributes.Tint != components.TintAmber {
		t.Errorf("black key ripple tint = %v, want amber", live[0].Attributes.Tint)
	}

	whitePos := components.Point{X: 140, Y: 740, Space: components.SpacePixel}
	key, ok = h.engine.KeyAt(whitePos)
	if !ok || key.Black || key.Index != 0 {
		t.Fatalf("KeyAt(%v) = %+v, %v; want white key 0", whitePos, key, ok)
	}
}

// TestEngineRejectsPositionlessClick verifies a click with no usable
// position spawns nothing on a page whose click kind is scattered.
func TestEngineRejectsPositionlessClick(t *testing.T) {
	h := newHarness(t)
	if err := h.engine.Navigate("music"); err != nil {
		t.Fatalf("Navigate(music) error = %v", err)
	}

	for _, pos := range []components.Point{
		components.NoPoint(),
		{X: math.Inf(1), Y: 600, Space: components.SpacePixel},
		{X: 640, Y: math.NaN(), Space: components.SpacePixel},
	} {
		ev := components.Interaction{Type: components.InteractionClick, Position: pos, At: h.clock.Now()}
		if n := h.engine.OnInteraction(ev); n != 0 {
			t.Errorf("click at %+v spawned %d, want 0", pos, n)
		}
	}
	if got := len(h.live(t, "ripples")); got != 0 {
		t.Errorf("ripples live = %d, want 0", got)
	}
	if r := h.collector.Totals().Rejected; r != 3 {
		t.Errorf("Rejected = %d, want 3", r)
	}

	// A key press carries its own identity and still spawns.
	ev := components.Interaction{
		Type:     components.InteractionClick,
		Position: components.NoPoint(),
		At:       h.clock.Now(),
		Key:      &components.Key{Index: 4},
	}
	if n := h.engine.OnInteraction(ev); n != 1 {
		t.Errorf("key press without position spawned %d, want 1", n)
	}
}

// TestEngineDispatchDrops verifies an event delivered to an unmounted
// source is dropped and counted.
func TestEngineDispatchDrops(t *testing.T) {
	h := newHarness(t)
	n, err := h.engine.Dispatch("hearts", h.at(components.InteractionClick, 10, 10))
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("unmounted dispatch spawned %d", n)
	}
	if d := h.collector.Totals().Dropped; d != 1 {
		t.Errorf("Dropped = %d, want 1", d)
	}
	if _, err := h.engine.Dispatch("nope", components.Interaction{}); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("Dispatch(nope) error = %v", err)
	}
}

// TestEngineApplyConfig verifies reloaded kind policies affect only later spawns.
func TestEngineApplyConfig(t *testing.T) {
	h := newHarness(t)
	h.engine.Navigate("home")
	h.engine.OnInteraction(h.at(components.InteractionClick, 300, 300))
	before := h.live(t, "hearts")

	reloaded, err := config.Parse([]byte("kinds:\n  heart_burst:\n    count: 6\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	h.engine.ApplyConfig(reloaded)

	if n := h.engine.OnInteraction(h.at(components.InteractionClick, 300, 300)); n != 6 {
		t.Errorf("click after reload spawned %d, want 6", n)
	}
	after := h.live(t, "hearts")
	if diff := cmp.Diff(before, after[:len(before)]); diff != "" {
		t.Errorf("live particles changed on reload (-before +after):\n%s", diff)
	}
}

func TestEngineClose(t *testing.T) {
	h := newHarness(t)
	h.engine.Navigate("letters")
	h.engine.MountFor("celebration", time.Minute)
	h.advance(2 * time.Second)

	h.engine.Close()
	if p := h.engine.Pending(); p != 0 {
		t.Errorf("Pending() = %d after Close, want 0", p)
	}
	if live, mounted := h.engine.Live(); live != 0 || mounted != 0 {
		t.Errorf("Live() = %d, %d after Close, want 0, 0", live, mounted)
	}
}
