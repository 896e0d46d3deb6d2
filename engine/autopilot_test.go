package engine

import (
	"testing"
	"time"

	"github.com/pthm-cable/keepsake/components"
)

// TestAutopilotTour verifies a seeded headless run visits every page, keeps
// every source within capacity and spawns from each kind of trigger.
func TestAutopilotTour(t *testing.T) {
	h := newHarness(t)
	pages := []string{"home", "letters", "music"}
	pilot := NewAutopilot(DefaultAutopilot(1280, 800, pages), 11)

	visited := map[string]bool{}
	caps := map[components.SourceID]int{}
	for _, id := range h.engine.Sources() {
		cfg, _, _ := h.engine.Source(id)
		caps[id] = cfg.Capacity
	}

	step := 16 * time.Millisecond
	for i := 0; i < int(70*time.Second/step); i++ {
		now := h.clock.Advance(step)
		h.engine.Update(now)
		pilot.Step(h.engine, now)
		visited[pilot.Page()] = true

		for id, capacity := range caps {
			if n := len(h.live(t, id)); n > capacity {
				t.Fatalf("step %d: source %s holds %d, capacity %d", i, id, n, capacity)
			}
		}
	}

	for _, p := range pages {
		if !visited[p] {
			t.Errorf("page %s never visited", p)
		}
	}
	totals := h.collector.Totals()
	if totals.Spawned == 0 || totals.Expired == 0 {
		t.Errorf("totals = %+v, want spawns and expiries", totals)
	}
	if totals.Throttled == 0 {
		t.Error("pointer trail never throttled")
	}

	h.engine.Close()
	if p := h.engine.Pending(); p != 0 {
		t.Errorf("Pending() = %d after Close", p)
	}
}

// TestAutopilotDeterministic verifies two runs with the same seeds produce
// identical live sets.
func TestAutopilotDeterministic(t *testing.T) {
	run := func() []components.Particle {
		h := newHarness(t)
		pilot := NewAutopilot(DefaultAutopilot(1280, 800, []string{"home"}), 5)
		for i := 0; i < 300; i++ {
			now := h.clock.Advance(16 * time.Millisecond)
			h.engine.Update(now)
			pilot.Step(h.engine, now)
		}
		var all []components.Particle
		for _, id := range h.engine.Sources() {
			all = append(all, h.live(t, id)...)
		}
		return all
	}
	a, b := run(), run()
	if len(a) == 0 {
		t.Fatal("no live particles after run")
	}
	if len(a) != len(b) {
		t.Fatalf("run lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Attributes != b[i].Attributes || a[i].Origin != b[i].Origin {
			t.Fatalf("particle %d differs:\n%+v\n%+v", i, a[i], b[i])
		}
	}
}
