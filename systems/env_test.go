package systems

import (
	"math/rand"
	"time"

	"github.com/pthm-cable/keepsake/components"
)

var epoch = time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

// testTable mirrors the shipped kind defaults for the kinds these tests use.
// Butterflies are left out so a kind without a policy can be exercised.
func testTable() KindTable {
	return KindTable{
		components.KindHeartBurst: {
			Kind:        components.KindHeartBurst,
			Count:       12,
			Space:       components.SpacePixel,
			Placement:   PlacePointer,
			EvenSpread:  true,
			AngleJitter: 15,
			Distance:    Range{40, 120},
			Size:        Range{14, 24},
			Hue:         Range{330, 360},
			Lightness:   Range{0.6, 0.75},
			Duration:    Range{800, 1200},
			Glyphs:      []rune("♥"),
		},
		components.KindSparkle: {
			Kind:      components.KindSparkle,
			Count:     1,
			Space:     components.SpacePixel,
			Placement: PlacePointer,
			DriftX:    Range{-10, 10},
			DriftY:    Range{-10, 10},
			Size:      Range{4, 10},
			Hue:       Range{40, 60},
			Lightness: Range{0.85, 0.95},
			Duration:  Fixed(1000),
		},
		components.KindFirefly: {
			Kind:      components.KindFirefly,
			Count:     1,
			Space:     components.SpacePercent,
			Placement: PlaceScatter,
			ScatterX:  Range{5, 95},
			ScatterY:  Range{5, 95},
			DriftX:    Range{-40, 40},
			DriftY:    Range{-40, 40},
			Size:      Range{3, 6},
			Hue:       Range{50, 60},
			Lightness: Range{0.85, 0.95},
			Duration:  Range{4000, 7000},
		},
		components.KindPianoRipple: {
			Kind:      components.KindPianoRipple,
			Count:     1,
			Space:     components.SpacePercent,
			Placement: PlaceScatter,
			ScatterX:  Range{20, 80},
			ScatterY:  Fixed(50),
			Size:      Range{60, 120},
			Duration:  Fixed(2000),
		},
		components.KindFloatingNote: {
			Kind:      components.KindFloatingNote,
			Count:     1,
			Space:     components.SpacePercent,
			Placement: PlaceScatter,
			ScatterX:  Range{5, 95},
			ScatterY:  Fixed(100),
			DriftX:    Range{-30, 30},
			Rise:      Range{120, 200},
			Rotation:  Range{-20, 20},
			Size:      Range{18, 30},
			Hue:       Range{35, 45},
			Lightness: Range{0.75, 0.85},
			Duration:  Range{3000, 5000},
			Glyphs:    []rune("♪♫♬♩"),
		},
		components.KindFirework: {
			Kind:      components.KindFirework,
			Count:     80,
			Space:     components.SpacePercent,
			Placement: PlaceScatter,
			ScatterX:  Fixed(50),
			ScatterY:  Fixed(50),
			Distance:  Range{50, 300},
			Size:      Range{3, 11},
			Hue:       Range{100, 160},
			Lightness: Fixed(0.75),
			Delay:     Range{0, 100},
			Duration:  Range{1500, 2500},
		},
	}
}

// countingHooks tallies lifecycle notifications.
type countingHooks struct {
	spawned, expired, evicted   int
	throttled, rejected         int
	dropped, cancelled, cleared int
}

func (h *countingHooks) Spawned(components.SourceID, components.Particle)             { h.spawned++ }
func (h *countingHooks) Expired(components.SourceID, components.Particle, time.Time) { h.expired++ }
func (h *countingHooks) Evicted(components.SourceID, components.Particle, time.Time) { h.evicted++ }
func (h *countingHooks) Throttled(components.SourceID, time.Time)                    { h.throttled++ }
func (h *countingHooks) Rejected(components.SourceID, components.Interaction)         { h.rejected++ }
func (h *countingHooks) Dropped(components.SourceID, components.Interaction)          { h.dropped++ }
func (h *countingHooks) TornDown(_ components.SourceID, cancelled, cleared int) {
	h.cancelled += cancelled
	h.cleared += cleared
}

type testEnv struct {
	clock     *ManualClock
	scheduler *Scheduler
	hooks     *countingHooks
}

// newTestEnv builds source dependencies on a manual clock with a seeded rng.
func newTestEnv(seed int64) (*testEnv, Deps) {
	clock := NewManualClock(epoch)
	env := &testEnv{
		clock:     clock,
		scheduler: NewScheduler(clock),
		hooks:     &countingHooks{},
	}
	return env, Deps{
		Factory:   NewFactory(testTable()),
		Scheduler: env.scheduler,
		Clock:     clock,
		Rand:      rand.New(rand.NewSource(seed)),
		Hooks:     env.hooks,
	}
}

// advance moves the clock forward and fires every timer that came due.
func (e *testEnv) advance(d time.Duration) {
	e.scheduler.Advance(e.clock.Advance(d))
}

func click(x, y float64, at time.Time) components.Interaction {
	return components.Interaction{
		Type:     components.InteractionClick,
		Position: components.Point{X: x, Y: y, Space: components.SpacePixel},
		At:       at,
	}
}

func move(x, y float64, at time.Time) components.Interaction {
	return components.Interaction{
		Type:     components.InteractionMove,
		Position: components.Point{X: x, Y: y, Space: components.SpacePixel},
		At:       at,
	}
}
