package engine

import (
	"math"
	"math/rand"
	"time"

	"github.com/pthm-cable/keepsake/components"
)

// AutopilotConfig tunes the synthetic visitor used in headless runs.
type AutopilotConfig struct {
	Width, Height float64       // screen size in pixels
	ClickProb     float64       // chance of a click per step
	KeyProb       float64       // chance a click lands on the keyboard when one is mounted
	CelebrateProb float64       // chance of a celebration per step on the home page
	Dwell         time.Duration // time spent on each page before navigating
	Pages         []string      // visiting order; empty means stay put
}

// DefaultAutopilot returns a visitor that wanders the pointer continuously,
// clicks now and then and tours every page.
func DefaultAutopilot(width, height float64, pages []string) AutopilotConfig {
	return AutopilotConfig{
		Width:         width,
		Height:        height,
		ClickProb:     0.05,
		KeyProb:       0.7,
		CelebrateProb: 0.001,
		Dwell:         20 * time.Second,
		Pages:         pages,
	}
}

// Autopilot drives an engine with seeded synthetic interactions so headless
// runs exercise every source.
type Autopilot struct {
	cfg AutopilotConfig
	rng *rand.Rand

	x, y, heading float64
	page          int
	pageSince     time.Time
}

// NewAutopilot creates an autopilot starting at the screen center.
func NewAutopilot(cfg AutopilotConfig, seed int64) *Autopilot {
	return &Autopilot{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
		x:   cfg.Width / 2,
		y:   cfg.Height / 2,
	}
}

// Page returns the page the autopilot is currently visiting.
func (a *Autopilot) Page() string {
	if len(a.cfg.Pages) == 0 {
		return ""
	}
	return a.cfg.Pages[a.page]
}

// Step performs one round of interactions at now and returns the particles spawned.
func (a *Autopilot) Step(e *Engine, now time.Time) int {
	if len(a.cfg.Pages) > 0 {
		if a.pageSince.IsZero() {
			a.pageSince = now
			_ = e.Navigate(a.Page())
		} else if a.cfg.Dwell > 0 && now.Sub(a.pageSince) >= a.cfg.Dwell {
			a.page = (a.page + 1) % len(a.cfg.Pages)
			a.pageSince = now
			_ = e.Navigate(a.Page())
		}
	}

	a.wander()
	spawned := e.OnInteraction(components.Interaction{
		Type:     components.InteractionMove,
		Position: a.pointer(),
		At:       now,
	})

	if a.rng.Float64() < a.cfg.ClickProb {
		spawned += e.OnInteraction(a.click(e, now))
	}
	if a.Page() == "home" && a.rng.Float64() < a.cfg.CelebrateProb {
		_ = e.Celebrate()
	}
	return spawned
}

// wander moves the pointer along a smoothly turning path that bounces off
// the screen edges.
func (a *Autopilot) wander() {
	const speed = 6.0
	a.heading += (a.rng.Float64()*2 - 1) * 0.4
	a.x += math.Cos(a.heading) * speed
	a.y += math.Sin(a.heading) * speed
	if a.x < 0 || a.x >= a.cfg.Width {
		a.heading = math.Pi - a.heading
		a.x = max(0, min(a.x, a.cfg.Width-1))
	}
	if a.y < 0 || a.y >= a.cfg.Height {
		a.heading = -a.heading
		a.y = max(0, min(a.y, a.cfg.Height-1))
	}
}

func (a *Autopilot) pointer() components.Point {
	return components.Point{X: a.x, Y: a.y, Space: components.SpacePixel}
}

// click either presses a random piano key, when a keyboard is mounted, or
// clicks at the pointer.
func (a *Autopilot) click(e *Engine, now time.Time) components.Interaction {
	ev := components.Interaction{
		Type:     components.InteractionClick,
		Position: a.pointer(),
		At:       now,
	}
	if a.rng.Float64() >= a.cfg.KeyProb {
		return ev
	}
	for _, id := range e.order {
		src := e.sources[id]
		cfg := src.Config()
		if !src.Active() || cfg.Kind != components.KindPianoRipple {
			continue
		}
		keys := e.keyboard.Keys()
		key := keys[a.rng.Intn(len(keys))]
		yFrac := 0.8
		if key.Black {
			yFrac = 0.3
		}
		ev.Position = components.Point{
			X:     cfg.Surface.X + (key.Left+key.Width/2)/100*cfg.Surface.W,
			Y:     cfg.Surface.Y + yFrac*cfg.Surface.H,
			Space: components.SpacePixel,
		}
		if hit, ok := e.KeyAt(ev.Position); ok {
			ev.Key = &hit
		}
		break
	}
	return ev
}
