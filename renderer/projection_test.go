package renderer

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/keepsake/components"
)

var t0 = time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestEaseOutCubic(t *testing.T) {
	tests := []struct {
		t, want float64
	}{
		{0, 0},
		{0.5, 0.875},
		{1, 1},
	}
	for _, tt := range tests {
		if got := EaseOutCubic(tt.t); !near(got, tt.want) {
			t.Errorf("EaseOutCubic(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestLocate(t *testing.T) {
	surface := components.Surface{X: 100, Y: 50, W: 400, H: 200}
	x, y := Locate(surface, components.Point{X: 50, Y: 25, Space: components.SpacePercent})
	if !near(x, 300) || !near(y, 100) {
		t.Errorf("percent origin located at (%v, %v), want (300, 100)", x, y)
	}
	x, y = Locate(surface, components.Point{X: 10, Y: 20, Space: components.SpacePixel})
	if !near(x, 110) || !near(y, 70) {
		t.Errorf("pixel origin located at (%v, %v), want (110, 70)", x, y)
	}
}

func heart() components.Particle {
	return components.Particle{
		ID:     1,
		Kind:   components.KindHeartBurst,
		Origin: components.Point{X: 200, Y: 200, Space: components.SpacePixel},
		Attributes: components.Attributes{
			Size:      20,
			Hue:       340,
			Lightness: 0.7,
			DriftX:    100,
			DriftY:    -40,
			Duration:  time.Second,
			Glyph:     '♥',
		},
		CreatedAt: t0,
		Lifetime:  time.Second,
	}
}

// TestProjectHeart verifies position follows the eased drift and opacity fades.
func TestProjectHeart(t *testing.T) {
	p := heart()
	surface := components.Surface{W: 1280, H: 800}

	start := Project(p, surface, t0)
	if !start.Visible || !near(start.X, 200) || !near(start.Y, 200) || !near(start.Opacity, 1) {
		t.Errorf("at spawn: %+v", start)
	}

	mid := Project(p, surface, t0.Add(500*time.Millisecond))
	if !near(mid.X, 200+100*0.875) || !near(mid.Y, 200-40*0.875) {
		t.Errorf("at half time: position (%v, %v)", mid.X, mid.Y)
	}
	if !near(mid.Opacity, 0.5) || !near(mid.Size, 15) {
		t.Errorf("at half time: opacity %v size %v, want 0.5 and 15", mid.Opacity, mid.Size)
	}

	end := Project(p, surface, t0.Add(time.Second))
	if end.Visible {
		t.Errorf("sprite still visible at end of duration: %+v", end)
	}
}

// TestProjectDelay verifies a staggered particle stays hidden until its delay passes.
func TestProjectDelay(t *testing.T) {
	p := heart()
	p.Kind = components.KindPetal
	p.Attributes.Delay = 300 * time.Millisecond
	p.Lifetime = p.Attributes.Delay + p.Attributes.Duration
	surface := components.Surface{W: 1280, H: 800}

	if s := Project(p, surface, t0.Add(299*time.Millisecond)); s.Visible {
		t.Error("visible before delay")
	}
	s := Project(p, surface, t0.Add(300*time.Millisecond))
	if !s.Visible || !near(s.Progress, 0) {
		t.Errorf("at delay end: visible %v progress %v", s.Visible, s.Progress)
	}
}

// TestProjectDoesNotMutate verifies projection leaves the particle untouched.
func TestProjectDoesNotMutate(t *testing.T) {
	p := heart()
	before := p
	for ms := 0; ms <= 1000; ms += 100 {
		Project(p, components.Surface{W: 100, H: 100}, t0.Add(time.Duration(ms)*time.Millisecond))
	}
	if p != before {
		t.Errorf("particle changed by projection: %+v", p)
	}
}

// TestProjectOpacityBounds verifies every kind stays within [0, 1].
func TestProjectOpacityBounds(t *testing.T) {
	surface := components.Surface{W: 1280, H: 800}
	for _, kind := range components.AllKinds() {
		p := heart()
		p.Kind = kind
		p.Attributes.Rotation = 30
		p.Attributes.Rise = 50
		p.Attributes.Tint = components.TintAmber
		for ms := 0; ms < 1000; ms += 10 {
			s := Project(p, surface, t0.Add(time.Duration(ms)*time.Millisecond))
			if s.Opacity < 0 || s.Opacity > 1 {
				t.Fatalf("%s at %dms: opacity %v", kind, ms, s.Opacity)
			}
		}
	}
}

func TestParticleColor(t *testing.T) {
	ripple := components.Particle{Kind: components.KindPianoRipple}
	ripple.Attributes.Tint = components.TintAmber
	if got := ParticleColor(ripple); got != tintAmber {
		t.Errorf("amber ripple color = %+v", got)
	}
	ripple.Attributes.Tint = components.TintWhite
	if got := ParticleColor(ripple); got != tintWhite {
		t.Errorf("white ripple color = %+v", got)
	}

	c := ParticleColor(heart())
	if c.R <= c.G || c.R <= c.B || c.A != 255 {
		t.Errorf("heart color %+v is not an opaque red", c)
	}
}

func TestBlend(t *testing.T) {
	white := RGB{R: 255, G: 255, B: 255, A: 255}
	black := RGB{A: 255}
	if got := Blend(white, black, 1); got != white {
		t.Errorf("full opacity blend = %+v, want white", got)
	}
	if got := Blend(white, black, 0); got != black {
		t.Errorf("zero opacity blend = %+v, want black", got)
	}
}
