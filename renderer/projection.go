package renderer

import (
	"math"
	"time"

	"github.com/pthm-cable/keepsake/components"
)

// Sprite is the drawable state of a particle at one instant, in logical
// page pixels. Projection never modifies the particle.
type Sprite struct {
	ID       components.ParticleID
	Kind     components.Kind
	X, Y     float64
	Size     float64
	Rotation float64 // degrees
	Opacity  float64 // 0..1
	Progress float64 // 0..1 after the delay
	Glyph    rune
	Color    RGB
	Visible  bool
}

// Locate converts a particle origin to logical page pixels on its surface.
func Locate(surface components.Surface, p components.Point) (x, y float64) {
	if p.Space == components.SpacePixel {
		return surface.X + p.X, surface.Y + p.Y
	}
	return surface.X + p.X/100*surface.W, surface.Y + p.Y/100*surface.H
}

// EaseOutCubic maps t in [0,1] to a curve that starts fast and settles.
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// Progress returns the animation progress of p at now: 0 until its delay has
// passed, rising linearly to 1 at the end of its duration.
func Progress(p components.Particle, now time.Time) (t float64, started bool) {
	elapsed := now.Sub(p.CreatedAt) - p.Attributes.Delay
	if elapsed < 0 {
		return 0, false
	}
	if p.Attributes.Duration <= 0 {
		return 1, true
	}
	return clamp01(float64(elapsed) / float64(p.Attributes.Duration)), true
}

// Project computes the sprite of p on surface at now. Drift and rise are in
// pixels regardless of the origin's space.
func Project(p components.Particle, surface components.Surface, now time.Time) Sprite {
	a := p.Attributes
	s := Sprite{
		ID:    p.ID,
		Kind:  p.Kind,
		Glyph: a.Glyph,
		Color: ParticleColor(p),
	}

	t, started := Progress(p, now)
	s.Progress = t
	if !started || t >= 1 {
		return s
	}

	e := EaseOutCubic(t)
	ox, oy := Locate(surface, p.Origin)
	s.X = ox + a.DriftX*e
	s.Y = oy + a.DriftY*e - a.Rise*e
	s.Size = a.Size
	s.Opacity = 1

	switch p.Kind {
	case components.KindHeartBurst:
		s.Opacity = 1 - t
		s.Size *= 1 - 0.5*t
	case components.KindFirework:
		s.Opacity = 1 - t*t
		s.Size *= 1 - 0.6*t
	case components.KindSparkle:
		s.Opacity = 1 - t
		s.Size *= 1 - t
	case components.KindPetal, components.KindRosePetal:
		s.Opacity = min(1, (1-t)/0.3)
		s.Rotation = a.Rotation * t
	case components.KindFirefly:
		flicker := 0.6 + 0.4*math.Sin(t*6*math.Pi)
		s.Opacity = math.Sin(math.Pi*t) * flicker
	case components.KindButterfly:
		s.Opacity = min(1, t/0.1, (1-t)/0.1)
		s.Rotation = a.Rotation * math.Sin(2*math.Pi*t)
	case components.KindPianoRipple:
		s.Size *= e
		s.Opacity = 1 - t
	case components.KindFloatingNote:
		s.Opacity = math.Sin(math.Pi * t)
		s.Rotation = a.Rotation * t
	case components.KindBubble:
		s.Opacity = 0.7 * math.Sin(math.Pi*t)
	}

	s.Opacity = clamp01(s.Opacity * s.Color.Alpha())
	s.Visible = s.Opacity > 0 && s.Size > 0
	return s
}

// ProjectAll projects a snapshot, skipping particles that are not visible.
func ProjectAll(live []components.Particle, surface components.Surface, now time.Time, dst []Sprite) []Sprite {
	for _, p := range live {
		if s := Project(p, surface, now); s.Visible {
			dst = append(dst, s)
		}
	}
	return dst
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
