package components

import (
	"math"
	"time"
)

// ParticleID identifies a particle within its effect source.
type ParticleID uint64

// SourceID names an effect source (one per interaction surface and stream).
type SourceID string

// Space selects the coordinate system of a Point.
type Space uint8

const (
	SpacePercent Space = iota // 0..100 across the surface
	SpacePixel                // pixels relative to the surface's top-left corner
)

func (s Space) String() string {
	if s == SpacePixel {
		return "pixel"
	}
	return "percent"
}

// Point is a 2D position in percent or pixel space.
type Point struct {
	X, Y  float64
	Space Space
}

// NoPoint returns a point that fails Valid, used for interactions without a position.
func NoPoint() Point {
	return Point{X: math.NaN(), Y: math.NaN()}
}

// Valid reports whether both coordinates are finite.
func (p Point) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Offset returns p translated by (dx, dy) in the same space.
func (p Point) Offset(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy, Space: p.Space}
}

// Tint is the color family of a piano ripple.
type Tint uint8

const (
	TintNone  Tint = iota
	TintWhite      // white key: rgba(255, 255, 255, 0.2)
	TintAmber      // black key: rgba(255, 200, 100, 0.3)
)

// Attributes is the randomized visual bundle of a particle.
// It is generated once at spawn and never regenerated.
type Attributes struct {
	Size      float64 // pixels (font size for notes)
	Hue       float64 // degrees
	Lightness float64 // 0..1
	Angle     float64 // degrees, burst direction
	Distance  float64 // burst travel distance
	DriftX    float64 // total horizontal travel
	DriftY    float64 // total vertical travel
	Rise      float64 // upward travel (floating notes, bubbles)
	Rotation  float64 // degrees at end of animation
	Delay     time.Duration
	Duration  time.Duration
	Glyph     rune
	Tint      Tint
}

// Particle is a single ephemeral animated entity.
// Nothing about it changes after creation; only registry membership does.
type Particle struct {
	ID         ParticleID
	Kind       Kind
	Origin     Point
	Attributes Attributes
	CreatedAt  time.Time
	Lifetime   time.Duration
}

// Expiry returns the instant the particle must be retired.
func (p Particle) Expiry() time.Time {
	return p.CreatedAt.Add(p.Lifetime)
}

// Age returns how long the particle has been alive at now.
func (p Particle) Age(now time.Time) time.Duration {
	return now.Sub(p.CreatedAt)
}

// Interaction is a raw input event routed to effect sources.
type Interaction struct {
	Type     InteractionType
	Position Point     // absolute pointer position; NoPoint() when missing
	At       time.Time // zero means "use the engine clock"
	Key      *Key      // set for piano key presses
}

// Key is one piano key, laid out in percent of the keyboard width.
type Key struct {
	Index int
	Black bool
	Left  float64
	Width float64
}

// Surface is the interaction area a source is attached to, in screen pixels.
type Surface struct {
	X, Y float64
	W, H float64
}

// Relative converts an absolute pointer position into the given space.
// A zero-sized surface leaves pixel coordinates untouched and yields an
// invalid point in percent space.
func (s Surface) Relative(abs Point, space Space) Point {
	x := abs.X - s.X
	y := abs.Y - s.Y
	if space == SpacePixel {
		return Point{X: x, Y: y, Space: SpacePixel}
	}
	if s.W <= 0 || s.H <= 0 {
		return NoPoint()
	}
	return Point{X: x / s.W * 100, Y: y / s.H * 100, Space: SpacePercent}
}

// Contains reports whether an absolute position falls inside the surface.
func (s Surface) Contains(abs Point) bool {
	return abs.X >= s.X && abs.X < s.X+s.W && abs.Y >= s.Y && abs.Y < s.Y+s.H
}
