package systems

import (
	"math"
	"time"

	"github.com/pthm-cable/keepsake/components"
)

// Range is an inclusive-exclusive sampling interval [Min, Max).
type Range struct {
	Min, Max float64
}

// Fixed returns a degenerate range that always samples v.
func Fixed(v float64) Range {
	return Range{Min: v, Max: v}
}

// Sample draws a value from the range.
func (r Range) Sample(rng Rand) float64 {
	return between(rng, r.Min, r.Max)
}

// Placement decides where a particle's origin comes from.
type Placement uint8

const (
	PlacePointer Placement = iota // origin is the interaction position
	PlaceScatter                  // origin is sampled across the surface
)

// KindPolicy holds the fixed attribute ranges for one particle kind.
type KindPolicy struct {
	Kind      components.Kind
	Count     int // particles per spawn request
	Space     components.Space
	Placement Placement
	ScatterX  Range // percent, PlaceScatter only
	ScatterY  Range

	// Burst geometry. With EvenSpread, sub-particle i of n starts at
	// i*360/n degrees plus up to ±AngleJitter; otherwise the angle is uniform.
	EvenSpread  bool
	AngleJitter float64
	Distance    Range

	OffsetX  Range // spawn offset from the origin
	DriftX   Range
	DriftY   Range
	Rise     Range
	Rotation Range

	Size      Range
	Hue       Range
	Lightness Range

	Delay    Range // milliseconds
	Duration Range // milliseconds
	Glyphs   []rune
}

// IsBurst reports whether one spawn request fans out into several particles.
func (p KindPolicy) IsBurst() bool {
	return p.Count > 1
}

// MaxLifetime returns the longest lifetime the policy can produce.
func (p KindPolicy) MaxLifetime() time.Duration {
	return msDuration(math.Max(p.Delay.Min, p.Delay.Max) + math.Max(p.Duration.Min, p.Duration.Max))
}

// KindTable maps every kind to its policy.
type KindTable map[components.Kind]KindPolicy

// Factory generates particles with randomized but bounded attributes.
type Factory struct {
	table KindTable
}

// NewFactory creates a factory over the given policy table.
func NewFactory(table KindTable) *Factory {
	return &Factory{table: table}
}

// SetTable replaces the policy table. Particles already generated keep their
// attributes; only later spawns see the new ranges.
func (f *Factory) SetTable(table KindTable) {
	f.table = table
}

// Policy returns the policy for kind.
func (f *Factory) Policy(kind components.Kind) (KindPolicy, bool) {
	p, ok := f.table[kind]
	return p, ok
}

// Generate builds the batch of particles for one spawn request at origin.
// IDs and creation time are left for the owning source to stamp.
// Unknown kinds and invalid pointer origins produce nothing.
func (f *Factory) Generate(kind components.Kind, origin components.Point, rng Rand) []components.Particle {
	policy, ok := f.table[kind]
	if !ok {
		return nil
	}
	if policy.Placement == PlacePointer && !origin.Valid() {
		return nil
	}
	count := policy.Count
	if count < 1 {
		count = 1
	}
	out := make([]components.Particle, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, f.generate(policy, origin, i, count, rng))
	}
	return out
}

// GenerateOne builds sub-particle index of count for kind.
func (f *Factory) GenerateOne(kind components.Kind, origin components.Point, index, count int, rng Rand) (components.Particle, bool) {
	policy, ok := f.table[kind]
	if !ok {
		return components.Particle{}, false
	}
	if policy.Placement == PlacePointer && !origin.Valid() {
		return components.Particle{}, false
	}
	return f.generate(policy, origin, index, count, rng), true
}

// generate draws attributes in a fixed order so that a seeded source
// reproduces the same bundle.
func (f *Factory) generate(policy KindPolicy, origin components.Point, index, count int, rng Rand) components.Particle {
	if policy.Placement == PlaceScatter {
		origin = components.Point{
			X:     policy.ScatterX.Sample(rng),
			Y:     policy.ScatterY.Sample(rng),
			Space: policy.Space,
		}
	} else {
		origin.Space = policy.Space
	}
	origin = origin.Offset(policy.OffsetX.Sample(rng), 0)

	var attrs components.Attributes

	switch {
	case policy.EvenSpread:
		attrs.Angle = BaseAngle(index, count) + jitter(rng, policy.AngleJitter)
	case policy.Distance.Max > 0:
		attrs.Angle = rng.Float64() * 360
	}
	attrs.Distance = policy.Distance.Sample(rng)

	rad := attrs.Angle * math.Pi / 180
	attrs.DriftX = math.Cos(rad)*attrs.Distance + policy.DriftX.Sample(rng)
	attrs.DriftY = math.Sin(rad)*attrs.Distance + policy.DriftY.Sample(rng)
	attrs.Rise = policy.Rise.Sample(rng)
	attrs.Rotation = policy.Rotation.Sample(rng)

	attrs.Size = policy.Size.Sample(rng)
	attrs.Hue = policy.Hue.Sample(rng)
	attrs.Lightness = policy.Lightness.Sample(rng)

	attrs.Delay = msDuration(policy.Delay.Sample(rng))
	attrs.Duration = msDuration(policy.Duration.Sample(rng))

	if len(policy.Glyphs) > 0 {
		attrs.Glyph = policy.Glyphs[rng.Intn(len(policy.Glyphs))]
	}

	return components.Particle{
		Kind:       policy.Kind,
		Origin:     origin,
		Attributes: attrs,
		Lifetime:   attrs.Delay + attrs.Duration,
	}
}

// BaseAngle returns the evenly spaced starting angle of sub-particle i of n.
func BaseAngle(i, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(i) / float64(n) * 360
}

func msDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
