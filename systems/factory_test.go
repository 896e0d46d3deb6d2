package systems

import (
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pthm-cable/keepsake/components"
)

var origin = components.Point{X: 120, Y: 80, Space: components.SpacePixel}

// TestFactoryHeartBurstFanOut verifies a heart burst fans out evenly.
func TestFactoryHeartBurstFanOut(t *testing.T) {
	f := NewFactory(testTable())
	batch := f.Generate(components.KindHeartBurst, origin, rand.New(rand.NewSource(7)))
	if len(batch) != 12 {
		t.Fatalf("heart burst produced %d particles, want 12", len(batch))
	}
	for i, p := range batch {
		base := float64(i) * 30
		if d := math.Abs(p.Attributes.Angle - base); d > 15 {
			t.Errorf("particle %d angle %.2f is %.2f from base %.0f", i, p.Attributes.Angle, d, base)
		}
		if p.Lifetime >= 1200*time.Millisecond || p.Lifetime < 800*time.Millisecond {
			t.Errorf("particle %d lifetime %v outside [800ms, 1200ms)", i, p.Lifetime)
		}
		if p.Attributes.Distance < 40 || p.Attributes.Distance >= 120 {
			t.Errorf("particle %d distance %.2f outside [40, 120)", i, p.Attributes.Distance)
		}
		if p.Origin != origin {
			t.Errorf("particle %d origin %+v, want %+v", i, p.Origin, origin)
		}
	}
}

// TestFactoryDeterministic verifies a fixed seed reproduces the same bundle.
func TestFactoryDeterministic(t *testing.T) {
	f := NewFactory(testTable())
	for _, kind := range []components.Kind{
		components.KindHeartBurst,
		components.KindFirefly,
		components.KindFloatingNote,
		components.KindFirework,
	} {
		t.Run(kind.String(), func(t *testing.T) {
			a := f.Generate(kind, origin, rand.New(rand.NewSource(42)))
			b := f.Generate(kind, origin, rand.New(rand.NewSource(42)))
			if diff := cmp.Diff(a, b); diff != "" {
				t.Errorf("same seed produced different particles (-a +b):\n%s", diff)
			}
			c := f.Generate(kind, origin, rand.New(rand.NewSource(43)))
			if cmp.Equal(a, c) {
				t.Error("different seeds produced identical particles")
			}
		})
	}
}

// TestFactoryRejects verifies unknown kinds and invalid pointer origins produce nothing.
func TestFactoryRejects(t *testing.T) {
	f := NewFactory(testTable())
	rng := rand.New(rand.NewSource(1))

	if got := f.Generate(components.KindButterfly, origin, rng); got != nil {
		t.Errorf("kind without policy produced %d particles", len(got))
	}
	if got := f.Generate(components.KindSparkle, components.NoPoint(), rng); got != nil {
		t.Errorf("pointer kind with NoPoint produced %d particles", len(got))
	}
	if _, ok := f.GenerateOne(components.KindSparkle, components.Point{X: math.Inf(1)}, 0, 1, rng); ok {
		t.Error("GenerateOne accepted an infinite origin")
	}
	// Scatter kinds ignore the origin entirely.
	if got := f.Generate(components.KindFirefly, components.NoPoint(), rng); len(got) != 1 {
		t.Errorf("scatter kind produced %d particles, want 1", len(got))
	}
}

// TestFactoryScatterBounds verifies ambient kinds stay inside their ranges.
func TestFactoryScatterBounds(t *testing.T) {
	f := NewFactory(testTable())
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 200; i++ {
		p := f.Generate(components.KindFloatingNote, components.NoPoint(), rng)[0]
		if p.Origin.Space != components.SpacePercent {
			t.Fatalf("note origin space = %v, want percent", p.Origin.Space)
		}
		if p.Origin.X < 5 || p.Origin.X >= 95 {
			t.Errorf("note x %.2f outside [5, 95)", p.Origin.X)
		}
		if !strings.ContainsRune("♪♫♬♩", p.Attributes.Glyph) {
			t.Errorf("note glyph %q not in set", p.Attributes.Glyph)
		}
		if p.Attributes.Rise < 120 || p.Attributes.Rise >= 200 {
			t.Errorf("note rise %.2f outside [120, 200)", p.Attributes.Rise)
		}
	}
}

// TestFactoryLifetimeIncludesDelay verifies lifetime covers the stagger delay.
func TestFactoryLifetimeIncludesDelay(t *testing.T) {
	f := NewFactory(testTable())
	policy, _ := f.Policy(components.KindFirework)
	batch := f.Generate(components.KindFirework, components.NoPoint(), rand.New(rand.NewSource(3)))
	if len(batch) != 80 {
		t.Fatalf("firework produced %d particles, want 80", len(batch))
	}
	for _, p := range batch {
		if p.Lifetime != p.Attributes.Delay+p.Attributes.Duration {
			t.Errorf("lifetime %v != delay %v + duration %v", p.Lifetime, p.Attributes.Delay, p.Attributes.Duration)
		}
		if p.Lifetime > policy.MaxLifetime() {
			t.Errorf("lifetime %v exceeds policy max %v", p.Lifetime, policy.MaxLifetime())
		}
	}
}

// TestFactorySetTable verifies a swapped table only affects later spawns.
func TestFactorySetTable(t *testing.T) {
	f := NewFactory(testTable())
	before := f.Generate(components.KindSparkle, origin, rand.New(rand.NewSource(5)))

	table := testTable()
	sparkle := table[components.KindSparkle]
	sparkle.Duration = Fixed(250)
	table[components.KindSparkle] = sparkle
	f.SetTable(table)

	after := f.Generate(components.KindSparkle, origin, rand.New(rand.NewSource(5)))
	if before[0].Lifetime != time.Second {
		t.Errorf("earlier particle lifetime changed to %v", before[0].Lifetime)
	}
	if after[0].Lifetime != 250*time.Millisecond {
		t.Errorf("new particle lifetime = %v, want 250ms", after[0].Lifetime)
	}
}

func TestBaseAngle(t *testing.T) {
	tests := []struct {
		i, n int
		want float64
	}{
		{0, 12, 0},
		{1, 12, 30},
		{6, 12, 180},
		{3, 8, 135},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := BaseAngle(tt.i, tt.n); got != tt.want {
			t.Errorf("BaseAngle(%d, %d) = %v, want %v", tt.i, tt.n, got, tt.want)
		}
	}
}
