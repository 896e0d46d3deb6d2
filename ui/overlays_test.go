package ui

import (
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/go-cmp/cmp"
)

// TestOverlayDefaults verifies the display overlays start enabled and the
// debug ones start hidden.
func TestOverlayDefaults(t *testing.T) {
	reg := NewOverlayRegistry()
	want := []OverlayID{OverlayHUD, OverlayControls}
	if diff := cmp.Diff(want, reg.EnabledOverlays()); diff != "" {
		t.Errorf("enabled overlays mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"display", "debug"}, reg.Categories()); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	if got := len(reg.ByCategory("debug")); got != 3 {
		t.Errorf("debug overlays = %d, want 3", got)
	}
}

// TestOverlayExclusive verifies enabling the inspector hides the perf panel
// and the other way round.
func TestOverlayExclusive(t *testing.T) {
	reg := NewOverlayRegistry()

	reg.SetEnabled(OverlayPerf, true)
	if !reg.Toggle(OverlayInspector) {
		t.Fatal("Toggle(inspector) = false, want enabled")
	}
	if reg.IsEnabled(OverlayPerf) {
		t.Error("perf still enabled after enabling inspector")
	}

	if _, on, ok := reg.HandleKeyPress(rl.KeyP); !ok || !on {
		t.Fatalf("HandleKeyPress(P) = on %v ok %v", on, ok)
	}
	if reg.IsEnabled(OverlayInspector) {
		t.Error("inspector still enabled after enabling perf")
	}

	if _, _, ok := reg.HandleKeyPress(rl.KeyZ); ok {
		t.Error("unbound key toggled an overlay")
	}
	if reg.Toggle("missing") {
		t.Error("Toggle of unknown overlay reported enabled")
	}
}

// TestAnchor verifies panel placement for each corner.
func TestAnchor(t *testing.T) {
	tests := []struct {
		anchor PanelAnchor
		x, y   int32
	}{
		{AnchorTopLeft, 10, 10},
		{AnchorTopRight, 690, 10},
		{AnchorBottomLeft, 10, 490},
		{AnchorBottomRight, 690, 490},
	}
	for _, tt := range tests {
		x, y := Anchor(tt.anchor, 100, 100, 800, 600, 10)
		if x != tt.x || y != tt.y {
			t.Errorf("Anchor(%v) = (%d, %d), want (%d, %d)", tt.anchor, x, y, tt.x, tt.y)
		}
	}
}

// TestLoadColor verifies the load bar heats up as a source nears capacity.
func TestLoadColor(t *testing.T) {
	theme := DefaultTheme()
	if theme.LoadColor(0.2) != theme.BarFillLow {
		t.Error("20% load not low")
	}
	if theme.LoadColor(0.7) != theme.BarFillMedium {
		t.Error("70% load not medium")
	}
	if theme.LoadColor(1) != theme.BarFillHigh {
		t.Error("full load not high")
	}
}

// TestSourceSectionHeight verifies hidden inspector rows take no space.
func TestSourceSectionHeight(t *testing.T) {
	r := NewRenderer()
	section := sourceSection()
	lh := r.Theme.LineHeight

	ambient := &SourceInfo{Live: 3, Capacity: 10, Interval: 500 * time.Millisecond}
	// color, spawns, live bar, timers, every, oldest
	if got, want := r.SectionHeight(section, ambient), 4+6*lh+2; got != want {
		t.Errorf("ambient height = %d, want %d", got, want)
	}

	idle := &SourceInfo{Capacity: 10, MinInterval: 50 * time.Millisecond}
	// color, spawns, live bar, timers, throttle
	if got, want := r.SectionHeight(section, idle), 4+5*lh+2; got != want {
		t.Errorf("idle height = %d, want %d", got, want)
	}
}

func TestTitleCase(t *testing.T) {
	if got := titleCase("letters"); got != "Letters" {
		t.Errorf("titleCase = %q", got)
	}
	if got := titleCase(""); got != "" {
		t.Errorf("titleCase(\"\") = %q", got)
	}
}
