package viewport

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestNewFitSameAspect(t *testing.T) {
	v := NewFit(1280, 800, 640, 400)
	if !near(v.ScaleX, 0.5) || !near(v.ScaleY, 0.5) {
		t.Errorf("expected scale 0.5, got (%f, %f)", v.ScaleX, v.ScaleY)
	}
	if v.OffsetX != 0 || v.OffsetY != 0 {
		t.Errorf("expected no letterbox, got offset (%f, %f)", v.OffsetX, v.OffsetY)
	}
}

func TestFitLetterbox(t *testing.T) {
	// Wider output: bars left and right.
	v := NewFit(1280, 800, 1920, 800)
	if !near(v.Scale(), 1) {
		t.Errorf("expected scale 1, got %f", v.Scale())
	}
	if !near(v.OffsetX, 320) || v.OffsetY != 0 {
		t.Errorf("expected offset (320, 0), got (%f, %f)", v.OffsetX, v.OffsetY)
	}
	sx, sy := v.ToScreen(640, 400)
	if !near(sx, 960) || !near(sy, 400) {
		t.Errorf("page center mapped to (%f, %f), want (960, 400)", sx, sy)
	}
}

func TestStretch(t *testing.T) {
	v := NewStretch(1280, 800, 160, 50)
	if !near(v.ScaleX, 0.125) || !near(v.ScaleY, 0.0625) {
		t.Errorf("expected scale (0.125, 0.0625), got (%f, %f)", v.ScaleX, v.ScaleY)
	}
	if !near(v.Scale(), 0.0625) {
		t.Errorf("Scale() = %f, want the smaller axis", v.Scale())
	}
}

func TestToLogicalRoundtrip(t *testing.T) {
	for _, v := range []*Viewport{
		NewFit(1280, 800, 1000, 900),
		NewStretch(1280, 800, 120, 40),
	} {
		testCases := []struct{ lx, ly float64 }{
			{0, 0},
			{640, 400},
			{1279, 799},
		}
		for _, tc := range testCases {
			sx, sy := v.ToScreen(tc.lx, tc.ly)
			lx, ly := v.ToLogical(sx, sy)
			if !near(lx, tc.lx) || !near(ly, tc.ly) {
				t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
					tc.lx, tc.ly, sx, sy, lx, ly)
			}
		}
	}
}

func TestIsVisible(t *testing.T) {
	v := NewFit(1280, 800, 1280, 800)
	if !v.IsVisible(640, 400, 1) {
		t.Error("center should be visible")
	}
	if v.IsVisible(-50, 400, 10) {
		t.Error("point well left of the page should not be visible")
	}
	if !v.IsVisible(-5, 400, 10) {
		t.Error("circle overlapping the left edge should be visible")
	}
}

func TestResize(t *testing.T) {
	v := NewFit(1280, 800, 1280, 800)
	v.Resize(2560, 1600)
	if !near(v.Scale(), 2) {
		t.Errorf("after resize expected scale 2, got %f", v.Scale())
	}
	x, y, w, h := v.Bounds()
	if x != 0 || y != 0 || !near(w, 2560) || !near(h, 1600) {
		t.Errorf("Bounds() = (%f, %f, %f, %f)", x, y, w, h)
	}
}
