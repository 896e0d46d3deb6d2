// Package viewport maps the logical page (the configured screen size that
// surfaces and particle origins are expressed in) onto an output device.
package viewport

// Viewport scales logical page coordinates to output coordinates. A fitted
// viewport keeps the aspect ratio and letterboxes; a stretched one scales
// each axis independently (terminal cells are roughly twice as tall as wide).
type Viewport struct {
	// Logical page size
	LogicalW, LogicalH float64

	// Output size (window pixels or terminal cells)
	OutW, OutH float64

	ScaleX, ScaleY   float64
	OffsetX, OffsetY float64

	stretch bool
}

// NewFit creates a letterboxed viewport.
func NewFit(logicalW, logicalH, outW, outH float64) *Viewport {
	v := &Viewport{LogicalW: logicalW, LogicalH: logicalH}
	v.Resize(outW, outH)
	return v
}

// NewStretch creates a viewport that fills the output on both axes.
func NewStretch(logicalW, logicalH, outW, outH float64) *Viewport {
	v := &Viewport{LogicalW: logicalW, LogicalH: logicalH, stretch: true}
	v.Resize(outW, outH)
	return v
}

// Resize updates the output size and recomputes scale and offset.
func (v *Viewport) Resize(outW, outH float64) {
	v.OutW, v.OutH = outW, outH
	if v.LogicalW <= 0 || v.LogicalH <= 0 {
		v.ScaleX, v.ScaleY = 1, 1
		v.OffsetX, v.OffsetY = 0, 0
		return
	}
	sx := outW / v.LogicalW
	sy := outH / v.LogicalH
	if v.stretch {
		v.ScaleX, v.ScaleY = sx, sy
		v.OffsetX, v.OffsetY = 0, 0
		return
	}
	s := min(sx, sy)
	v.ScaleX, v.ScaleY = s, s
	v.OffsetX = (outW - v.LogicalW*s) / 2
	v.OffsetY = (outH - v.LogicalH*s) / 2
}

// ToScreen converts logical coordinates to output coordinates.
func (v *Viewport) ToScreen(lx, ly float64) (sx, sy float64) {
	return v.OffsetX + lx*v.ScaleX, v.OffsetY + ly*v.ScaleY
}

// ToLogical converts output coordinates (a mouse position) to logical
// coordinates.
func (v *Viewport) ToLogical(sx, sy float64) (lx, ly float64) {
	return (sx - v.OffsetX) / v.ScaleX, (sy - v.OffsetY) / v.ScaleY
}

// Scale returns the factor applied to sizes (radii, font sizes). For a
// stretched viewport it is the smaller axis scale.
func (v *Viewport) Scale() float64 {
	return min(v.ScaleX, v.ScaleY)
}

// IsVisible reports whether a circle at a logical position could appear on
// the output (conservative check for culling).
func (v *Viewport) IsVisible(lx, ly, radius float64) bool {
	sx, sy := v.ToScreen(lx, ly)
	r := radius * v.Scale()
	return sx+r >= 0 && sx-r < v.OutW && sy+r >= 0 && sy-r < v.OutH
}

// Bounds returns the output rectangle the logical page occupies.
func (v *Viewport) Bounds() (x, y, w, h float64) {
	return v.OffsetX, v.OffsetY, v.LogicalW * v.ScaleX, v.LogicalH * v.ScaleY
}
