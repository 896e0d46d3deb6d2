package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/keepsake/components"
	"github.com/pthm-cable/keepsake/viewport"
)

// backdropCell is the tile size of the raylib backdrop, in output pixels.
const backdropCell = 32

// ParticleRenderer draws sprites and decorations into a raylib window.
type ParticleRenderer struct {
	view *viewport.Viewport
}

// NewParticleRenderer creates a renderer drawing through view.
func NewParticleRenderer(view *viewport.Viewport) *ParticleRenderer {
	return &ParticleRenderer{view: view}
}

func toColor(c RGB, opacity float64) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, uint8(clamp01(opacity)*255))
}

// DrawBackdrop fills the page area with the backdrop gradient.
func (r *ParticleRenderer) DrawBackdrop(b *Backdrop, seconds float64) {
	x0, y0, w, h := r.view.Bounds()
	for sy := y0; sy < y0+h; sy += backdropCell {
		for sx := x0; sx < x0+w; sx += backdropCell {
			lx, ly := r.view.ToLogical(sx+backdropCell/2, sy+backdropCell/2)
			c := b.Shade(lx, ly, seconds)
			rl.DrawRectangle(int32(sx), int32(sy), backdropCell, backdropCell, toColor(c, 1))
		}
	}
}

// Draw renders sprites in order (oldest first, so newer ones land on top).
func (r *ParticleRenderer) Draw(sprites []Sprite) {
	for i := range sprites {
		s := &sprites[i]
		if !r.view.IsVisible(s.X, s.Y, s.Size) {
			continue
		}
		x, y := r.view.ToScreen(s.X, s.Y)
		center := rl.NewVector2(float32(x), float32(y))
		size := float32(max(s.Size*r.view.Scale(), 0.5))
		color := toColor(s.Color, s.Opacity)

		switch s.Kind {
		case components.KindHeartBurst:
			drawHeart(center, size, color)
		case components.KindPetal, components.KindRosePetal:
			rec := rl.NewRectangle(center.X, center.Y, size, size*0.6)
			rl.DrawRectanglePro(rec, rl.NewVector2(size/2, size*0.3), float32(s.Rotation), color)
		case components.KindSparkle:
			drawSparkle(center, size, color)
		case components.KindFirefly:
			rl.DrawCircleGradient(int32(x), int32(y), size*3, rl.Fade(color, 0.35), rl.Fade(color, 0))
			rl.DrawCircleV(center, size/2, color)
		case components.KindButterfly:
			drawButterfly(center, size, float32(s.Rotation), color)
		case components.KindPianoRipple:
			rl.DrawRing(center, size*0.85, size, 0, 360, 48, color)
		case components.KindFloatingNote:
			drawNote(center, size, color)
		case components.KindBubble:
			rl.DrawCircleLines(int32(x), int32(y), size/2, color)
			rl.DrawCircleV(rl.NewVector2(center.X-size*0.15, center.Y-size*0.15), size*0.08, color)
		default:
			rl.DrawCircleV(center, size/2, color)
		}
	}
}

// DrawDecorations renders pearl flowers. Each blooms in over one second
// after its delay.
func (r *ParticleRenderer) DrawDecorations(decorations []components.Decoration, seconds float64) {
	_, _, w, h := r.view.Bounds()
	x0, y0, _, _ := r.view.Bounds()
	for _, d := range decorations {
		bloom := clamp01(seconds - d.Delay.Seconds())
		if bloom <= 0 {
			continue
		}
		cx := float32(x0 + d.X/100*w)
		cy := float32(y0 + d.Y/100*h)
		scale := float32(r.view.Scale() * bloom)
		petal := rl.NewColor(250, 240, 245, uint8(140*bloom))
		for i := 0; i < d.PetalCount; i++ {
			rad := d.PetalAngles[i] * math.Pi / 180
			length := float32(d.PetalLengths[i]) * scale
			px := cx + float32(math.Cos(rad))*length*0.6
			py := cy + float32(math.Sin(rad))*length*0.6
			rl.DrawCircleV(rl.NewVector2(px, py), length*0.35, petal)
		}
		rl.DrawCircleV(rl.NewVector2(cx, cy), float32(d.Size)*0.08*scale, rl.NewColor(255, 250, 235, uint8(220*bloom)))
	}
}

// DrawKeyboard renders the piano keys inside surface (logical pixels).
func (r *ParticleRenderer) DrawKeyboard(surface components.Surface, white, black []components.Key, pressed map[int]float64) {
	draw := func(k components.Key, height float64, base rl.Color) {
		x, y := r.view.ToScreen(surface.X+k.Left/100*surface.W, surface.Y)
		x2, y2 := r.view.ToScreen(surface.X+(k.Left+k.Width)/100*surface.W, surface.Y+surface.H*height)
		c := base
		if glow := pressed[k.Index]; glow > 0 {
			c = rl.ColorLerp(base, rl.NewColor(255, 200, 100, 255), float32(glow))
		}
		rl.DrawRectangle(int32(x), int32(y), int32(x2-x)-1, int32(y2-y), c)
	}
	for _, k := range white {
		draw(k, 1, rl.NewColor(245, 242, 235, 255))
	}
	for _, k := range black {
		draw(k, 0.6, rl.NewColor(30, 28, 36, 255))
	}
}

func drawHeart(c rl.Vector2, size float32, color rl.Color) {
	r := size / 4
	rl.DrawCircleV(rl.NewVector2(c.X-r, c.Y-r/2), r, color)
	rl.DrawCircleV(rl.NewVector2(c.X+r, c.Y-r/2), r, color)
	// Counter-clockwise winding.
	rl.DrawTriangle(
		rl.NewVector2(c.X-2*r, c.Y-r/4),
		rl.NewVector2(c.X, c.Y+1.6*r),
		rl.NewVector2(c.X+2*r, c.Y-r/4),
		color,
	)
}

func drawSparkle(c rl.Vector2, size float32, color rl.Color) {
	h := size / 2
	rl.DrawLineEx(rl.NewVector2(c.X-h, c.Y), rl.NewVector2(c.X+h, c.Y), 1.5, color)
	rl.DrawLineEx(rl.NewVector2(c.X, c.Y-h), rl.NewVector2(c.X, c.Y+h), 1.5, color)
	rl.DrawCircleV(c, size/6, color)
}

func drawButterfly(c rl.Vector2, size float32, rotation float32, color rl.Color) {
	rad := float64(rotation) * math.Pi / 180
	// Wing span narrows and widens with rotation to suggest flapping.
	span := size / 2 * float32(0.4+0.6*math.Abs(math.Cos(rad*4)))
	rl.DrawTriangle(c, rl.NewVector2(c.X-span, c.Y-size/2), rl.NewVector2(c.X-span, c.Y+size/2), color)
	rl.DrawTriangle(c, rl.NewVector2(c.X+span, c.Y+size/2), rl.NewVector2(c.X+span, c.Y-size/2), color)
}

func drawNote(c rl.Vector2, size float32, color rl.Color) {
	head := size / 5
	rl.DrawCircleV(c, head, color)
	top := rl.NewVector2(c.X+head, c.Y-size*0.8)
	rl.DrawLineEx(rl.NewVector2(c.X+head, c.Y), top, 2, color)
	rl.DrawLineEx(top, rl.NewVector2(top.X+head*1.5, top.Y+head), 2, color)
}
