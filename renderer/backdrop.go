package renderer

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Page background colors.
var pagePalette = map[string][2]RGB{
	"home":        {{R: 42, G: 18, B: 36, A: 255}, {R: 92, G: 34, B: 66, A: 255}},
	"letters":     {{R: 30, G: 22, B: 38, A: 255}, {R: 70, G: 44, B: 80, A: 255}},
	"music":       {{R: 14, G: 18, B: 40, A: 255}, {R: 40, G: 48, B: 96, A: 255}},
	"celebration": {{R: 10, G: 10, B: 24, A: 255}, {R: 36, G: 30, B: 70, A: 255}},
}

// Backdrop is a slowly drifting noise gradient behind the particles.
type Backdrop struct {
	noise opensimplex.Noise
	base  RGB
	glow  RGB
	scale float64 // logical pixels per noise unit
	speed float64 // noise units per second
}

// NewBackdrop creates a backdrop in the palette of page.
func NewBackdrop(seed int64, page string) *Backdrop {
	b := &Backdrop{
		noise: opensimplex.NewNormalized(seed),
		scale: 360,
		speed: 0.05,
	}
	b.SetPage(page)
	return b
}

// SetPage switches the palette. Unknown pages fall back to home.
func (b *Backdrop) SetPage(page string) {
	pal, ok := pagePalette[page]
	if !ok {
		pal = pagePalette["home"]
	}
	b.base, b.glow = pal[0], pal[1]
}

// Base returns the darkest palette color.
func (b *Backdrop) Base() RGB {
	return b.base
}

// Shade returns the backdrop color at a logical position and time in seconds.
func (b *Backdrop) Shade(x, y, seconds float64) RGB {
	n := b.noise.Eval3(x/b.scale, y/b.scale, seconds*b.speed)
	return Blend(b.glow, b.base, n*n)
}
