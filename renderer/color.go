package renderer

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/keepsake/components"
)

// RGB is an 8-bit color with a base opacity that projection multiplies in.
type RGB struct {
	R, G, B uint8
	A       uint8
}

// Alpha returns the base opacity as a fraction.
func (c RGB) Alpha() float64 {
	return float64(c.A) / 255
}

// Piano ripple tints.
var (
	tintWhite = RGB{R: 255, G: 255, B: 255, A: 51}  // rgba(255, 255, 255, 0.2)
	tintAmber = RGB{R: 255, G: 200, B: 100, A: 77}  // rgba(255, 200, 100, 0.3)
	tintNone  = RGB{R: 230, G: 230, B: 255, A: 64}
)

// Saturation per kind; hue and lightness come from the particle.
var kindSaturation = map[components.Kind]float64{
	components.KindHeartBurst:   0.85,
	components.KindPetal:        0.7,
	components.KindSparkle:      0.9,
	components.KindRosePetal:    0.75,
	components.KindFirefly:      1.0,
	components.KindButterfly:    0.8,
	components.KindFloatingNote: 0.6,
	components.KindBubble:       0.5,
	components.KindFirework:     0.9,
}

// ParticleColor returns the base color of p. Piano ripples use their key
// tint; every other kind is an HSL color from its frozen attributes.
func ParticleColor(p components.Particle) RGB {
	if p.Kind == components.KindPianoRipple {
		switch p.Attributes.Tint {
		case components.TintWhite:
			return tintWhite
		case components.TintAmber:
			return tintAmber
		}
		return tintNone
	}
	sat, ok := kindSaturation[p.Kind]
	if !ok {
		sat = 0.7
	}
	l := p.Attributes.Lightness
	if l == 0 {
		l = 0.7
	}
	r, g, b := colorful.Hsl(p.Attributes.Hue, sat, l).Clamped().RGB255()
	return RGB{R: r, G: g, B: b, A: 255}
}

// Blend mixes c toward bg by 1-opacity, for outputs without alpha blending.
func Blend(c, bg RGB, opacity float64) RGB {
	fc := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	fb := colorful.Color{R: float64(bg.R) / 255, G: float64(bg.G) / 255, B: float64(bg.B) / 255}
	r, g, b := fb.BlendRgb(fc, clamp01(opacity)).Clamped().RGB255()
	return RGB{R: r, G: g, B: b, A: 255}
}
