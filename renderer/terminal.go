package renderer

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/pthm-cable/keepsake/components"
	"github.com/pthm-cable/keepsake/viewport"
)

// Terminal glyphs per kind, used when a particle carries none.
var kindGlyph = map[components.Kind]rune{
	components.KindHeartBurst:   '♥',
	components.KindPetal:        '❀',
	components.KindSparkle:      '✦',
	components.KindRosePetal:    '❦',
	components.KindFirefly:      '•',
	components.KindButterfly:    'ж',
	components.KindPianoRipple:  'o',
	components.KindFloatingNote: '♪',
	components.KindBubble:       'o',
	components.KindFirework:     '*',
}

// Fallback for glyphs the terminal would render two cells wide.
const narrowGlyph = '*'

// cellGlyph returns the single-cell rune drawn for s.
func cellGlyph(s Sprite) rune {
	g := s.Glyph
	if g == 0 {
		g = kindGlyph[s.Kind]
	}
	if g == 0 || runewidth.RuneWidth(g) != 1 {
		return narrowGlyph
	}
	return g
}

// TerminalRenderer draws the page into a tcell screen, one sprite per cell.
// Terminals have no alpha, so each sprite's color is blended against the
// backdrop of its cell.
type TerminalRenderer struct {
	screen   tcell.Screen
	view     *viewport.Viewport
	backdrop *Backdrop
	width    int
	height   int
	bg       [][]RGB // backdrop color per cell for the current frame
}

// NewTerminalRenderer creates a renderer for a logical page of the given size.
func NewTerminalRenderer(screen tcell.Screen, logicalW, logicalH float64, backdrop *Backdrop) *TerminalRenderer {
	r := &TerminalRenderer{screen: screen, backdrop: backdrop}
	w, h := screen.Size()
	r.view = viewport.NewStretch(logicalW, logicalH, float64(w), float64(h))
	r.resize(w, h)
	return r
}

// Viewport returns the logical-to-cell mapping, for translating mouse input.
func (r *TerminalRenderer) Viewport() *viewport.Viewport {
	return r.view
}

// Sync picks up a terminal resize.
func (r *TerminalRenderer) Sync() {
	w, h := r.screen.Size()
	if w != r.width || h != r.height {
		r.view.Resize(float64(w), float64(h))
		r.resize(w, h)
	}
}

func (r *TerminalRenderer) resize(w, h int) {
	r.width, r.height = w, h
	r.bg = make([][]RGB, h)
	for y := range r.bg {
		r.bg[y] = make([]RGB, w)
	}
}

// cell maps a logical position to a cell. ok is false off screen.
func (r *TerminalRenderer) cell(lx, ly float64) (x, y int, ok bool) {
	sx, sy := r.view.ToScreen(lx, ly)
	x, y = int(math.Floor(sx)), int(math.Floor(sy))
	return x, y, x >= 0 && x < r.width && y >= 0 && y < r.height
}

func style(fg, bg RGB) tcell.Style {
	return tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(fg.R), int32(fg.G), int32(fg.B))).
		Background(tcell.NewRGBColor(int32(bg.R), int32(bg.G), int32(bg.B)))
}

// DrawBackdrop fills every cell with the backdrop shade.
func (r *TerminalRenderer) DrawBackdrop(seconds float64) {
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			lx, ly := r.view.ToLogical(float64(x)+0.5, float64(y)+0.5)
			c := r.backdrop.Shade(lx, ly, seconds)
			r.bg[y][x] = c
			r.screen.SetContent(x, y, ' ', nil, style(c, c))
		}
	}
}

// DrawDecorations renders pearl flowers that have bloomed.
func (r *TerminalRenderer) DrawDecorations(decorations []components.Decoration, seconds float64) {
	pearl := RGB{R: 250, G: 240, B: 245, A: 255}
	for _, d := range decorations {
		bloom := clamp01(seconds - d.Delay.Seconds())
		if bloom <= 0 {
			continue
		}
		x, y, ok := r.cell(d.X/100*r.view.LogicalW, d.Y/100*r.view.LogicalH)
		if !ok {
			continue
		}
		bg := r.bg[y][x]
		glyph := '✿'
		if d.PetalCount == 5 {
			glyph = '❀'
		}
		r.screen.SetContent(x, y, glyph, nil, style(Blend(pearl, bg, 0.6*bloom), bg))
	}
}

// Draw renders sprites. Later sprites overwrite earlier ones in the same cell.
func (r *TerminalRenderer) Draw(sprites []Sprite) {
	for _, s := range sprites {
		x, y, ok := r.cell(s.X, s.Y)
		if !ok {
			continue
		}
		bg := r.bg[y][x]
		if s.Kind == components.KindPianoRipple {
			r.drawRing(s)
			continue
		}
		r.screen.SetContent(x, y, cellGlyph(s), nil, style(Blend(s.Color, bg, s.Opacity), bg))
	}
}

// drawRing draws a ripple as a ring of cells around its center.
func (r *TerminalRenderer) drawRing(s Sprite) {
	radius := s.Size / 2
	steps := max(8, int(radius*r.view.ScaleX*4))
	for i := 0; i < steps; i++ {
		a := float64(i) / float64(steps) * 2 * math.Pi
		x, y, ok := r.cell(s.X+math.Cos(a)*radius, s.Y+math.Sin(a)*radius)
		if !ok {
			continue
		}
		bg := r.bg[y][x]
		r.screen.SetContent(x, y, '·', nil, style(Blend(s.Color, bg, min(1, s.Opacity*3)), bg))
	}
}

// DrawKeyboard renders piano keys inside surface. pressed maps key index to
// a 0..1 highlight.
func (r *TerminalRenderer) DrawKeyboard(surface components.Surface, white, black []components.Key, pressed map[int]float64) {
	ivory := RGB{R: 245, G: 242, B: 235, A: 255}
	ebony := RGB{R: 30, G: 28, B: 36, A: 255}
	amber := RGB{R: 255, G: 200, B: 100, A: 255}
	fill := func(k components.Key, height float64, base RGB) {
		x0, y0, _ := r.cell(surface.X+k.Left/100*surface.W, surface.Y)
		x1, y1, _ := r.cell(surface.X+(k.Left+k.Width)/100*surface.W, surface.Y+surface.H*height)
		c := Blend(amber, base, pressed[k.Index])
		for y := max(y0, 0); y < min(y1, r.height); y++ {
			for x := max(x0, 0); x < min(x1, r.width); x++ {
				glyph := ' '
				if x == x1-1 && !k.Black {
					glyph = '▏'
				}
				r.bg[y][x] = c
				r.screen.SetContent(x, y, glyph, nil, style(ebony, c))
			}
		}
	}
	for _, k := range white {
		fill(k, 1, ivory)
	}
	for _, k := range black {
		fill(k, 0.6, ebony)
	}
}

// DrawStatus writes text on the last row.
func (r *TerminalRenderer) DrawStatus(text string) {
	if r.height == 0 {
		return
	}
	st := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	x := 0
	for _, ch := range text {
		if x >= r.width {
			break
		}
		r.screen.SetContent(x, r.height-1, ch, nil, st)
		x += max(runewidth.RuneWidth(ch), 1)
	}
	for ; x < r.width; x++ {
		r.screen.SetContent(x, r.height-1, ' ', nil, st)
	}
}

// Show flushes the frame to the terminal.
func (r *TerminalRenderer) Show() {
	r.screen.Show()
}
