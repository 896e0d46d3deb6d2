package ui

import (
	"fmt"
	"slices"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Action is what the user asked for through the controls panel this frame.
type Action struct {
	Page       string // page to navigate to, empty for none
	Celebrate  bool
	ToggleMute bool
	Overlay    OverlayID // overlay toggled, empty for none
}

// None reports whether no control was used.
func (a Action) None() bool {
	return a == Action{}
}

// ControlsPanel renders the bottom-left panel of page buttons, the
// celebrate button, mute and the overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	width    int32
	pages    []string
}

// NewControlsPanel creates a controls panel with one button per navigable page.
func NewControlsPanel(width int32, pages []string) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		width:    width,
		pages:    pages,
	}
}

const (
	buttonHeight = 24
	buttonGap    = 6
)

// Height returns the panel height for the registered overlays.
func (c *ControlsPanel) Height(overlays *OverlayRegistry) int32 {
	r := c.renderer
	rows := int32(len(overlays.All()) + len(overlays.Categories()))
	return r.Theme.Padding*2 + (buttonHeight+buttonGap)*2 + rows*r.Theme.LineHeight + 8
}

// Draw renders the panel and returns the action triggered this frame.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry, current []string, muted bool, screenW, screenH int32) Action {
	var act Action
	r := c.renderer
	padding := r.Theme.Padding
	height := c.Height(overlays)
	x, y := Anchor(AnchorBottomLeft, c.width, height, screenW, screenH, 28)
	r.DrawPanel(x, y, c.width, height)

	bx := float32(x + padding)
	by := float32(y + padding)
	inner := float32(c.width - padding*2)

	if n := len(c.pages); n > 0 {
		bw := (inner - float32(n-1)*buttonGap) / float32(n)
		for i, name := range c.pages {
			label := titleCase(name)
			if slices.Contains(current, name) {
				label = "> " + label
			}
			rect := rl.Rectangle{X: bx + float32(i)*(bw+buttonGap), Y: by, Width: bw, Height: buttonHeight}
			if gui.Button(rect, label) {
				act.Page = name
			}
		}
	}
	by += buttonHeight + buttonGap

	half := (inner - buttonGap) / 2
	if gui.Button(rl.Rectangle{X: bx, Y: by, Width: half, Height: buttonHeight}, "Celebrate") {
		act.Celebrate = true
	}
	if gui.Button(rl.Rectangle{X: bx + half + buttonGap, Y: by, Width: half, Height: buttonHeight}, toggleText(muted, "Unmute", "Mute")) {
		act.ToggleMute = true
	}
	by += buttonHeight + buttonGap + 4

	cy := int32(by)
	for _, category := range overlays.Categories() {
		cy = r.DrawSectionHeader(x+padding, cy, titleCase(category))
		for _, desc := range overlays.ByCategory(category) {
			if c.drawToggle(x+padding, cy, desc, overlays.IsEnabled(desc.ID), c.width-padding*2) {
				act.Overlay = desc.ID
			}
			cy += r.Theme.LineHeight
		}
	}
	return act
}

// drawToggle draws a single overlay toggle line and reports whether it
// was clicked.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) bool {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 70, B: 78, A: 255}
	if enabled {
		statusColor = r.Theme.BarFillLow
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.RayWhite
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 160, G: 140, B: 150, A: 255})
	}

	bounds := rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(width), Height: float32(r.Theme.LineHeight)}
	return rl.IsMouseButtonPressed(rl.MouseLeftButton) && rl.CheckCollisionPointRec(rl.GetMousePosition(), bounds)
}

// Contains reports whether the screen point lies over the panel, so clicks
// there are not forwarded to effect sources.
func (c *ControlsPanel) Contains(overlays *OverlayRegistry, px, py float32, screenW, screenH int32) bool {
	height := c.Height(overlays)
	x, y := Anchor(AnchorBottomLeft, c.width, height, screenW, screenH, 28)
	bounds := rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(c.width), Height: float32(height)}
	return rl.CheckCollisionPointRec(rl.Vector2{X: px, Y: py}, bounds)
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
