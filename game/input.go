package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/keepsake/components"
	"github.com/pthm-cable/keepsake/ui"
)

// pageKeys select navigable pages in order.
var pageKeys = []int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour, rl.KeyFive}

// handleInput processes keyboard and pointer input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	for i, key := range pageKeys {
		if i < len(g.pages) && rl.IsKeyPressed(key) {
			g.navigate(g.pages[i])
		}
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.celebrate()
	}
	if rl.IsKeyPressed(rl.KeyM) {
		g.toggleMute()
	}
	for _, desc := range g.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.overlays.Toggle(desc.ID)
		}
	}

	g.handlePointer()
}

// handleResize checks for window resize and refits the viewport.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	g.view.Resize(float64(w), float64(h))
}

// handlePointer turns mouse motion and clicks into engine interactions.
// Clicks over the controls panel belong to the panel.
func (g *Game) handlePointer() {
	mouse := rl.GetMousePosition()
	lx, ly := g.view.ToLogical(float64(mouse.X), float64(mouse.Y))
	pos := components.Point{X: lx, Y: ly, Space: components.SpacePixel}

	if pos != g.lastPointer {
		g.lastPointer = pos
		g.interact(components.Interaction{Type: components.InteractionMove, Position: pos})
	}

	if !rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		return
	}
	if g.overlays.IsEnabled(ui.OverlayControls) &&
		g.controls.Contains(g.overlays, mouse.X, mouse.Y, int32(g.screenWidth), int32(g.screenHeight)) {
		return
	}

	now := g.clock.Now()
	ev := components.Interaction{Type: components.InteractionClick, Position: pos, At: now}
	if key, ok := g.engine.KeyAt(pos); ok {
		ev.Key = &key
	}
	g.interact(ev)

	if ev.Key == nil && !g.lastClick.IsZero() && now.Sub(g.lastClick) <= doubleClickWindow {
		g.celebrate()
		g.lastClick = time.Time{}
		return
	}
	g.lastClick = now
}

// applyAction performs what the controls panel asked for.
func (g *Game) applyAction(act ui.Action) {
	if act.Page != "" {
		g.navigate(act.Page)
	}
	if act.Celebrate {
		g.celebrate()
	}
	if act.ToggleMute {
		g.toggleMute()
	}
	if act.Overlay != "" {
		g.overlays.Toggle(act.Overlay)
	}
}
