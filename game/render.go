package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/keepsake/components"
	"github.com/pthm-cable/keepsake/renderer"
	"github.com/pthm-cable/keepsake/ui"
)

// Draw renders the current page, its particles and the UI.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()
	now := g.clock.Now()
	seconds := now.Sub(g.start).Seconds()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.particles.DrawBackdrop(g.backdrop, seconds)

	for _, name := range g.engine.MountedPages() {
		decorations, err := g.engine.Decorations(name)
		if err == nil && len(decorations) > 0 {
			g.particles.DrawDecorations(decorations, seconds)
		}
	}

	if surface, ok := g.keyboardSurface(); ok {
		kb := g.engine.Keyboard()
		g.particles.DrawKeyboard(surface, kb.White(), kb.Black(), g.pressed)
	}

	g.drawParticles(now)

	if g.overlays.IsEnabled(ui.OverlaySurfaces) {
		g.drawSurfaces()
	}

	act := g.drawUI()

	rl.EndDrawing()

	g.applyAction(act)
}

// drawParticles projects and draws every mounted source's live set, oldest
// first within each source.
func (g *Game) drawParticles(now time.Time) {
	for _, id := range g.engine.Sources() {
		cfg, active, err := g.engine.Source(id)
		if err != nil || !active {
			continue
		}
		live, err := g.engine.Snapshot(id)
		if err != nil || len(live) == 0 {
			continue
		}
		g.sprites = renderer.ProjectAll(live, cfg.Surface, now, g.sprites[:0])
		g.particles.Draw(g.sprites)
	}
}

// keyboardSurface returns the surface of the mounted piano ripple source.
func (g *Game) keyboardSurface() (components.Surface, bool) {
	for _, id := range g.engine.Sources() {
		cfg, active, err := g.engine.Source(id)
		if err == nil && active && cfg.Kind == components.KindPianoRipple {
			return cfg.Surface, true
		}
	}
	return components.Surface{}, false
}

// drawSurfaces outlines the interaction area of every mounted source.
func (g *Game) drawSurfaces() {
	for _, id := range g.engine.Sources() {
		cfg, active, err := g.engine.Source(id)
		if err != nil || !active {
			continue
		}
		x, y := g.view.ToScreen(cfg.Surface.X, cfg.Surface.Y)
		x2, y2 := g.view.ToScreen(cfg.Surface.X+cfg.Surface.W, cfg.Surface.Y+cfg.Surface.H)
		rect := rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(x2 - x), Height: float32(y2 - y)}
		rl.DrawRectangleLinesEx(rect, 1, rl.Color{R: 255, G: 255, B: 255, A: 90})
		rl.DrawText(string(id), int32(x)+4, int32(y)+4, 10, rl.Color{R: 255, G: 255, B: 255, A: 140})
	}
}

// drawUI draws the HUD and panels and returns the control action of this frame.
func (g *Game) drawUI() ui.Action {
	w, h := int32(g.screenWidth), int32(g.screenHeight)
	totals := g.collector.Totals()

	if g.overlays.IsEnabled(ui.OverlayHUD) {
		live, mounted := g.engine.Live()
		g.hud.Draw(ui.HUDData{
			Title:     "Keepsake",
			Pages:     g.engine.MountedPages(),
			Live:      live,
			Sources:   mounted,
			Timers:    g.engine.Pending(),
			Spawned:   totals.Spawned,
			Throttled: totals.Throttled,
			Evicted:   totals.Evicted,
			FPS:       rl.GetFPS(),
			Muted:     g.muted,
		})
	}

	if g.overlays.IsEnabled(ui.OverlayInspector) {
		g.inspector.Draw(g.sourceInfos(), w, h)
	}

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		stats := g.perfCollector.Stats()
		g.perfPanel.Draw(ui.PerfPanelData{
			PhaseTimes: stats.PhaseAvg,
			Total:      stats.AvgTickDuration,
			TPS:        stats.TicksPerSecond,
		}, w, h)
	}

	var act ui.Action
	if g.overlays.IsEnabled(ui.OverlayControls) {
		act = g.controls.Draw(g.overlays, g.engine.MountedPages(), g.muted, w, h)
	}
	g.hud.DrawControls(w, h, g.overlays)
	return act
}

// sourceInfos collects the inspector rows for mounted sources.
func (g *Game) sourceInfos() []ui.SourceInfo {
	now := g.clock.Now()
	var infos []ui.SourceInfo
	for _, id := range g.engine.Sources() {
		cfg, active, err := g.engine.Source(id)
		if err != nil || !active {
			continue
		}
		live, _ := g.engine.Snapshot(id)
		info := ui.SourceInfo{
			ID:          string(id),
			Kind:        cfg.Kind.String(),
			Trigger:     cfg.Trigger.String(),
			Live:        len(live),
			Capacity:    cfg.Capacity,
			Pending:     g.engine.SourcePending(id),
			MinInterval: cfg.MinInterval,
			Interval:    cfg.Interval,
		}
		if len(live) > 0 {
			c := renderer.ParticleColor(live[0])
			info.Color = rl.NewColor(c.R, c.G, c.B, 255)
			info.OldestAge = live[0].Age(now)
		}
		infos = append(infos, info)
	}
	return infos
}
