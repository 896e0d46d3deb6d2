// Package game is the raylib front-end: it feeds pointer input to the
// effect engine, draws the live particles and runs the headless mode used
// for soak tests.
package game

import (
	"context"
	"log/slog"
	"slices"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/keepsake/audio"
	"github.com/pthm-cable/keepsake/components"
	"github.com/pthm-cable/keepsake/config"
	"github.com/pthm-cable/keepsake/engine"
	"github.com/pthm-cable/keepsake/renderer"
	"github.com/pthm-cable/keepsake/systems"
	"github.com/pthm-cable/keepsake/telemetry"
	"github.com/pthm-cable/keepsake/ui"
	"github.com/pthm-cable/keepsake/viewport"
)

// celebrationPage is mounted over the current page, never navigated to.
const celebrationPage = "celebration"

// doubleClickWindow is the maximum gap between the clicks of a double click.
const doubleClickWindow = 350 * time.Millisecond

// Options configures game initialization.
type Options struct {
	Seed       int64
	LogStats   bool
	OutputDir  string
	Headless   bool
	Page       string // start page; empty uses the config
	Mute       bool
	ConfigPath string
	Watch      bool // reload ConfigPath on change
}

// Game holds the front-end state around one engine.
type Game struct {
	cfg    *config.Config
	engine *engine.Engine
	clock  systems.Clock
	manual *systems.ManualClock // headless only

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool

	// Config reload
	watcher     *config.Watcher
	watchCancel context.CancelFunc

	// Audio
	player audio.Player
	muted  bool

	// Headless visitor
	autopilot *engine.Autopilot

	// Rendering (nil in headless mode)
	view      *viewport.Viewport
	backdrop  *renderer.Backdrop
	particles *renderer.ParticleRenderer
	sprites   []renderer.Sprite
	pressed   map[int]float64 // key index -> glow [0, 1]

	// UI
	hud       *ui.HUD
	controls  *ui.ControlsPanel
	inspector *ui.Inspector
	perfPanel *ui.PerfPanel
	overlays  *ui.OverlayRegistry

	// State
	pages        []string // navigable pages, in key order
	page         string
	tick         int32
	start        time.Time
	lastClick    time.Time
	lastPointer  components.Point
	screenWidth  float32
	screenHeight float32
}

// NewGameWithOptions creates a game with every page's sources ready and the
// start page mounted.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()
	logger := slog.Default()

	g := &Game{
		cfg:           cfg,
		logStats:      opts.LogStats,
		muted:         opts.Mute,
		perfCollector: telemetry.NewPerfCollector(120),
		pressed:       make(map[int]float64),
		lastPointer:   components.NoPoint(),
	}

	if opts.Headless {
		g.manual = systems.NewManualClock(time.Unix(0, 0))
		g.clock = g.manual
	} else {
		g.clock = systems.SystemClock{}
	}
	g.start = g.clock.Now()

	g.collector = telemetry.NewCollector(cfg.Derived.StatsWindow, g.clock)
	if cfg.Telemetry.EventLog {
		g.collector.EnableEventLog()
	}

	g.engine = engine.New(cfg, engine.Options{
		Clock:  g.clock,
		Seed:   opts.Seed,
		Logger: logger,
		Hooks:  g.collector,
	})

	for _, name := range g.engine.Pages() {
		if name != celebrationPage {
			g.pages = append(g.pages, name)
		}
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
			slog.Info("output enabled", "dir", om.Dir(), "session", om.Session())
		}
	}

	if opts.Watch && opts.ConfigPath != "" {
		g.startWatcher(opts.ConfigPath, logger)
	}

	start := opts.Page
	if start == "" {
		start = cfg.Engine.StartPage
	}

	if opts.Headless {
		g.player = audio.Nop{}
		g.autopilot = engine.NewAutopilot(
			engine.DefaultAutopilot(float64(cfg.Screen.Width), float64(cfg.Screen.Height), tourFrom(g.pages, start)),
			opts.Seed,
		)
		return g
	}

	g.player = audio.New(cfg.Audio, opts.Mute, logger)

	g.screenWidth = float32(rl.GetScreenWidth())
	g.screenHeight = float32(rl.GetScreenHeight())
	g.view = viewport.NewFit(float64(cfg.Screen.Width), float64(cfg.Screen.Height), float64(g.screenWidth), float64(g.screenHeight))
	g.particles = renderer.NewParticleRenderer(g.view)

	g.hud = ui.NewHUD()
	g.controls = ui.NewControlsPanel(280, g.pages)
	g.inspector = ui.NewInspector(260)
	g.perfPanel = ui.NewPerfPanel(260)
	g.overlays = ui.NewOverlayRegistry()

	g.backdrop = renderer.NewBackdrop(opts.Seed, start)
	g.navigate(start)
	return g
}

// tourFrom rotates pages so the tour begins at start.
func tourFrom(pages []string, start string) []string {
	i := slices.Index(pages, start)
	if i <= 0 {
		return pages
	}
	return append(slices.Clone(pages[i:]), pages[:i]...)
}

func (g *Game) startWatcher(path string, logger *slog.Logger) {
	w, err := config.NewWatcher(path, logger)
	if err != nil {
		slog.Error("failed to create config watcher", "error", err)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		cancel()
		w.Stop()
		slog.Error("failed to watch config", "error", err)
		return
	}
	g.watcher = w
	g.watchCancel = cancel
}

// applyConfigUpdates swaps in the newest reloaded config, if any.
func (g *Game) applyConfigUpdates() {
	if g.watcher == nil {
		return
	}
	select {
	case cfg := <-g.watcher.Updates():
		if cfg == nil {
			return
		}
		g.engine.ApplyConfig(cfg)
		config.Set(cfg)
	default:
	}
}

// navigate switches to a page, keeping the celebration overlay if it is up.
func (g *Game) navigate(name string) {
	celebrating := slices.Contains(g.engine.MountedPages(), celebrationPage)
	if err := g.engine.Navigate(name); err != nil {
		slog.Warn("navigate failed", "page", name, "error", err)
		return
	}
	g.page = name
	if g.backdrop != nil {
		g.backdrop.SetPage(name)
	}
	if celebrating {
		// Navigate unmounted it; the remaining time is lost.
		g.celebrate()
	}
}

// toggleMute flips the mute state, starting the speaker on first unmute.
func (g *Game) toggleMute() {
	g.muted = !g.muted
	if _, silent := g.player.(audio.Nop); !g.muted && silent {
		g.player = audio.New(g.cfg.Audio, false, slog.Default())
	}
	slog.Info("audio", "muted", g.muted)
}

func (g *Game) celebrate() {
	if err := g.engine.Celebrate(); err != nil {
		slog.Warn("celebrate failed", "error", err)
	}
}

// interact routes an interaction and sounds the piano key it pressed.
func (g *Game) interact(ev components.Interaction) int {
	spawned := g.engine.OnInteraction(ev)
	if ev.Key != nil && spawned > 0 {
		g.pressed[ev.Key.Index] = 1
		if !g.muted {
			g.player.PlayKey(*ev.Key)
		}
	}
	return spawned
}

// Update processes one frame of input, fires due timers and flushes telemetry.
func (g *Game) Update() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseInput)
	g.applyConfigUpdates()
	g.handleInput()

	g.perfCollector.StartPhase(telemetry.PhaseExpire)
	now := g.clock.Now()
	g.engine.Update(now)
	g.decayGlow(rl.GetFrameTime())

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry(now, false)

	g.perfCollector.EndTick()
	g.tick++
}

// UpdateHeadless advances the manual clock by one engine tick and lets the
// autopilot interact.
func (g *Game) UpdateHeadless() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseInput)
	g.applyConfigUpdates()
	now := g.manual.Advance(g.cfg.Derived.TickInterval)
	g.autopilot.Step(g.engine, now)
	g.page = g.autopilot.Page()

	g.perfCollector.StartPhase(telemetry.PhaseExpire)
	g.engine.Update(now)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry(now, false)

	g.perfCollector.EndTick()
	g.tick++
}

func (g *Game) decayGlow(dt float32) {
	for idx, glow := range g.pressed {
		glow -= float64(dt) * 2.5
		if glow <= 0 {
			delete(g.pressed, idx)
			continue
		}
		g.pressed[idx] = glow
	}
}

// Engine returns the underlying engine.
func (g *Game) Engine() *engine.Engine {
	return g.engine
}

// Tick returns the number of updates run.
func (g *Game) Tick() int32 {
	return g.tick
}

// Elapsed returns the engine time since start.
func (g *Game) Elapsed() time.Duration {
	return g.clock.Now().Sub(g.start)
}

// Unload releases the engine, audio, watcher and output files.
func (g *Game) Unload() {
	g.flushTelemetry(g.clock.Now(), true)
	g.engine.Close()
	if g.player != nil {
		g.player.Close()
	}
	if g.watcher != nil {
		g.watchCancel()
		g.watcher.Stop()
	}
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
}
