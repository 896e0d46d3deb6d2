// Terminal front-end: runs the effect engine in a tcell screen with mouse
// support. Pointer motion, clicks and the piano keyboard behave as in the
// window; effects are drawn as glyphs blended over the page backdrop.
//
// Usage: go run ./cmd/termview [-page music] [-config keepsake.yaml]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/keepsake/audio"
	"github.com/pthm-cable/keepsake/components"
	"github.com/pthm-cable/keepsake/config"
	"github.com/pthm-cable/keepsake/engine"
	"github.com/pthm-cable/keepsake/renderer"
	"github.com/pthm-cable/keepsake/systems"
	"github.com/pthm-cable/keepsake/telemetry"
)

const celebrationPage = "celebration"

type options struct {
	configPath string
	page       string
	seed       int64
	mute       bool
	watch      bool
	logStats   bool
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	page := flag.String("page", "", "Start page (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	logPath := flag.String("log", "termview.log", "Log file (the terminal is busy drawing)")
	mute := flag.Bool("mute", false, "Disable piano tones")
	watch := flag.Bool("watch", false, "Reload -config when it changes")
	logStats := flag.Bool("log-stats", false, "Log telemetry windows")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, nil)))

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	err = run(options{
		configPath: *configPath,
		page:       *page,
		seed:       rngSeed,
		mute:       *mute,
		watch:      *watch,
		logStats:   *logStats,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("termview failed", "error", err)
		fmt.Fprintf(os.Stderr, "termview: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg := config.Cfg()
	logger := slog.Default()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	collector := telemetry.NewCollector(cfg.Derived.StatsWindow, systems.SystemClock{})
	eng := engine.New(cfg, engine.Options{Seed: opts.seed, Logger: logger, Hooks: collector})

	var pages []string
	for _, name := range eng.Pages() {
		if name != celebrationPage {
			pages = append(pages, name)
		}
	}
	start := opts.page
	if start == "" {
		start = cfg.Engine.StartPage
	}
	if err := eng.Navigate(start); err != nil {
		return err
	}

	backdrop := renderer.NewBackdrop(opts.seed, start)
	view := renderer.NewTerminalRenderer(screen, float64(cfg.Screen.Width), float64(cfg.Screen.Height), backdrop)

	muted := opts.mute
	player := audio.New(cfg.Audio, opts.mute, logger)
	defer func() { player.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var configs <-chan *config.Config
	if opts.watch && opts.configPath != "" {
		w, err := config.NewWatcher(opts.configPath, logger)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			w.Stop()
			return err
		}
		defer w.Stop()
		configs = w.Updates()
	}

	pressed := make(map[int]float64)
	current := start
	started := time.Now()
	lastFrame := started

	act := actions{
		navigate: func(e *engine.Engine, page string) {
			celebrating := slices.Contains(e.MountedPages(), celebrationPage)
			if err := e.Navigate(page); err != nil {
				logger.Warn("navigate failed", "page", page, "error", err)
				return
			}
			current = page
			backdrop.SetPage(page)
			if celebrating {
				if err := e.Celebrate(); err != nil {
					logger.Warn("celebrate failed", "error", err)
				}
			}
		},
		celebrate: func(e *engine.Engine) {
			if err := e.Celebrate(); err != nil {
				logger.Warn("celebrate failed", "error", err)
			}
		},
		click: func(e *engine.Engine, ev components.Interaction) {
			ev.At = e.Now()
			if key, ok := e.KeyAt(ev.Position); ok {
				ev.Key = &key
			}
			if e.OnInteraction(ev) > 0 && ev.Key != nil {
				pressed[ev.Key.Index] = 1
				if !muted {
					player.PlayKey(*ev.Key)
				}
			}
		},
		toggleMute: func(*engine.Engine) {
			muted = !muted
			if _, silent := player.(audio.Nop); !muted && silent {
				player = audio.New(cfg.Audio, false, logger)
			}
		},
	}

	events := make(chan components.Interaction, 64)
	commands := make(chan func(*engine.Engine), 16)
	cols, rows := screen.Size()
	in := newInput(float64(cfg.Screen.Width), float64(cfg.Screen.Height), cols, rows, pages, events, commands, act)
	go pump(ctx, screen, in, cancel)

	loop := &engine.Loop{
		Engine:   eng,
		Configs:  configs,
		Commands: commands,
		OnTick: func(now time.Time) {
			dt := now.Sub(lastFrame).Seconds()
			lastFrame = now
			for idx, glow := range pressed {
				if glow -= dt * 2.5; glow <= 0 {
					delete(pressed, idx)
				} else {
					pressed[idx] = glow
				}
			}

			drawFrame(eng, view, now.Sub(started).Seconds(), now, pressed, status(eng, current, pages, muted))

			if collector.ShouldFlush(now) {
				live, mounted := eng.Live()
				stats := collector.Flush(now, live, mounted)
				if opts.logStats {
					stats.LogStats()
				}
			}
		},
	}

	logger.Info("termview started", "page", start, "seed", opts.seed, "cols", cols, "rows", rows)
	return loop.Run(ctx, events)
}

// drawFrame renders one frame: backdrop, decorations, keyboard, particles
// and the status line.
func drawFrame(eng *engine.Engine, view *renderer.TerminalRenderer, seconds float64, now time.Time, pressed map[int]float64, statusLine string) {
	view.Sync()
	view.DrawBackdrop(seconds)

	for _, name := range eng.MountedPages() {
		if decorations, err := eng.Decorations(name); err == nil && len(decorations) > 0 {
			view.DrawDecorations(decorations, seconds)
		}
	}

	var sprites []renderer.Sprite
	for _, id := range eng.Sources() {
		cfg, active, err := eng.Source(id)
		if err != nil || !active {
			continue
		}
		if cfg.Kind == components.KindPianoRipple {
			kb := eng.Keyboard()
			view.DrawKeyboard(cfg.Surface, kb.White(), kb.Black(), pressed)
		}
		live, err := eng.Snapshot(id)
		if err != nil {
			continue
		}
		sprites = renderer.ProjectAll(live, cfg.Surface, now, sprites)
	}
	view.Draw(sprites)

	view.DrawStatus(statusLine)
	view.Show()
}

func status(eng *engine.Engine, current string, pages []string, muted bool) string {
	live, _ := eng.Live()
	var keys []string
	for i, p := range pages {
		keys = append(keys, fmt.Sprintf("%d %s", i+1, p))
	}
	line := fmt.Sprintf(" %s | live %d | %s | c celebrate | m mute | q quit", current, live, strings.Join(keys, "  "))
	if slices.Contains(eng.MountedPages(), celebrationPage) {
		line += " | celebrating"
	}
	if muted {
		line += " | muted"
	}
	return line
}
