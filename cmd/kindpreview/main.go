// Particle kind preview tool - interactive tuning of a kind's ranges with sliders.
//
// Click the preview to spawn at the pointer; scatter kinds spawn on their own.
// Press C to copy the tuned kind as YAML ready to paste under kinds:.
//
// Usage: go run ./cmd/kindpreview [-config keepsake.yaml] [-kind petal]
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/keepsake/components"
	"github.com/pthm-cable/keepsake/config"
	"github.com/pthm-cable/keepsake/engine"
	"github.com/pthm-cable/keepsake/renderer"
	"github.com/pthm-cable/keepsake/systems"
	"github.com/pthm-cable/keepsake/viewport"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 560
	panelWidth   = windowWidth - previewSize - 30
)

// slider is one tunable bound of a kind policy.
type slider struct {
	label    string
	min, max float32
	format   string
	value    func(k *config.KindConfig) *float64
}

var sliders = []slider{
	{"Size min", 1, 60, "%.0f", func(k *config.KindConfig) *float64 { return &k.Size.Min }},
	{"Size max", 1, 60, "%.0f", func(k *config.KindConfig) *float64 { return &k.Size.Max }},
	{"Hue min", 0, 360, "%.0f", func(k *config.KindConfig) *float64 { return &k.Hue.Min }},
	{"Hue max", 0, 360, "%.0f", func(k *config.KindConfig) *float64 { return &k.Hue.Max }},
	{"Distance max", 0, 300, "%.0f", func(k *config.KindConfig) *float64 { return &k.Distance.Max }},
	{"Drift Y max", -200, 200, "%.0f", func(k *config.KindConfig) *float64 { return &k.DriftY.Max }},
	{"Rise max", 0, 300, "%.0f", func(k *config.KindConfig) *float64 { return &k.Rise.Max }},
	{"Duration max (ms)", 100, 8000, "%.0f", func(k *config.KindConfig) *float64 { return &k.DurationMS.Max }},
}

type preview struct {
	cfg     *config.Config
	kinds   []components.Kind
	current int
	factory *systems.Factory
	rng     *rand.Rand
	live    []components.Particle
	sprites []renderer.Sprite
	surface components.Surface
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	kindName := flag.String("kind", "heart_burst", "Kind to start with")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	p := &preview{
		cfg:     cfg,
		kinds:   components.AllKinds(),
		factory: systems.NewFactory(engine.KindTable(cfg)),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		surface: components.Surface{W: previewSize, H: previewSize},
	}
	if kind, err := components.ParseKind(*kindName); err == nil {
		for i, k := range p.kinds {
			if k == kind {
				p.current = i
			}
		}
	}

	rl.InitWindow(windowWidth, windowHeight, "Kind Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	view := viewport.NewFit(previewSize, previewSize, previewSize, previewSize)
	view.OffsetX, view.OffsetY = 10, 10
	draw := renderer.NewParticleRenderer(view)

	var lastScatter time.Time

	for !rl.WindowShouldClose() {
		now := time.Now()
		kind := p.kinds[p.current]
		kc := cfg.Kinds.Get(kind)

		mouse := rl.GetMousePosition()
		lx, ly := view.ToLogical(float64(mouse.X), float64(mouse.Y))
		if rl.IsMouseButtonPressed(rl.MouseLeftButton) && p.surface.Contains(components.Point{X: lx, Y: ly}) {
			p.spawn(components.Point{X: lx, Y: ly, Space: components.SpacePixel}, now)
		}
		if kc.Placement == "scatter" && now.Sub(lastScatter) > 250*time.Millisecond {
			p.spawn(components.NoPoint(), now)
			lastScatter = now
		}
		p.expire(now)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawRectangle(10, 10, previewSize, previewSize, rl.NewColor(40, 22, 34, 255))
		p.sprites = renderer.ProjectAll(p.live, p.surface, now, p.sprites[:0])
		draw.Draw(p.sprites)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Live: %d  Lifetime: up to %s", len(p.live), maxLifetime(kc)), 15, statsY, 16, rl.DarkGray)
		rl.DrawText("Click the preview to spawn", 15, statsY+20, 16, rl.DarkGray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Kind Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 40, Height: 30}, "<") {
			p.selectKind(-1)
		}
		rl.DrawText(kind.String(), int32(panelX+55), int32(panelY+7), 18, rl.DarkGray)
		if gui.Button(rl.Rectangle{X: panelX + float32(panelWidth) - 60, Y: panelY, Width: 40, Height: 30}, ">") {
			p.selectKind(1)
		}
		panelY += 45

		changed := false

		rl.DrawText("Count", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newCount := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1", "40",
			float32(kc.Count), 1, 40,
		)
		rl.DrawText(fmt.Sprintf("%d", kc.Count), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newCount) != kc.Count {
			kc.Count = int(newCount)
			changed = true
		}
		panelY += 35

		for _, s := range sliders {
			v := s.value(kc)
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			nv := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				fmt.Sprintf(s.format, s.min), fmt.Sprintf(s.format, s.max),
				float32(*v), s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, *v), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if float64(nv) != *v {
				*v = float64(nv)
				changed = true
			}
			panelY += 35
		}

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Clear") {
			p.live = p.live[:0]
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Kind") {
			p.resetKind(*configPath)
			changed = true
		}
		panelY += 45

		if changed {
			normalize(kc)
			p.factory.SetTable(engine.KindTable(cfg))
		}

		snippet := kindYAML(kind, kc)
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for _, line := range strings.Split(snippet, "\n") {
			if panelY > windowHeight-40 {
				break
			}
			rl.DrawText(line, int32(panelX), int32(panelY), 12, rl.Gray)
			panelY += 14
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(snippet)
		}

		rl.EndDrawing()
	}
}

// spawn generates one batch and stamps it the way a source would.
func (p *preview) spawn(origin components.Point, now time.Time) {
	for _, particle := range p.factory.Generate(p.kinds[p.current], origin, p.rng) {
		particle.CreatedAt = now
		p.live = append(p.live, particle)
	}
}

func (p *preview) expire(now time.Time) {
	kept := p.live[:0]
	for _, particle := range p.live {
		if now.Before(particle.Expiry()) {
			kept = append(kept, particle)
		}
	}
	p.live = kept
}

func (p *preview) selectKind(step int) {
	p.current = (p.current + step + len(p.kinds)) % len(p.kinds)
	p.live = p.live[:0]
}

// resetKind reloads the current kind from the config file.
func (p *preview) resetKind(path string) {
	fresh, err := config.Load(path)
	if err != nil {
		return
	}
	kind := p.kinds[p.current]
	*p.cfg.Kinds.Get(kind) = *fresh.Kinds.Get(kind)
}

// normalize keeps each tuned range ordered.
func normalize(k *config.KindConfig) {
	for _, r := range []*config.Range{&k.Size, &k.Hue, &k.Distance, &k.DriftY, &k.Rise, &k.DurationMS} {
		if r.Max < r.Min {
			r.Min = r.Max
		}
	}
}

func maxLifetime(k *config.KindConfig) time.Duration {
	return time.Duration((k.DelayMS.Max + k.DurationMS.Max) * float64(time.Millisecond))
}

// kindYAML renders a single kind as it would appear under kinds:.
func kindYAML(kind components.Kind, k *config.KindConfig) string {
	out, err := yaml.Marshal(map[string]*config.KindConfig{kind.String(): k})
	if err != nil {
		return err.Error()
	}
	return strings.TrimRight(string(out), "\n")
}
