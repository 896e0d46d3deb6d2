package ui

import (
	"fmt"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Pages     []string // mounted pages
	Live      int
	Sources   int
	Timers    int
	Spawned   int
	Throttled int
	Evicted   int
	FPS       int32
	Muted     bool
	Headless  bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD in the top left corner.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	width, height := int32(300), int32(92)
	r.DrawPanel(6, 6, width, height)

	rl.DrawText(data.Title, 14, 12, 20, rl.RayWhite)

	pages := "-"
	if len(data.Pages) > 0 {
		pages = fmt.Sprint(data.Pages)
	}
	rl.DrawText(fmt.Sprintf("Page: %s", pages), 14, 36, 14, r.Theme.LabelColor)

	rl.DrawText(
		fmt.Sprintf("Live: %d | Sources: %d | Timers: %d | FPS: %d", data.Live, data.Sources, data.Timers, data.FPS),
		14, 54, 12, r.Theme.LabelColor,
	)
	rl.DrawText(
		fmt.Sprintf("Spawned: %d | Throttled: %d | Evicted: %d", data.Spawned, data.Throttled, data.Evicted),
		14, 70, 12, r.Theme.LabelColor,
	)

	if data.Muted {
		rl.DrawText("MUTED", width-44, 14, 12, r.Theme.SectionHeader)
	}
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, overlays *OverlayRegistry) {
	legend := "1-4 pages | C celebrate | M mute"
	for _, desc := range overlays.All() {
		if desc.KeyLabel != "" {
			legend += fmt.Sprintf(" | %s %s", desc.KeyLabel, desc.Name)
		}
	}
	rl.DrawText(legend, 10, screenHeight-22, 12, rl.Color{R: 90, G: 70, B: 85, A: 255})
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	PhaseTimes map[string]time.Duration
	Total      time.Duration
	TPS        float64
}

// PerfPanel renders the tick phase breakdown.
type PerfPanel struct {
	renderer *Renderer
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(width int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), width: width}
}

// Draw renders the performance panel anchored top right.
func (p *PerfPanel) Draw(data PerfPanelData, screenW, screenH int32) {
	r := p.renderer
	names := make([]string, 0, len(data.PhaseTimes))
	for name := range data.PhaseTimes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return data.PhaseTimes[names[i]] > data.PhaseTimes[names[j]]
	})

	height := r.Theme.Padding*2 + 36 + int32(len(names))*14
	x, y := Anchor(AnchorTopRight, p.width, height, screenW, screenH, 10)
	r.DrawPanel(x, y, p.width, height)
	x += r.Theme.Padding
	y += r.Theme.Padding

	rl.DrawText("Tick Performance", x, y, 16, rl.RayWhite)
	y += 20

	rl.DrawText(fmt.Sprintf("Total: %s (%.0f tps)", data.Total.Round(time.Microsecond), data.TPS), x, y, 14, r.Theme.SectionHeader)
	y += 16

	for _, name := range names {
		avg := data.PhaseTimes[name]
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}

		color := r.Theme.LabelColor
		if pct > 50 {
			color = r.Theme.BarFillHigh
		} else if pct > 25 {
			color = r.Theme.BarFillMedium
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
