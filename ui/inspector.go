package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// SourceInfo is the inspector's view of one mounted effect source.
type SourceInfo struct {
	ID          string
	Kind        string
	Trigger     string
	Color       rl.Color
	Live        int
	Capacity    int
	Pending     int
	MinInterval time.Duration
	Interval    time.Duration
	OldestAge   time.Duration
}

// sourceSection describes the per-source block of the inspector.
func sourceSection() SectionDescriptor {
	info := func(data any) *SourceInfo { return data.(*SourceInfo) }
	return SectionDescriptor{
		ID: "source",
		Fields: []FieldDescriptor{
			{
				ID:          "color",
				Label:       "Color",
				Widget:      WidgetColorSwatch,
				ColorGetter: func(d any) rl.Color { return info(d).Color },
			},
			{
				ID:     "trigger",
				Label:  "Spawns",
				Widget: WidgetText,
				TextGetter: func(d any) string {
					return fmt.Sprintf("%s on %s", info(d).Kind, info(d).Trigger)
				},
			},
			{
				ID:        "live",
				Label:     "Live",
				Widget:    WidgetLoadBar,
				Getter:    func(d any) float32 { return float32(info(d).Live) },
				MaxGetter: func(d any) float32 { return float32(info(d).Capacity) },
			},
			{
				ID:     "timers",
				Label:  "Timers",
				Widget: WidgetText,
				Format: "%.0f",
				Getter: func(d any) float32 { return float32(info(d).Pending) },
			},
			{
				ID:      "throttle",
				Label:   "Throttle",
				Widget:  WidgetText,
				Visible: func(d any) bool { return info(d).MinInterval > 0 },
				TextGetter: func(d any) string {
					return info(d).MinInterval.String()
				},
			},
			{
				ID:      "interval",
				Label:   "Every",
				Widget:  WidgetText,
				Visible: func(d any) bool { return info(d).Interval > 0 },
				TextGetter: func(d any) string {
					return info(d).Interval.String()
				},
			},
			{
				ID:      "oldest",
				Label:   "Oldest",
				Widget:  WidgetText,
				Visible: func(d any) bool { return info(d).Live > 0 },
				TextGetter: func(d any) string {
					return fmt.Sprintf("%.1fs", info(d).OldestAge.Seconds())
				},
			},
		},
	}
}

// Inspector renders the mounted-source panel.
type Inspector struct {
	renderer *Renderer
	section  SectionDescriptor
	width    int32
}

// NewInspector creates a source inspector of the given width.
func NewInspector(width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		section:  sourceSection(),
		width:    width,
	}
}

// Height returns the panel height needed for sources.
func (ins *Inspector) Height(sources []SourceInfo) int32 {
	r := ins.renderer
	h := r.Theme.Padding*2 + r.Theme.LineHeight + 4
	for i := range sources {
		h += r.Theme.LineHeight + r.SectionHeight(ins.section, &sources[i])
	}
	return h
}

// Draw renders the panel anchored at the top right of the screen and
// returns its bottom edge.
func (ins *Inspector) Draw(sources []SourceInfo, screenW, screenH int32) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	height := ins.Height(sources)
	x, y := Anchor(AnchorTopRight, ins.width, height, screenW, screenH, 10)

	r.DrawPanel(x, y, ins.width, height)
	cy := y + padding
	rl.DrawText("Sources", x+padding, cy, 16, rl.RayWhite)
	cy += r.Theme.LineHeight + 4

	contentWidth := ins.width - padding*2
	for i := range sources {
		cy = r.DrawSectionHeader(x+padding, cy, sources[i].ID)
		cy = r.DrawSection(x+padding, cy, ins.section, &sources[i], contentWidth)
	}
	return y + height
}
