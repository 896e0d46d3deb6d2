// Package ui draws the raylib heads-up display, the page controls and the
// source inspector. Panels are described by field descriptors so the
// inspector layout lives next to the data it reads.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// WidgetType specifies how a field should be rendered.
type WidgetType int

const (
	WidgetText        WidgetType = iota // Plain text with format string
	WidgetBar                           // Progress bar [0, 1]
	WidgetLoadBar                       // Fill bar that warms as it approaches capacity
	WidgetColorSwatch                   // Color preview square
	WidgetSection                       // Section header
	WidgetSpacer                        // Vertical spacing
)

// FieldDescriptor defines how to display a single piece of data.
type FieldDescriptor struct {
	ID          string
	Label       string
	Widget      WidgetType
	Format      string             // Printf format for text (e.g., "%.2f")
	Color       rl.Color           // Optional color override
	Visible     func(any) bool     // nil = always visible
	Getter      func(any) float32  // numeric fields
	MaxGetter   func(any) float32  // load bars
	TextGetter  func(any) string   // text fields
	ColorGetter func(any) rl.Color // swatches
}

// SectionDescriptor defines a group of fields with a header.
type SectionDescriptor struct {
	ID      string
	Title   string
	Fields  []FieldDescriptor
	Visible func(any) bool
}

// PanelAnchor specifies where a panel is anchored on screen.
type PanelAnchor int

const (
	AnchorTopLeft PanelAnchor = iota
	AnchorTopRight
	AnchorBottomLeft
	AnchorBottomRight
)

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillLow     rl.Color
	BarFillMedium  rl.Color
	BarFillHigh    rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme: a soft rose panel over the
// pastel page backdrops.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 40, G: 28, B: 38, A: 210},
		PanelBorder:    rl.Color{R: 120, G: 80, B: 100, A: 255},
		SectionHeader:  rl.Color{R: 255, G: 190, B: 210, A: 255},
		LabelColor:     rl.Color{R: 220, G: 205, B: 215, A: 255},
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 60, G: 45, B: 55, A: 255},
		BarFill:        rl.Color{R: 240, G: 150, B: 180, A: 255},
		BarFillLow:     rl.Color{R: 140, G: 200, B: 150, A: 255},
		BarFillMedium:  rl.Color{R: 230, G: 200, B: 110, A: 255},
		BarFillHigh:    rl.Color{R: 230, G: 110, B: 110, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     80,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}

// Anchor returns the top-left corner of a w×h panel anchored inside a
// screen of the given size.
func Anchor(anchor PanelAnchor, w, h, screenW, screenH, margin int32) (x, y int32) {
	switch anchor {
	case AnchorTopRight:
		return screenW - w - margin, margin
	case AnchorBottomLeft:
		return margin, screenH - h - margin
	case AnchorBottomRight:
		return screenW - w - margin, screenH - h - margin
	default:
		return margin, margin
	}
}
