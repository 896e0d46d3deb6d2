package main

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/keepsake/components"
	"github.com/pthm-cable/keepsake/engine"
	"github.com/pthm-cable/keepsake/viewport"
)

// actions are the page-level effects of key presses, run on the loop goroutine.
type actions struct {
	navigate   func(e *engine.Engine, page string)
	celebrate  func(e *engine.Engine)
	click      func(e *engine.Engine, ev components.Interaction)
	toggleMute func(e *engine.Engine)
}

// input translates tcell events into engine interactions and commands.
// It owns its own cell-to-logical mapping so the event goroutine never
// touches renderer state.
type input struct {
	view     *viewport.Viewport
	pages    []string
	buttons  tcell.ButtonMask
	events   chan<- components.Interaction
	commands chan<- func(*engine.Engine)
	act      actions
}

func newInput(logicalW, logicalH float64, cols, rows int, pages []string,
	events chan<- components.Interaction, commands chan<- func(*engine.Engine), act actions) *input {
	return &input{
		view:     viewport.NewStretch(logicalW, logicalH, float64(cols), float64(rows)),
		pages:    pages,
		events:   events,
		commands: commands,
		act:      act,
	}
}

// position maps the center of a cell to logical pixels.
func (in *input) position(x, y int) components.Point {
	lx, ly := in.view.ToLogical(float64(x)+0.5, float64(y)+0.5)
	return components.Point{X: lx, Y: ly, Space: components.SpacePixel}
}

// handle processes one event and reports whether the user asked to quit.
func (in *input) handle(ctx context.Context, ev tcell.Event) (quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return in.handleKey(ctx, ev)

	case *tcell.EventMouse:
		x, y := ev.Position()
		pos := in.position(x, y)
		pressed := ev.Buttons()&tcell.Button1 != 0 && in.buttons&tcell.Button1 == 0
		in.buttons = ev.Buttons()

		if pressed {
			click := components.Interaction{Type: components.InteractionClick, Position: pos}
			in.command(ctx, func(e *engine.Engine) { in.act.click(e, click) })
			return false
		}
		in.send(ctx, components.Interaction{Type: components.InteractionMove, Position: pos})

	case *tcell.EventResize:
		w, h := ev.Size()
		in.view.Resize(float64(w), float64(h))
	}
	return false
}

func (in *input) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	switch r := ev.Rune(); {
	case r == 'q':
		return true
	case r == 'c':
		in.command(ctx, in.act.celebrate)
	case r == 'm':
		in.command(ctx, in.act.toggleMute)
	case r >= '1' && r <= '9':
		if i := int(r - '1'); i < len(in.pages) {
			page := in.pages[i]
			in.command(ctx, func(e *engine.Engine) { in.act.navigate(e, page) })
		}
	}
	return false
}

func (in *input) send(ctx context.Context, ev components.Interaction) {
	select {
	case in.events <- ev:
	case <-ctx.Done():
	}
}

func (in *input) command(ctx context.Context, fn func(*engine.Engine)) {
	select {
	case in.commands <- fn:
	case <-ctx.Done():
	}
}

// pump feeds screen events to in until ctx is done or the screen is finalized.
func pump(ctx context.Context, screen tcell.Screen, in *input, quit func()) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		if in.handle(ctx, ev) {
			quit()
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}
