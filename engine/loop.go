package engine

import (
	"context"
	"time"

	"github.com/pthm-cable/keepsake/components"
	"github.com/pthm-cable/keepsake/config"
)

// Loop serializes interactions, timer expiry and config reloads onto one
// goroutine for front-ends that do not own a frame loop.
type Loop struct {
	Engine *Engine
	Tick   time.Duration

	// Configs delivers reloaded configurations. Optional.
	Configs <-chan *config.Config

	// Commands run against the engine on the loop goroutine, for input that
	// needs more than routing (navigation, key hit-testing). Optional.
	Commands <-chan func(*Engine)

	// OnTick runs after due timers fire. Optional.
	OnTick func(now time.Time)

	// OnInteraction runs after each routed interaction. Optional.
	OnInteraction func(ev components.Interaction, spawned int)
}

// Run processes events until ctx is cancelled or events is closed. The
// engine is closed on return, so every timer is released.
func (l *Loop) Run(ctx context.Context, events <-chan components.Interaction) error {
	defer l.Engine.Close()

	tick := l.Tick
	if tick <= 0 {
		tick = l.Engine.cfg.Derived.TickInterval
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			now := l.Engine.Now()
			l.Engine.Update(now)
			if l.OnTick != nil {
				l.OnTick(now)
			}

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			spawned := l.Engine.OnInteraction(ev)
			if l.OnInteraction != nil {
				l.OnInteraction(ev, spawned)
			}

		case cfg := <-l.Configs:
			if cfg != nil {
				l.Engine.ApplyConfig(cfg)
			}

		case fn := <-l.Commands:
			if fn != nil {
				fn(l.Engine)
			}
		}
	}
}
