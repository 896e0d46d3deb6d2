package game

import (
	"log/slog"
	"time"
)

// flushTelemetry closes the stats window when it has elapsed (or when
// forced at shutdown) and writes it out.
func (g *Game) flushTelemetry(now time.Time, force bool) {
	if !force && !g.collector.ShouldFlush(now) {
		return
	}

	live, mounted := g.engine.Live()
	stats := g.collector.Flush(now, live, mounted)
	perfStats := g.perfCollector.Stats()

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndSec); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
		if err := g.outputManager.WriteEvents(g.collector.DrainEvents()); err != nil {
			slog.Error("failed to write events", "error", err)
		}
	}
}
