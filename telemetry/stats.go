package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	Session        string  `csv:"session"`
	WindowStartSec float64 `csv:"-"`
	WindowEndSec   float64 `csv:"window_end"`

	// Population at window end
	Live    int `csv:"live"`
	Sources int `csv:"sources"` // Mounted sources

	// Events during window
	Spawned   int `csv:"spawned"`
	Expired   int `csv:"expired"`
	Evicted   int `csv:"evicted"`
	Throttled int `csv:"throttled"`
	Rejected  int `csv:"rejected"`
	Dropped   int `csv:"dropped"`
	Cancelled int `csv:"cancelled"`

	SpawnRate  float64 `csv:"spawn_rate"`  // Particles per second
	EvictRatio float64 `csv:"evict_ratio"` // Evicted / spawned

	// Age at retirement of expired particles, seconds
	AgeMean float64 `csv:"age_mean"`
	AgeStd  float64 `csv:"age_std"`
	AgeP10  float64 `csv:"age_p10"`
	AgeP50  float64 `csv:"age_p50"`
	AgeP90  float64 `csv:"age_p90"`

	// Planned lifetime of spawned particles, seconds
	LifetimeMean float64 `csv:"lifetime_mean"`
	LifetimeMax  float64 `csv:"lifetime_max"`
}

// ComputeAgeStats calculates mean, sample standard deviation and
// empirical percentiles of values.
func ComputeAgeStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n == 1 {
		mean = sorted[0]
	} else {
		mean, std = stat.MeanStdDev(sorted, nil)
	}
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("window_start", s.WindowStartSec),
		slog.Float64("window_end", s.WindowEndSec),
		slog.Int("live", s.Live),
		slog.Int("sources", s.Sources),
		slog.Int("spawned", s.Spawned),
		slog.Int("expired", s.Expired),
		slog.Int("evicted", s.Evicted),
		slog.Int("throttled", s.Throttled),
		slog.Int("rejected", s.Rejected),
		slog.Int("dropped", s.Dropped),
		slog.Int("cancelled", s.Cancelled),
		slog.Float64("spawn_rate", s.SpawnRate),
		slog.Float64("evict_ratio", s.EvictRatio),
		slog.Float64("age_mean", s.AgeMean),
		slog.Float64("age_std", s.AgeStd),
		slog.Float64("age_p10", s.AgeP10),
		slog.Float64("age_p50", s.AgeP50),
		slog.Float64("age_p90", s.AgeP90),
		slog.Float64("lifetime_mean", s.LifetimeMean),
		slog.Float64("lifetime_max", s.LifetimeMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndSec,
		"live", s.Live,
		"sources", s.Sources,
		"spawned", s.Spawned,
		"expired", s.Expired,
		"evicted", s.Evicted,
		"throttled", s.Throttled,
		"rejected", s.Rejected,
		"dropped", s.Dropped,
		"cancelled", s.Cancelled,
		"spawn_rate", s.SpawnRate,
		"evict_ratio", s.EvictRatio,
		"age_p50", s.AgeP50,
		"age_p90", s.AgeP90,
	)
}
