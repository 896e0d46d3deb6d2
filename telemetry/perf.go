package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase names for one engine update.
const (
	PhaseInput     = "input"     // Routing interactions to sources
	PhaseExpire    = "expire"    // Firing due expiry timers
	PhaseRender    = "render"    // Projecting and drawing particles
	PhaseTelemetry = "telemetry" // Stats flush and CSV output
)

var phases = []string{PhaseInput, PhaseExpire, PhaseRender, PhaseTelemetry}

// update is the timing of one engine update.
type update struct {
	total  time.Duration
	phases map[string]time.Duration
}

// PerfCollector times engine updates and their phases over the most recent
// windowSize updates. It is used from the loop goroutine only.
type PerfCollector struct {
	window []update
	next   int
	filled bool

	current    update
	started    time.Time
	phase      string
	phaseStart time.Time

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize updates
// (60 is one second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		window:  make([]update, windowSize),
		current: update{phases: make(map[string]time.Duration)},
	}
}

// StartTick begins timing an update.
func (p *PerfCollector) StartTick() {
	p.started = time.Now()
	p.current = update{phases: make(map[string]time.Duration, len(phases))}
	p.phase = ""
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.phase, p.phaseStart = phase, now
}

// EndTick closes the update and stores it in the window, replacing the oldest.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.current.total = now.Sub(p.started)

	p.window[p.next] = p.current
	p.next = (p.next + 1) % len(p.window)
	if p.next == 0 {
		p.filled = true
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.phase = ""
}

// RecordFrame marks a presented frame; the gap to the previous one gives FPS.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

func (p *PerfCollector) recorded() []update {
	if p.filled {
		return p.window
	}
	return p.window[:p.next]
}

// PerfStats is the update timing averaged over the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	PhaseAvg        map[string]time.Duration
	PhasePct        map[string]float64 // Share of the average update
	TicksPerSecond  float64
	FPS             float64 // Zero until two frames have been recorded
}

// Stats averages the recorded updates. A phase missing from an update
// counts as zero for it.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}
	if p.frame > 0 {
		stats.FPS = float64(time.Second) / float64(p.frame)
	}

	updates := p.recorded()
	if len(updates) == 0 {
		return stats
	}
	totals := make([]float64, len(updates))
	byPhase := make(map[string][]float64)
	for i, u := range updates {
		totals[i] = float64(u.total)
		for name, d := range u.phases {
			if byPhase[name] == nil {
				byPhase[name] = make([]float64, len(updates))
			}
			byPhase[name][i] = float64(d)
		}
	}

	mean := stat.Mean(totals, nil)
	stats.AvgTickDuration = time.Duration(mean)
	if mean > 0 {
		stats.TicksPerSecond = float64(time.Second) / mean
	}
	for name, xs := range byPhase {
		avg := stat.Mean(xs, nil)
		stats.PhaseAvg[name] = time.Duration(avg)
		if mean > 0 {
			stats.PhasePct[name] = avg / mean * 100
		}
	}
	return stats
}

// LogStats logs the averages with the known phases in a fixed order.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range phases {
		if pct := s.PhasePct[phase]; pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	Session      string  `csv:"session"`
	WindowEnd    float64 `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	InputPct     float64 `csv:"input_pct"`
	ExpirePct    float64 `csv:"expire_pct"`
	RenderPct    float64 `csv:"render_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd seconds.
func (s PerfStats) ToCSV(windowEnd float64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		InputPct:     s.PhasePct[PhaseInput],
		ExpirePct:    s.PhasePct[PhaseExpire],
		RenderPct:    s.PhasePct[PhaseRender],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
