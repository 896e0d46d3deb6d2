package engine

import (
	"time"

	"github.com/pthm-cable/keepsake/components"
	"github.com/pthm-cable/keepsake/config"
	"github.com/pthm-cable/keepsake/systems"
)

// KindTable builds the factory policy table from the kinds section.
func KindTable(cfg *config.Config) systems.KindTable {
	table := make(systems.KindTable, len(components.AllKinds()))
	for _, kind := range components.AllKinds() {
		table[kind] = KindPolicy(kind, cfg.Kinds.Get(kind))
	}
	return table
}

// KindPolicy converts one kind's configuration into a factory policy.
func KindPolicy(kind components.Kind, k *config.KindConfig) systems.KindPolicy {
	p := systems.KindPolicy{
		Kind:        kind,
		Count:       k.Count,
		EvenSpread:  k.EvenSpread,
		AngleJitter: k.AngleJitter,
		ScatterX:    sysRange(k.ScatterX),
		ScatterY:    sysRange(k.ScatterY),
		Distance:    sysRange(k.Distance),
		OffsetX:     sysRange(k.OffsetX),
		DriftX:      sysRange(k.DriftX),
		DriftY:      sysRange(k.DriftY),
		Rise:        sysRange(k.Rise),
		Rotation:    sysRange(k.Rotation),
		Size:        sysRange(k.Size),
		Hue:         sysRange(k.Hue),
		Lightness:   sysRange(k.Lightness),
		Delay:       sysRange(k.DelayMS),
		Duration:    sysRange(k.DurationMS),
	}
	if k.Space == "pixel" {
		p.Space = components.SpacePixel
	}
	if k.Placement == "scatter" {
		p.Placement = systems.PlaceScatter
	}
	if k.Glyphs != "" {
		p.Glyphs = []rune(k.Glyphs)
	}
	return p
}

// FlowerPolicy builds the pearl flower policy from the ambient section.
func FlowerPolicy(a config.AmbientConfig) systems.FlowerPolicy {
	return systems.FlowerPolicy{
		X:           sysRange(a.X),
		Y:           sysRange(a.Y),
		Size:        sysRange(a.Size),
		Delay:       sysRange(a.DelayS),
		PetalCounts: append([]int(nil), a.PetalCounts...),
		PetalBase:   a.PetalBase,
		PetalJitter: a.PetalJitter,
	}
}

// SourceConfigs builds the source configurations of one page.
func SourceConfigs(cfg *config.Config, page string) []systems.SourceConfig {
	pc := cfg.Pages[page]
	out := make([]systems.SourceConfig, 0, len(pc.Sources))
	for _, s := range pc.Sources {
		out = append(out, systems.SourceConfig{
			ID:          components.SourceID(s.ID),
			Trigger:     s.Trigger,
			Kind:        s.Kind,
			Capacity:    s.Capacity,
			MinInterval: time.Duration(s.MinIntervalMS) * time.Millisecond,
			Interval:    time.Duration(s.IntervalMS) * time.Millisecond,
			Surface:     cfg.Surface(s.Surface),
		})
	}
	return out
}

func sysRange(r config.Range) systems.Range {
	return systems.Range{Min: r.Min, Max: r.Max}
}
