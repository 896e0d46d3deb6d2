// Package config provides configuration loading and access for the effect engine.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/keepsake/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Screen    ScreenConfig          `yaml:"screen"`
	Engine    EngineConfig          `yaml:"engine"`
	Kinds     KindsConfig           `yaml:"kinds"`
	Pages     map[string]PageConfig `yaml:"pages"`
	Ambient   AmbientConfig         `yaml:"ambient"`
	Audio     AudioConfig           `yaml:"audio"`
	Telemetry TelemetryConfig       `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// EngineConfig holds loop and page timing.
type EngineConfig struct {
	TickMS        int    `yaml:"tick_ms"`        // Loop period for expiry checks
	CelebrationMS int    `yaml:"celebration_ms"` // How long MountFor keeps the celebration page
	StartPage     string `yaml:"start_page"`
}

// KindsConfig holds one policy per particle kind. Fields (not a map) so a
// user file can override a single attribute of a single kind.
type KindsConfig struct {
	HeartBurst   KindConfig `yaml:"heart_burst"`
	Petal        KindConfig `yaml:"petal"`
	Sparkle      KindConfig `yaml:"sparkle"`
	RosePetal    KindConfig `yaml:"rose_petal"`
	Firefly      KindConfig `yaml:"firefly"`
	Butterfly    KindConfig `yaml:"butterfly"`
	PianoRipple  KindConfig `yaml:"piano_ripple"`
	FloatingNote KindConfig `yaml:"floating_note"`
	Bubble       KindConfig `yaml:"bubble"`
	Firework     KindConfig `yaml:"firework"`
}

// Get returns the policy for kind, or nil for an unknown kind.
func (k *KindsConfig) Get(kind components.Kind) *KindConfig {
	switch kind {
	case components.KindHeartBurst:
		return &k.HeartBurst
	case components.KindPetal:
		return &k.Petal
	case components.KindSparkle:
		return &k.Sparkle
	case components.KindRosePetal:
		return &k.RosePetal
	case components.KindFirefly:
		return &k.Firefly
	case components.KindButterfly:
		return &k.Butterfly
	case components.KindPianoRipple:
		return &k.PianoRipple
	case components.KindFloatingNote:
		return &k.FloatingNote
	case components.KindBubble:
		return &k.Bubble
	case components.KindFirework:
		return &k.Firework
	}
	return nil
}

// KindConfig holds the attribute ranges of one particle kind.
// Ranges accept a scalar (fixed value) or a [min, max] pair.
type KindConfig struct {
	Count       int     `yaml:"count"`
	Space       string  `yaml:"space"`     // percent | pixel
	Placement   string  `yaml:"placement"` // pointer | scatter
	ScatterX    Range   `yaml:"scatter_x"`
	ScatterY    Range   `yaml:"scatter_y"`
	EvenSpread  bool    `yaml:"even_spread"`
	AngleJitter float64 `yaml:"angle_jitter"` // Degrees either side of the even spread angle
	Distance    Range   `yaml:"distance"`
	OffsetX     Range   `yaml:"offset_x"`
	DriftX      Range   `yaml:"drift_x"`
	DriftY      Range   `yaml:"drift_y"`
	Rise        Range   `yaml:"rise"`
	Rotation    Range   `yaml:"rotation"`
	Size        Range   `yaml:"size"`
	Hue         Range   `yaml:"hue"`
	Lightness   Range   `yaml:"lightness"`
	DelayMS     Range   `yaml:"delay_ms"`
	DurationMS  Range   `yaml:"duration_ms"`
	Glyphs      string  `yaml:"glyphs"`
}

// PageConfig lists the effect sources and decorations of one page.
type PageConfig struct {
	Sources []SourceConfig `yaml:"sources"`
	Flowers int            `yaml:"flowers"` // Pearl flower decorations
}

// SourceConfig binds an interaction stream to a particle kind.
type SourceConfig struct {
	ID            string                     `yaml:"id"`
	Trigger       components.InteractionType `yaml:"trigger"`
	Kind          components.Kind            `yaml:"kind"`
	Capacity      int                        `yaml:"capacity"`
	MinIntervalMS int                        `yaml:"min_interval_ms"` // Throttle for move trails
	IntervalMS    int                        `yaml:"interval_ms"`     // Ambient spawn period for tick sources
	Surface       SurfaceConfig              `yaml:"surface"`
}

// SurfaceConfig is a source's interaction area as fractions of the screen.
// A zero width or height means the full screen.
type SurfaceConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// AmbientConfig holds pearl flower decoration parameters.
type AmbientConfig struct {
	X           Range   `yaml:"x"`
	Y           Range   `yaml:"y"`
	Size        Range   `yaml:"size"`
	DelayS      Range   `yaml:"delay_s"`
	PetalCounts []int   `yaml:"petal_counts"`
	PetalBase   float64 `yaml:"petal_base"`   // Petal length as a fraction of size
	PetalJitter float64 `yaml:"petal_jitter"` // Extra random length as a fraction of size
}

// AudioConfig holds piano tone parameters.
type AudioConfig struct {
	Enabled       bool    `yaml:"enabled"`
	SampleRate    int     `yaml:"sample_rate"`
	BufferMS      int     `yaml:"buffer_ms"`
	ToneMS        int     `yaml:"tone_ms"`
	Volume        float64 `yaml:"volume"`         // 0..1
	BaseFrequency float64 `yaml:"base_frequency"` // Hz of key index 0 (C4)
}

// TelemetryConfig holds telemetry settings.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds per aggregated window
	EventLog    bool    `yaml:"event_log"`    // Write per-particle lifecycle rows
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TickInterval        time.Duration
	CelebrationDuration time.Duration
	StatsWindow         time.Duration
	PageNames           []string // Sorted for stable iteration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Set replaces the global configuration, e.g. after a reload.
func Set(cfg *Config) {
	global = cfg
}

// Defaults returns the embedded default configuration.
func Defaults() (*Config, error) {
	return Load("")
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse merges YAML data over the embedded defaults, validates the result
// and computes derived values. Unknown keys are an error.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if len(bytes.TrimSpace(data)) > 0 {
		defaultPages := maps.Clone(cfg.Pages)
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// Decoding into the same struct only overwrites fields present in the file.
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}

		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if err := requireSourceKeys(&doc); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		if err := mergePages(cfg, defaultPages, &doc); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// mergePages re-applies each page of the user file over its default. yaml.v3
// decodes a map value into a fresh struct, so without this a page override
// naming only flowers would drop the page's sources.
func mergePages(cfg *Config, defaults map[string]PageConfig, doc *yaml.Node) error {
	pages := mappingValue(doc, "pages")
	if pages == nil || pages.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(pages.Content); i += 2 {
		name := pages.Content[i].Value
		base, ok := defaults[name]
		if !ok {
			continue
		}
		page := PageConfig{Sources: slices.Clone(base.Sources), Flowers: base.Flowers}
		if err := pages.Content[i+1].Decode(&page); err != nil {
			return fmt.Errorf("pages.%s: %w", name, err)
		}
		cfg.Pages[name] = page
	}
	return nil
}

// requireSourceKeys reports source entries without a kind or trigger. Both
// types have a usable zero value, so a missing key is invisible after decoding.
func requireSourceKeys(doc *yaml.Node) error {
	pages := mappingValue(doc, "pages")
	if pages == nil || pages.Kind != yaml.MappingNode {
		return nil
	}
	var errs []error
	for i := 0; i+1 < len(pages.Content); i += 2 {
		sources := mappingValue(pages.Content[i+1], "sources")
		if sources == nil || sources.Kind != yaml.SequenceNode {
			continue
		}
		for j, entry := range sources.Content {
			for _, key := range []string{"trigger", "kind"} {
				if v := mappingValue(entry, key); v == nil || v.ShortTag() == "!!null" {
					errs = append(errs, fmt.Errorf("pages.%s.sources[%d]: missing %s", pages.Content[i].Value, j, key))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// mappingValue returns the value stored under key in a mapping node, or nil.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n != nil && n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// Validate checks kinds, pages and timing for values the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Engine.TickMS <= 0 {
		errs = append(errs, fmt.Errorf("engine.tick_ms must be positive, got %d", c.Engine.TickMS))
	}
	if c.Engine.CelebrationMS < 0 {
		errs = append(errs, fmt.Errorf("engine.celebration_ms must not be negative"))
	}

	for _, kind := range components.AllKinds() {
		if err := c.Kinds.Get(kind).validate(); err != nil {
			errs = append(errs, fmt.Errorf("kinds.%s: %w", kind, err))
		}
	}

	ids := make(map[string]string)
	for name, page := range c.Pages {
		for i, src := range page.Sources {
			where := fmt.Sprintf("pages.%s.sources[%d]", name, i)
			if src.ID == "" {
				errs = append(errs, fmt.Errorf("%s: missing id", where))
			} else if other, dup := ids[src.ID]; dup {
				errs = append(errs, fmt.Errorf("%s: id %q already used on page %s", where, src.ID, other))
			} else {
				ids[src.ID] = name
			}
			if src.Capacity <= 0 {
				errs = append(errs, fmt.Errorf("%s: capacity must be positive, got %d", where, src.Capacity))
			}
			if src.MinIntervalMS < 0 || src.IntervalMS < 0 {
				errs = append(errs, fmt.Errorf("%s: intervals must not be negative", where))
			}
			if src.Trigger == components.InteractionTick && src.IntervalMS == 0 {
				errs = append(errs, fmt.Errorf("%s: tick source needs interval_ms", where))
			}
		}
		if page.Flowers < 0 {
			errs = append(errs, fmt.Errorf("pages.%s.flowers must not be negative", name))
		}
	}
	if c.Engine.StartPage != "" {
		if _, ok := c.Pages[c.Engine.StartPage]; !ok {
			errs = append(errs, fmt.Errorf("engine.start_page %q is not a page", c.Engine.StartPage))
		}
	}

	for _, n := range c.Ambient.PetalCounts {
		if n < 1 || n > components.MaxPetals {
			errs = append(errs, fmt.Errorf("ambient.petal_counts: %d outside [1, %d]", n, components.MaxPetals))
		}
	}
	return errors.Join(errs...)
}

func (k *KindConfig) validate() error {
	var errs []error
	if k.Count <= 0 {
		errs = append(errs, fmt.Errorf("count must be positive, got %d", k.Count))
	}
	switch k.Space {
	case "", "percent", "pixel":
	default:
		errs = append(errs, fmt.Errorf("unknown space %q", k.Space))
	}
	switch k.Placement {
	case "", "pointer", "scatter":
	default:
		errs = append(errs, fmt.Errorf("unknown placement %q", k.Placement))
	}
	ranges := []struct {
		name string
		r    Range
	}{
		{"scatter_x", k.ScatterX}, {"scatter_y", k.ScatterY},
		{"distance", k.Distance}, {"offset_x", k.OffsetX},
		{"drift_x", k.DriftX}, {"drift_y", k.DriftY},
		{"rise", k.Rise}, {"rotation", k.Rotation},
		{"size", k.Size}, {"hue", k.Hue}, {"lightness", k.Lightness},
		{"delay_ms", k.DelayMS}, {"duration_ms", k.DurationMS},
	}
	for _, r := range ranges {
		if r.r.Min > r.r.Max {
			errs = append(errs, fmt.Errorf("%s: min %v greater than max %v", r.name, r.r.Min, r.r.Max))
		}
	}
	if k.DurationMS.Min <= 0 {
		errs = append(errs, fmt.Errorf("duration_ms must be positive"))
	}
	if k.DelayMS.Min < 0 {
		errs = append(errs, fmt.Errorf("delay_ms must not be negative"))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.TickInterval = time.Duration(c.Engine.TickMS) * time.Millisecond
	c.Derived.CelebrationDuration = time.Duration(c.Engine.CelebrationMS) * time.Millisecond
	c.Derived.StatsWindow = time.Duration(c.Telemetry.StatsWindow * float64(time.Second))

	c.Derived.PageNames = make([]string, 0, len(c.Pages))
	for name := range c.Pages {
		c.Derived.PageNames = append(c.Derived.PageNames, name)
	}
	slices.Sort(c.Derived.PageNames)
}

// Surface converts a fractional surface to screen pixels.
func (c *Config) Surface(s SurfaceConfig) components.Surface {
	w, h := float64(c.Screen.Width), float64(c.Screen.Height)
	if s.W <= 0 || s.H <= 0 {
		return components.Surface{W: w, H: h}
	}
	return components.Surface{X: s.X * w, Y: s.Y * h, W: s.W * w, H: s.H * h}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
