package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/keepsake/components"
	"github.com/pthm-cable/keepsake/config"
)

// Player sounds piano keys.
type Player interface {
	PlayKey(key components.Key)
	Close()
}

// Nop is a silent player, used when audio is disabled or unavailable.
type Nop struct{}

func (Nop) PlayKey(components.Key) {}
func (Nop) Close()                 {}

// SpeakerPlayer mixes piano tones into the system speaker.
type SpeakerPlayer struct {
	mu          sync.Mutex
	cfg         config.AudioConfig
	rate        beep.SampleRate
	mixer       *beep.Mixer
	initialized bool
}

// NewSpeakerPlayer initializes the speaker. It fails when no audio device
// is available.
func NewSpeakerPlayer(cfg config.AudioConfig) (*SpeakerPlayer, error) {
	rate := beep.SampleRate(cfg.SampleRate)
	buffer := time.Duration(cfg.BufferMS) * time.Millisecond
	if err := speaker.Init(rate, rate.N(buffer)); err != nil {
		return nil, fmt.Errorf("initializing speaker: %w", err)
	}
	p := &SpeakerPlayer{
		cfg:         cfg,
		rate:        rate,
		mixer:       &beep.Mixer{},
		initialized: true,
	}
	speaker.Play(p.mixer)
	return p, nil
}

// PlayKey starts the tone for key without waiting for it to finish.
func (p *SpeakerPlayer) PlayKey(key components.Key) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	tone := NewPianoTone(
		KeyFrequency(p.cfg.BaseFrequency, key.Index),
		time.Duration(p.cfg.ToneMS)*time.Millisecond,
		p.cfg.Volume,
		p.rate,
	)
	speaker.Lock()
	p.mixer.Add(tone)
	speaker.Unlock()
}

// Close silences all playing tones.
func (p *SpeakerPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}

// New returns a speaker player, or Nop when audio is disabled, muted or the
// device cannot be opened. Audio failure is never fatal.
func New(cfg config.AudioConfig, mute bool, logger *slog.Logger) Player {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled || mute {
		return Nop{}
	}
	p, err := NewSpeakerPlayer(cfg)
	if err != nil {
		logger.Warn("audio unavailable, continuing silently", "error", err)
		return Nop{}
	}
	logger.Info("audio initialized", "sample_rate", cfg.SampleRate)
	return p
}
