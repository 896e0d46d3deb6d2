// Package audio plays the piano tones of the music page.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// KeyFrequency returns the equal-tempered frequency of the key index
// semitones above base.
func KeyFrequency(base float64, index int) float64 {
	return base * math.Pow(2, float64(index)/12)
}

// NewOscillator creates a sine partial of the given length. Frequencies at
// or above the Nyquist limit are silent.
func NewOscillator(freq float64, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	n := rate.N(duration)
	sine, err := generators.SineTone(rate, freq)
	if err != nil {
		return beep.Silence(n)
	}
	return beep.Take(n, sine)
}

// decay shapes a stream with a short linear attack and an exponential decay,
// the envelope of a struck string.
type decay struct {
	streamer      beep.Streamer
	position      int
	attackSamples int
	totalSamples  int
	rate          float64 // per-sample multiplier after the attack
	level         float64
}

// NewDecay wraps s so it fades from full volume to about -60dB over duration.
func NewDecay(s beep.Streamer, duration, attack time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	tail := max(total-att, 1)
	return &decay{
		streamer:      s,
		attackSamples: att,
		totalSamples:  total,
		rate:          math.Pow(0.001, 1/float64(tail)),
		level:         1,
	}
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if d.position >= d.totalSamples {
			return i, i > 0
		}
		vol := d.level
		if d.position < d.attackSamples {
			vol = float64(d.position) / float64(d.attackSamples)
		} else {
			d.level *= d.rate
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		d.position++
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

// newVolume scales s linearly; zero or negative volume is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// NewPianoTone builds a soft piano-like note: the fundamental plus two
// quieter harmonics under a struck-string envelope.
func NewPianoTone(freq float64, duration time.Duration, volume float64, rate beep.SampleRate) beep.Streamer {
	attack := 5 * time.Millisecond
	partials := []struct {
		mult, gain float64
	}{
		{1, 0.7},
		{2, 0.2},
		{3, 0.1},
	}
	mix := make([]beep.Streamer, 0, len(partials))
	for _, p := range partials {
		osc := NewOscillator(freq*p.mult, duration, rate)
		mix = append(mix, newVolume(osc, p.gain))
	}
	return newVolume(NewDecay(beep.Mix(mix...), duration, attack, rate), volume)
}
