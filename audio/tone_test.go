package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/pthm-cable/keepsake/components"
	"github.com/pthm-cable/keepsake/config"
)

func TestKeyFrequency(t *testing.T) {
	tests := []struct {
		index int
		want  float64
	}{
		{0, 261.63},
		{9, 440.0},
		{12, 523.25},
		{24, 1046.5},
		{-12, 130.81},
	}
	for _, tt := range tests {
		got := KeyFrequency(261.63, tt.index)
		if math.Abs(got-tt.want) > 0.05 {
			t.Errorf("KeyFrequency(261.63, %d) = %.2f, want %.2f", tt.index, got, tt.want)
		}
	}
}

// drain streams s to completion and returns every sample.
func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 256)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok || n == 0 {
			return out
		}
	}
}

// TestOscillatorLength verifies the oscillator stops after its duration.
func TestOscillatorLength(t *testing.T) {
	rate := beep.SampleRate(44100)
	samples := drain(NewOscillator(440, 100*time.Millisecond, rate))
	if len(samples) != rate.N(100*time.Millisecond) {
		t.Errorf("streamed %d samples, want %d", len(samples), rate.N(100*time.Millisecond))
	}
	for i, s := range samples {
		if s[0] < -1 || s[0] > 1 || s[0] != s[1] {
			t.Fatalf("sample %d = %v out of range or not mono", i, s)
		}
	}
}

// TestDecayEnvelope verifies the tone rises, then fades toward silence.
func TestDecayEnvelope(t *testing.T) {
	rate := beep.SampleRate(8000)
	ones := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{1, 1}
		}
		return len(samples), true
	})
	out := drain(NewDecay(ones, time.Second, 10*time.Millisecond, rate))
	if len(out) != 8000 {
		t.Fatalf("decay streamed %d samples, want 8000", len(out))
	}
	if out[0][0] != 0 {
		t.Errorf("first sample = %v, want 0 (attack start)", out[0][0])
	}
	peak := rate.N(10 * time.Millisecond)
	if math.Abs(out[peak][0]-1) > 0.01 {
		t.Errorf("level after attack = %v, want ~1", out[peak][0])
	}
	if last := out[len(out)-1][0]; last > 0.002 {
		t.Errorf("last sample = %v, want near silence", last)
	}
	for i := peak + 1; i < len(out); i++ {
		if out[i][0] > out[i-1][0] {
			t.Fatalf("envelope rose at sample %d", i)
		}
	}
}

func TestPianoToneBounded(t *testing.T) {
	rate := beep.SampleRate(22050)
	out := drain(NewPianoTone(KeyFrequency(261.63, 4), 300*time.Millisecond, 0.5, rate))
	if len(out) == 0 {
		t.Fatal("piano tone produced no samples")
	}
	for i, s := range out {
		if math.Abs(s[0]) > 0.5+1e-9 {
			t.Fatalf("sample %d = %v exceeds volume", i, s[0])
		}
	}
}

func TestNewDisabledIsNop(t *testing.T) {
	cfg := config.AudioConfig{Enabled: false}
	if _, ok := New(cfg, false, nil).(Nop); !ok {
		t.Error("disabled audio did not return Nop")
	}
	cfg.Enabled = true
	p := New(cfg, true, nil)
	if _, ok := p.(Nop); !ok {
		t.Error("muted audio did not return Nop")
	}
	p.PlayKey(components.Key{Index: 3})
	p.Close()
}
