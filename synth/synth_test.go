package synth_test

import (
	"math"
	"testing"

	"github.com/vsariola/organya"
	"github.com/vsariola/organya/synth"
)

const tolerance = 1e-5

func near(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestGain(t *testing.T) {
	if g := synth.Gain(255); g != 1 {
		t.Fatalf("Gain(255) = %v, expected 1", g)
	}
	if g := synth.Gain(0); !near(float64(g), 0.1) {
		t.Fatalf("Gain(0) = %v, expected 0.1", g)
	}
	prev := synth.Gain(0)
	for v := 1; v < 256; v++ {
		g := synth.Gain(uint8(v))
		if g < prev {
			t.Fatalf("Gain not monotonic at %d: %v < %v", v, g, prev)
		}
		prev = g
	}
}

func TestPan(t *testing.T) {
	tests := []struct {
		pan         uint8
		left, right float64
	}{
		{6, 1, 1},
		{0, 0.05, 1},
		{12, 1, 0.05},
		{3, math.Pow(20, -0.5), 1},
		{18, 1, 1.0 / 400},
	}
	for _, tt := range tests {
		l, r := synth.Pan(tt.pan)
		if !near(float64(l), tt.left) || !near(float64(r), tt.right) {
			t.Errorf("Pan(%d) = (%v, %v), expected (%v, %v)", tt.pan, l, r, tt.left, tt.right)
		}
	}
}

func TestFrequency(t *testing.T) {
	tests := []struct {
		key   uint8
		pitch uint16
		want  float64
	}{
		{45, organya.DefaultPitch, 440},
		{57, organya.DefaultPitch, 880},
		{33, organya.DefaultPitch, 220},
		{45, organya.DefaultPitch + 10, 450},
		{57, organya.DefaultPitch - 80, 800},
	}
	for _, tt := range tests {
		if got := synth.Frequency(tt.key, tt.pitch); !near(got, tt.want) {
			t.Errorf("Frequency(%d, %d) = %v, expected %v", tt.key, tt.pitch, got, tt.want)
		}
	}
}

func TestPhaseStep(t *testing.T) {
	step := synth.PhaseStep(organya.SampleRate, 256)
	if step != 256<<synth.PhaseBits {
		t.Fatalf("PhaseStep at the sample rate should advance a whole cycle per frame, got %v", step)
	}
	if step := synth.PhaseStep(-5, 256); step != 0 {
		t.Fatalf("negative frequency should give zero step, got %v", step)
	}
	step = synth.PhaseStep(440, 256)
	want := 440.0 * 256 * (1 << synth.PhaseBits) / organya.SampleRate
	if math.Abs(float64(step)-want) > 0.5 {
		t.Fatalf("PhaseStep(440, 256) = %v, expected about %v", step, want)
	}
}

func TestMelodic(t *testing.T) {
	wave := []int8{0, 64, -128, 127}
	one := uint64(1) << synth.PhaseBits
	tests := []struct {
		phase uint64
		want  float32
	}{
		{0, 0},
		{one, 0.5},
		{2*one + one/2, -1}, // nearest neighbour, no interpolation
		{5 * one, 0.5},      // wraps
	}
	for _, tt := range tests {
		if got := synth.Melodic(wave, tt.phase); got != tt.want {
			t.Errorf("Melodic(phase %d) = %v, expected %v", tt.phase>>synth.PhaseBits, got, tt.want)
		}
	}
	if got := synth.Melodic(nil, 123); got != 0 {
		t.Errorf("empty waveform should be silent, got %v", got)
	}
}

func TestDrumResampling(t *testing.T) {
	if n := synth.DrumLength(100, 22050); n != 200 {
		t.Fatalf("DrumLength(100, 22050) = %d, expected 200", n)
	}
	if n := synth.DrumLength(100, 0); n != 100 {
		t.Fatalf("DrumLength(100, 0) = %d, expected 100", n)
	}
	for offset, want := range []int{0, 0, 1, 1, 2} {
		if got := synth.DrumIndex(offset, 22050); got != want {
			t.Fatalf("DrumIndex(%d, 22050) = %d, expected %d", offset, got, want)
		}
	}
}

func TestVoice(t *testing.T) {
	v := synth.NewVoice(255, organya.NeutralPan)
	if f := v.Apply(0.5); f != [2]float32{0.5, 0.5} {
		t.Fatalf("unity voice changed the sample: %v", f)
	}
	v = synth.NewVoice(255, 0)
	if f := v.Apply(1); f[1] != 1 || f[0] >= 1 {
		t.Fatalf("pan 0 should attenuate only the left channel: %v", f)
	}
}
