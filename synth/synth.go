// Package synth contains the pure functions that turn note fields into audio:
// volume and pan curves, pitch to phase increment, and waveform lookup. None
// of the functions keep state.
package synth

import (
	"math"

	"github.com/vsariola/organya"
)

// PhaseBits is the number of fractional bits in a phase or phase step.
const PhaseBits = 16

// Gain maps a note volume to a linear gain: 255 is unity (0 dB) and 0 is
// -20 dB, exponential in between.
func Gain(volume uint8) float32 {
	return float32(math.Pow(10, float64(volume)/255-1))
}

// Pan maps a note pan to left and right channel gains. NeutralPan is unity
// on both channels; moving away from it attenuates one channel by up to
// -26 dB at 0 and 12. Values above 12 extrapolate the same curve.
func Pan(pan uint8) (left, right float32) {
	p := float64(pan) / organya.NeutralPan
	left, right = 1, 1
	if p < 1 {
		left = float32(math.Pow(20, p-1))
	}
	if p > 1 {
		right = float32(math.Pow(20, 1-p))
	}
	return
}

// Frequency returns the frequency in Hz of a key played on a track with the
// given pitch. Key 45 is A4 at 440 Hz; the pitch detunes linearly after the
// exponential key curve.
func Frequency(key uint8, pitch uint16) float64 {
	return 440*math.Exp2((float64(key)-45)/12) + float64(int(pitch)-organya.DefaultPitch)
}

// PhaseStep returns how much the phase of a waveform with cycleLen samples
// advances per output sample when played at freq, in fixed point with
// PhaseBits fractional bits. Negative frequencies give a zero step.
func PhaseStep(freq float64, cycleLen int) uint64 {
	step := freq * float64(cycleLen) * (1 << PhaseBits) / organya.SampleRate
	if step <= 0 {
		return 0
	}
	return uint64(math.Round(step))
}

// PhaseWrap is the phase value at which the phase of a waveform with cycleLen
// samples wraps back to zero.
func PhaseWrap(cycleLen int) uint64 {
	return uint64(cycleLen) << PhaseBits
}

// Melodic looks up a periodic waveform at the given phase, with nearest
// neighbour resampling.
func Melodic(wave []int8, phase uint64) float32 {
	if len(wave) == 0 {
		return 0
	}
	return Sample(wave[(phase>>PhaseBits)%uint64(len(wave))])
}

// DrumLength returns how many output samples a one-shot sample of n samples
// recorded at rate lasts when played at organya.SampleRate.
func DrumLength(n, rate int) int {
	if rate <= 0 {
		rate = organya.SampleRate
	}
	return n * organya.SampleRate / rate
}

// DrumIndex returns the index into a one-shot sample recorded at rate for
// the given output sample offset.
func DrumIndex(offset, rate int) int {
	if rate <= 0 {
		rate = organya.SampleRate
	}
	return offset * rate / organya.SampleRate
}

// Sample scales a signed 8-bit sample to [-1, 1).
func Sample(s int8) float32 {
	return float32(s) / 128
}

// Voice is the precomputed per-note amplitude: gain times pan for each
// channel.
type Voice [2]float32

// NewVoice computes the channel amplitudes for a note volume and pan.
func NewVoice(volume, pan uint8) Voice {
	g := Gain(volume)
	l, r := Pan(pan)
	return Voice{g * l, g * r}
}

// Apply scales a mono sample to a stereo frame.
func (v Voice) Apply(s float32) [2]float32 {
	return [2]float32{s * v[0], s * v[1]}
}
