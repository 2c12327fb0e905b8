package player

import (
	"github.com/viterin/vek/vek32"
	"github.com/vsariola/organya"
)

// Options control how the mixed song is delivered to the output.
type Options struct {
	Volume float32 // master volume applied after mixing
	LeadIn int     // frames of silence before the song starts
}

// DefaultOptions are the output settings of the reference player: the mix
// attenuated to 0.7 and no lead-in.
func DefaultOptions() Options {
	return Options{Volume: 0.7}
}

// Stream is the output boundary of a mixer: it applies the master volume and
// clamps every sample to [-1, 1]. Stream implements organya.AudioSource and
// never ends; a looping song repeats forever.
type Stream struct {
	mixer       *Mixer
	opts        Options
	leadIn      int
	left, right []float32
}

func NewStream(mixer *Mixer, opts Options) *Stream {
	return &Stream{mixer: mixer, opts: opts, leadIn: opts.LeadIn}
}

// ReadAudio fills the whole buffer; it never fails.
func (s *Stream) ReadAudio(buffer organya.AudioBuffer) error {
	if s.leadIn > 0 {
		n := min(s.leadIn, len(buffer))
		buffer[:n].Fill([2]float32{})
		s.leadIn -= n
		buffer = buffer[n:]
	}
	if len(buffer) == 0 {
		return nil
	}
	s.left = grow(s.left, len(buffer))
	s.right = grow(s.right, len(buffer))
	s.mixer.RenderPlanar(s.left, s.right)
	for _, c := range [][]float32{s.left, s.right} {
		vek32.MulNumber_Inplace(c, s.opts.Volume)
		vek32.MinimumNumber_Inplace(c, 1)
		vek32.MaximumNumber_Inplace(c, -1)
	}
	interleave(buffer, s.left, s.right)
	return nil
}

// Rewind restarts the song from the beginning, including the lead-in.
func (s *Stream) Rewind() {
	s.mixer.Reset()
	s.leadIn = s.opts.LeadIn
}
