package player

import (
	"github.com/viterin/vek/vek32"
	"github.com/vsariola/organya"
)

// Mixer sums the output of a fixed set of sequencers that share the same
// clock. It does not normalize or clamp: the sum of many loud tracks can go
// outside [-1, 1].
type Mixer struct {
	seqs        []*Sequencer
	left, right []float32 // scratch for one sequencer
	mixL, mixR  []float32
}

func NewMixer(seqs ...*Sequencer) *Mixer {
	return &Mixer{seqs: seqs}
}

// Sequencers returns the sequencers being mixed.
func (m *Mixer) Sequencers() []*Sequencer { return m.seqs }

// Next pulls one frame from every sequencer and returns their sum.
func (m *Mixer) Next() [2]float32 {
	var ret [2]float32
	for _, s := range m.seqs {
		f := s.Next()
		ret[0] += f[0]
		ret[1] += f[1]
	}
	return ret
}

// RenderPlanar fills left and right with the next len(left) mixed frames.
func (m *Mixer) RenderPlanar(left, right []float32) {
	n := len(left)
	right = right[:n]
	m.left = grow(m.left, n)
	m.right = grow(m.right, n)
	clear(left)
	clear(right)
	for _, s := range m.seqs {
		s.RenderPlanar(m.left, m.right)
		vek32.Add_Inplace(left, m.left)
		vek32.Add_Inplace(right, m.right)
	}
}

// Render fills buffer with the next len(buffer) mixed frames.
func (m *Mixer) Render(buffer organya.AudioBuffer) {
	m.mixL = grow(m.mixL, len(buffer))
	m.mixR = grow(m.mixR, len(buffer))
	m.RenderPlanar(m.mixL, m.mixR)
	interleave(buffer, m.mixL, m.mixR)
}

// Reset rewinds every sequencer to the start of the song.
func (m *Mixer) Reset() {
	for _, s := range m.seqs {
		s.Reset()
	}
}

// grow returns a slice of length n, reusing the capacity of buf if possible.
func grow(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}

func interleave(dst organya.AudioBuffer, left, right []float32) {
	for i := range dst {
		dst[i] = [2]float32{left[i], right[i]}
	}
}
