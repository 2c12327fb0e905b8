package player

import (
	"sort"

	"github.com/vsariola/organya"
	"github.com/vsariola/organya/synth"
	"github.com/vsariola/organya/wavebank"
)

// Sequencer plays a single track of a song, one stereo frame per call to
// Next. It is either idle or sounding one note; time advances in frames and,
// every SamplesPerRow frames, by one row. At LoopEnd the row wraps back to
// LoopStart, cutting whatever was sounding.
type Sequencer struct {
	song  *organya.Song
	track *organya.Track
	wave  *wavebank.Waveform

	samplesPerRow int
	rowtime       int    // frames played in the current row
	row           uint32 // current row
	next          int    // index of the first note not yet reached

	note   int // index of the sounding note, -1 when idle
	offset int // frames since the onset of the sounding note
	phase  uint64
	step   uint64
	wrap   uint64
	length int // drum length in frames
	voice  synth.Voice
}

// NewSequencer creates a sequencer for the track with the given index. wave
// may be nil for tracks that never make a sound; such a track stays idle.
func NewSequencer(song *organya.Song, track int, wave *wavebank.Waveform) *Sequencer {
	s := &Sequencer{
		song:          song,
		track:         &song.Tracks[track],
		wave:          wave,
		samplesPerRow: song.SamplesPerRow(),
	}
	if wave != nil {
		s.wrap = synth.PhaseWrap(len(wave.Samples))
		s.length = wave.Len()
	}
	s.Reset()
	return s
}

// Reset rewinds the sequencer to the start of the song.
func (s *Sequencer) Reset() {
	s.rowtime = 0
	s.row = 0
	s.next = 0
	s.note = -1
	s.enterRow()
}

// Row returns the current row.
func (s *Sequencer) Row() uint32 { return s.row }

// Sounding reports whether a note is currently playing.
func (s *Sequencer) Sounding() bool { return s.note >= 0 }

// Next returns the next stereo frame of the track and advances time by one
// frame.
func (s *Sequencer) Next() [2]float32 {
	var ret [2]float32
	if s.note >= 0 {
		ret = s.sample()
	}
	s.rowtime++
	if s.rowtime >= s.samplesPerRow {
		s.rowtime = 0
		s.advanceRow()
	}
	return ret
}

// Render fills buffer with the next len(buffer) frames.
func (s *Sequencer) Render(buffer organya.AudioBuffer) {
	for i := range buffer {
		buffer[i] = s.Next()
	}
}

// RenderPlanar fills left and right with the next len(left) frames; right
// must be at least as long as left.
func (s *Sequencer) RenderPlanar(left, right []float32) {
	for i := range left {
		f := s.Next()
		left[i], right[i] = f[0], f[1]
	}
}

func (s *Sequencer) sample() [2]float32 {
	samples := s.wave.Samples
	if s.track.Drum {
		if s.offset >= s.length {
			s.note = -1
			return [2]float32{}
		}
		i := synth.DrumIndex(s.offset, s.wave.Rate)
		s.offset++
		if i >= len(samples) {
			s.note = -1
			return [2]float32{}
		}
		return s.voice.Apply(synth.Sample(samples[i]))
	}
	v := synth.Melodic(samples, s.phase)
	s.offset++
	if s.wrap > 0 {
		s.phase = (s.phase + s.step) % s.wrap
	}
	return s.voice.Apply(v)
}

func (s *Sequencer) advanceRow() {
	s.row++
	if s.song.Loops() && s.row == s.song.LoopEnd {
		s.row = s.song.LoopStart
		s.note = -1
		notes := s.track.Notes
		s.next = sort.Search(len(notes), func(i int) bool { return notes[i].Position >= s.row })
	} else if s.note >= 0 && !s.track.Drum && s.track.Notes[s.note].End() <= uint64(s.row) {
		s.note = -1
	}
	s.enterRow()
}

// enterRow triggers the note starting at the current row, if any. When
// several notes start on the same row, the last one wins.
func (s *Sequencer) enterRow() {
	notes := s.track.Notes
	for s.next < len(notes) && notes[s.next].Position < s.row {
		s.next++
	}
	for s.next < len(notes) && notes[s.next].Position == s.row {
		s.trigger(s.next)
		s.next++
	}
}

func (s *Sequencer) trigger(i int) {
	if s.wave == nil || s.track.Muted() {
		return
	}
	n := s.track.Notes[i]
	if !s.track.Drum {
		step := synth.PhaseStep(synth.Frequency(n.Key, s.track.Pitch), len(s.wave.Samples))
		// a zero length note only cuts the previous one; so does a note
		// detuned down to a frequency of zero or less
		if n.Length == 0 || step == 0 {
			s.note = -1
			return
		}
		s.step = step
	}
	s.note = i
	s.offset = 0
	s.phase = 0
	s.voice = synth.NewVoice(n.Volume, n.Pan)
}
