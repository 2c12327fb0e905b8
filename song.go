package organya

const (
	// SampleRate is the only output rate supported: every timing computation
	// converts milliseconds to samples at this rate.
	SampleRate = 44100

	NumTracks  = 16
	NumMelodic = 8
	NumDrums   = NumTracks - NumMelodic

	HeaderSize     = 18
	InstrumentSize = 6
	TagSize        = 6

	// RepeatSentinel in a note column means "same value as the previous note
	// in this column".
	RepeatSentinel = 0xFF

	// DefaultPitch is the neutral track tuning; the pitch field detunes a
	// melodic track by Pitch-DefaultPitch Hz.
	DefaultPitch = 1000

	// NeutralPan is the centre pan value.
	NeutralPan = 6
)

type (
	// Song is a decoded Organya song: the global properties and 16 tracks, of
	// which the first NumMelodic are melodic and the rest drums. A Song is
	// never modified after parsing, so it can be shared freely between the
	// sequencers playing it.
	Song struct {
		Properties `yaml:",inline"`
		Tracks     [NumTracks]Track
	}

	// Properties are the global song properties stored in the header.
	Properties struct {
		Tag          string // format marker, e.g. "Org-02"
		Click        uint16 // duration of one row, in milliseconds
		StepsPerBar  uint8
		BeatsPerStep uint8
		LoopStart    uint32 // in rows
		LoopEnd      uint32 // in rows
	}

	// Instrument is the per-track instrument descriptor.
	Instrument struct {
		Pitch    uint16 // track tuning, DefaultPitch is neutral
		Index    uint8  // index into the melodic or drum section of the bank
		Pi       bool   // on melodic tracks, mutes the track completely
		NumNotes uint16
	}

	// Track is an instrument descriptor together with its notes, sorted by
	// position and never overlapping.
	Track struct {
		Instrument `yaml:",inline"`
		Drum       bool
		Notes      []Note `yaml:",flow"`
	}

	// Note is a single note event. Position and Length are in rows.
	Note struct {
		Position uint32
		Key      uint8 // semitone; 45 is A4 (440 Hz)
		Length   uint8
		Volume   uint8
		Pan      uint8 // 0..12, NeutralPan is centre
	}
)

// Melodic returns the 8 melodic tracks.
func (s *Song) Melodic() []Track {
	return s.Tracks[:NumMelodic]
}

// Drums returns the 8 drum tracks.
func (s *Song) Drums() []Track {
	return s.Tracks[NumMelodic:]
}

// SamplesPerRow returns the duration of one row in samples at SampleRate. A
// click of 0 is treated as one sample per row so that time always advances.
func (p *Properties) SamplesPerRow() int {
	if n := int(p.Click) * SampleRate / 1000; n > 0 {
		return n
	}
	return 1
}

// Loops reports whether the loop points describe a non-empty loop. Songs
// with LoopEnd <= LoopStart play on past LoopEnd without wrapping; in
// particular when LoopEnd == LoopStart, reaching LoopEnd neither wraps nor
// cuts the sounding notes.
func (p *Properties) Loops() bool {
	return p.LoopEnd > p.LoopStart
}

// LengthInRows returns the number of rows of one pass through the song: up to
// LoopEnd if the song loops, otherwise up to the end of the last note.
func (s *Song) LengthInRows() int {
	if s.Loops() {
		return int(s.LoopEnd)
	}
	ret := 0
	for _, t := range s.Tracks {
		if len(t.Notes) == 0 {
			continue
		}
		last := t.Notes[len(t.Notes)-1]
		ret = max(ret, int(last.Position)+int(last.Length)+1)
	}
	return ret
}

// NumNotes returns the total number of notes over all tracks.
func (s *Song) NumNotes() int {
	ret := 0
	for _, t := range s.Tracks {
		ret += len(t.Notes)
	}
	return ret
}

// Muted reports if the track can never produce sound: pi only mutes melodic
// tracks.
func (t *Track) Muted() bool {
	return t.Pi && !t.Drum
}

// End returns the first row after the note. It is 64 bits wide so that notes
// near the end of the row range do not wrap around.
func (n Note) End() uint64 {
	return uint64(n.Position) + uint64(n.Length)
}
