package organya

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/vsariola/organya/cursor"
)

// Parse decodes an Organya song. The whole file is decoded in one linear
// pass; on failure a *FormatError is returned telling which field could not
// be read. Loop points are kept as stored: a song with LoopEnd <= LoopStart
// is accepted and plays on past LoopEnd without looping (see Loops).
func Parse(data []byte) (*Song, error) {
	r := cursor.New(data)
	song := &Song{}
	if err := parseProperties(r, &song.Properties); err != nil {
		return nil, err
	}
	for i := range song.Tracks {
		instr, err := parseInstrument(r, i)
		if err != nil {
			return nil, err
		}
		song.Tracks[i] = Track{Instrument: instr, Drum: i >= NumMelodic}
	}
	for i := range song.Tracks {
		notes, err := parseNotes(r, i, int(song.Tracks[i].NumNotes))
		if err != nil {
			return nil, err
		}
		song.Tracks[i].Notes = FixOverlaps(notes)
	}
	return song, nil
}

// ReadSong reads everything from r and parses it.
func ReadSong(r io.Reader) (*Song, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &IOError{Op: "read song", Err: err}
	}
	return Parse(data)
}

// ParseFile reads and parses the song file at path.
func ParseFile(path string) (*Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read song", Err: err}
	}
	song, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return song, nil
}

func formatError(r *cursor.Reader, field string, err error) error {
	offset := r.Offset()
	var ce *cursor.Error
	if errors.As(err, &ce) {
		offset = ce.Offset
	}
	return &FormatError{Offset: offset, Field: field, Err: err}
}

func parseProperties(r *cursor.Reader, p *Properties) error {
	if r.Remaining() < HeaderSize {
		return &FormatError{Field: "header", Err: &cursor.Error{Need: HeaderSize, Have: r.Remaining()}}
	}
	tag, _ := r.Bytes(TagSize)
	if !validTag(tag) {
		return &FormatError{Field: "format tag", Err: fmt.Errorf("%w: %q", ErrInvalidTag, tag)}
	}
	p.Tag = string(tag)
	// the header was length checked above, so the rest cannot fail
	p.Click, _ = r.U16LE()
	p.StepsPerBar, _ = r.U8()
	p.BeatsPerStep, _ = r.U8()
	p.LoopStart, _ = r.U32LE()
	p.LoopEnd, _ = r.U32LE()
	return nil
}

func validTag(tag []byte) bool {
	if !utf8.Valid(tag) {
		return false
	}
	for _, c := range string(tag) {
		if unicode.IsControl(c) {
			return false
		}
	}
	return true
}

func parseInstrument(r *cursor.Reader, track int) (Instrument, error) {
	b, err := r.Bytes(InstrumentSize)
	if err != nil {
		return Instrument{}, formatError(r, fmt.Sprintf("instrument of track %d", track), err)
	}
	// the descriptor is read as a whole so that a short one is reported at
	// its start; decoding the fields from it cannot fail
	d := cursor.New(b)
	var instr Instrument
	instr.Pitch, _ = d.U16LE()
	instr.Index, _ = d.U8()
	pi, _ := d.U8()
	instr.Pi = pi != 0
	instr.NumNotes, _ = d.U16LE()
	return instr, nil
}

// parseNotes decodes one column-major note block of n notes.
func parseNotes(r *cursor.Reader, track int, n int) ([]Note, error) {
	notes := make([]Note, n)
	for i := range notes {
		pos, err := r.U32LE()
		if err != nil {
			return nil, formatError(r, fmt.Sprintf("position of note %d on track %d", i, track), err)
		}
		notes[i].Position = pos
	}
	columns := []struct {
		name string
		set  func(*Note, uint8)
	}{
		{"keys", func(n *Note, v uint8) { n.Key = v }},
		{"lengths", func(n *Note, v uint8) { n.Length = v }},
		{"volumes", func(n *Note, v uint8) { n.Volume = v }},
		{"pans", func(n *Note, v uint8) { n.Pan = v }},
	}
	for _, c := range columns {
		raw, err := r.Bytes(n)
		if err != nil {
			return nil, formatError(r, fmt.Sprintf("%s of track %d", c.name, track), err)
		}
		for i, v := range DecodeColumn(raw) {
			c.set(&notes[i], v)
		}
	}
	return notes, nil
}

// DecodeColumn expands RepeatSentinel bytes in a note column to the previous
// value of the column; a leading sentinel decodes to 0.
func DecodeColumn(raw []byte) []uint8 {
	ret := make([]uint8, len(raw))
	var prev uint8
	for i, v := range raw {
		if v != RepeatSentinel {
			prev = v
		}
		ret[i] = prev
	}
	return ret
}

// FixOverlaps returns a copy of notes, sorted by position, where no note
// extends past the start of the next one. When note i starts before note i-1
// has ended, note i-1 is shortened to end exactly at note i, and note i takes
// over the remaining part of the earlier note's length.
func FixOverlaps(notes []Note) []Note {
	ret := make([]Note, len(notes))
	copy(ret, notes)
	slices.SortStableFunc(ret, func(a, b Note) int { return cmp.Compare(a.Position, b.Position) })
	for i := 1; i < len(ret); i++ {
		prev := &ret[i-1]
		if pos := uint64(ret[i].Position); pos < prev.End() {
			ret[i].Length = uint8(prev.End() - pos)
			prev.Length = uint8(ret[i].Position - prev.Position)
		}
	}
	return ret
}
