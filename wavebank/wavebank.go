// Package wavebank loads the instrument bank shared by all songs: a section
// of fixed-length melodic waveforms, each one cycle long, followed by a
// section of variable-length one-shot drum samples.
//
// The bank can be loaded eagerly with Load, or opened lazily with Open, in
// which case only an index is built and each waveform is read from the byte
// source the first time it is resolved.
package wavebank

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vsariola/organya"
	"github.com/vsariola/organya/cursor"
	"github.com/vsariola/organya/synth"
)

type (
	// Waveform is raw signed 8-bit PCM of one instrument. Melodic waveforms
	// are one cycle of a periodic wave; drums are one-shot samples recorded
	// at Rate samples per second.
	Waveform struct {
		Samples []int8
		Drum    bool
		Rate    int
	}

	// Bank is the instrument bank. A Bank is not safe for concurrent use: a
	// lazily opened bank seeks its byte source on Resolve.
	Bank struct {
		cycle   int
		rate    int
		melodic []entry
		drums   []entry
		src     io.ReadSeeker
		closer  io.Closer
	}

	entry struct {
		offset int64
		length int
		wave   *Waveform
	}
)

// Len returns the playback length of the waveform in output samples. For
// melodic waveforms this is the cycle length.
func (w *Waveform) Len() int {
	if !w.Drum {
		return len(w.Samples)
	}
	return synth.DrumLength(len(w.Samples), w.Rate)
}

// Load reads the whole bank from r into memory.
func Load(r io.Reader) (*Bank, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &organya.IOError{Op: "read instrument bank", Err: err}
	}
	b, err := parse(cursor.New(data))
	if err != nil {
		return nil, &organya.IOError{Op: "load instrument bank", Err: err}
	}
	return b, nil
}

// LoadFile loads the whole bank at path into memory.
func LoadFile(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &organya.IOError{Op: "open instrument bank", Err: err}
	}
	defer f.Close()
	return Load(f)
}

func parse(r *cursor.Reader) (*Bank, error) {
	count, err := r.U8()
	if err != nil {
		return nil, fmt.Errorf("melodic count: %w", err)
	}
	cycle, err := r.U24BE()
	if err != nil {
		return nil, fmt.Errorf("cycle length: %w", err)
	}
	b := &Bank{cycle: int(cycle)}
	for i := 0; i < int(count); i++ {
		offset := r.Offset()
		data, err := r.Bytes(int(cycle))
		if err != nil {
			return nil, fmt.Errorf("melodic waveform %d: %w", i, err)
		}
		b.melodic = append(b.melodic, entry{
			offset: int64(offset),
			length: len(data),
			wave:   &Waveform{Samples: cursor.SignedSlice(data)},
		})
	}
	drums, err := r.U8()
	if err != nil {
		return nil, fmt.Errorf("drum count: %w", err)
	}
	rate, err := r.U16BE()
	if err != nil {
		return nil, fmt.Errorf("drum sample rate: %w", err)
	}
	b.rate = drumRate(rate)
	for i := 0; i < int(drums); i++ {
		length, err := r.U24BE()
		if err != nil {
			return nil, fmt.Errorf("length of drum %d: %w", i, err)
		}
		offset := r.Offset()
		data, err := r.Bytes(int(length))
		if err != nil {
			return nil, fmt.Errorf("drum %d: %w", i, err)
		}
		b.drums = append(b.drums, entry{
			offset: int64(offset),
			length: len(data),
			wave:   &Waveform{Samples: cursor.SignedSlice(data), Drum: true, Rate: b.rate},
		})
	}
	return b, nil
}

func drumRate(stored uint16) int {
	if stored == 0 {
		return organya.SampleRate
	}
	return int(stored)
}

// Open indexes the bank in src without reading the waveform data. Each
// waveform is read on its first Resolve. The bank takes ownership of src: if
// src is also an io.Closer, it is closed by Close.
func Open(src io.ReadSeeker) (*Bank, error) {
	b := &Bank{src: src}
	if c, ok := src.(io.Closer); ok {
		b.closer = c
	}
	if err := b.index(); err != nil {
		b.Close()
		return nil, &organya.IOError{Op: "index instrument bank", Err: err}
	}
	return b, nil
}

// OpenFile opens the bank at path lazily.
func OpenFile(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &organya.IOError{Op: "open instrument bank", Err: err}
	}
	return Open(f)
}

func (b *Bank) index() error {
	if _, err := b.src.Seek(0, io.SeekStart); err != nil {
		return err
	}
	count, err := cursor.ReadU8(b.src)
	if err != nil {
		return fmt.Errorf("melodic count: %w", err)
	}
	cycle, err := cursor.ReadU24BE(b.src)
	if err != nil {
		return fmt.Errorf("cycle length: %w", err)
	}
	b.cycle = int(cycle)
	offset := int64(4)
	for i := 0; i < int(count); i++ {
		b.melodic = append(b.melodic, entry{offset: offset, length: b.cycle})
		offset += int64(b.cycle)
	}
	if err := b.seek(offset); err != nil {
		return fmt.Errorf("drum section: %w", err)
	}
	drums, err := cursor.ReadU8(b.src)
	if err != nil {
		return fmt.Errorf("drum count: %w", err)
	}
	rate, err := cursor.ReadU16BE(b.src)
	if err != nil {
		return fmt.Errorf("drum sample rate: %w", err)
	}
	b.rate = drumRate(rate)
	offset += 3
	for i := 0; i < int(drums); i++ {
		length, err := cursor.ReadU24BE(b.src)
		if err != nil {
			return fmt.Errorf("length of drum %d: %w", i, err)
		}
		offset += 3
		b.drums = append(b.drums, entry{offset: offset, length: int(length)})
		offset += int64(length)
		if err := b.seek(offset); err != nil {
			return fmt.Errorf("drum %d: %w", i, err)
		}
	}
	return nil
}

// seek moves to offset, failing if the source ends before it.
func (b *Bank) seek(offset int64) error {
	end, err := b.src.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if end < offset {
		return &cursor.Error{Offset: int(end), Need: int(offset - end), Have: 0}
	}
	_, err = b.src.Seek(offset, io.SeekStart)
	return err
}

// Close releases the byte source of a lazily opened bank. Waveforms already
// resolved stay valid.
func (b *Bank) Close() error {
	if b.closer == nil {
		return nil
	}
	err := b.closer.Close()
	b.closer = nil
	b.src = nil
	return err
}

func (b *Bank) NumMelodic() int  { return len(b.melodic) }
func (b *Bank) NumDrums() int    { return len(b.drums) }
func (b *Bank) CycleLength() int { return b.cycle }
func (b *Bank) DrumRate() int    { return b.rate }

// Resolve returns the waveform of the given melodic or drum instrument.
func (b *Bank) Resolve(index int, drum bool) (*Waveform, error) {
	entries := b.melodic
	if drum {
		entries = b.drums
	}
	if index < 0 || index >= len(entries) {
		return nil, &organya.ConfigError{Track: -1, Instrument: index, Drum: drum, Available: len(entries)}
	}
	e := &entries[index]
	if e.wave != nil {
		return e.wave, nil
	}
	if b.src == nil {
		return nil, &organya.IOError{Op: "resolve waveform", Err: errors.New("instrument bank is closed")}
	}
	if _, err := b.src.Seek(e.offset, io.SeekStart); err != nil {
		return nil, &organya.IOError{Op: "seek waveform", Err: err}
	}
	data, err := cursor.ReadFull(b.src, e.length)
	if err != nil {
		return nil, &organya.IOError{Op: fmt.Sprintf("read waveform %d", index), Err: err}
	}
	e.wave = &Waveform{Samples: cursor.SignedSlice(data), Drum: drum}
	if drum {
		e.wave.Rate = b.rate
	}
	return e.wave, nil
}

// Validate checks that every track of the song that can make a sound uses an
// instrument present in the bank.
func (b *Bank) Validate(song *organya.Song) error {
	for i, t := range song.Tracks {
		if len(t.Notes) == 0 || t.Muted() {
			continue
		}
		available := b.NumMelodic()
		if t.Drum {
			available = b.NumDrums()
		}
		if int(t.Index) >= available {
			return &organya.ConfigError{Track: i, Instrument: int(t.Index), Drum: t.Drum, Available: available}
		}
	}
	return nil
}

// Preload resolves the waveforms of every track of the song, so that playing
// it never touches the byte source. The result is indexed by track;
// tracks that cannot make a sound get nil.
func (b *Bank) Preload(song *organya.Song) ([organya.NumTracks]*Waveform, error) {
	var ret [organya.NumTracks]*Waveform
	if err := b.Validate(song); err != nil {
		return ret, err
	}
	for i, t := range song.Tracks {
		if len(t.Notes) == 0 || t.Muted() {
			continue
		}
		w, err := b.Resolve(int(t.Index), t.Drum)
		if err != nil {
			return ret, fmt.Errorf("track %d: %w", i, err)
		}
		ret[i] = w
	}
	return ret, nil
}
