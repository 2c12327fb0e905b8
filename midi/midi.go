// Package midi converts a decoded song to a Standard MIDI File, one row per
// tick. Melodic tracks go to channels 1-8 and drums to the General MIDI
// percussion channel.
package midi

import (
	"fmt"
	"io"
	"math"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/vsariola/organya"
)

const (
	// DrumChannel is the General MIDI percussion channel (channel 10).
	DrumChannel = 9
	// KeyOffset converts an organya key to a MIDI key: key 45 is A4 (69).
	KeyOffset = 24
	// Program is the General MIDI program used for all melodic tracks
	// (Lead 1, square).
	Program        = 80
	panController  = 10
	defaultRowBeat = 4
)

// drumKeys maps the drum instruments of the standard bank to General MIDI
// percussion keys.
var drumKeys = []uint8{36, 36, 38, 38, 45, 42, 46, 49, 56, 56, 35, 41}

// DrumKey returns the percussion key used for a drum instrument.
func DrumKey(instrument uint8) uint8 {
	if int(instrument) < len(drumKeys) {
		return drumKeys[instrument]
	}
	return drumKeys[0]
}

// Key converts an organya key to a MIDI key, clamped to 0..127.
func Key(key uint8) uint8 {
	return uint8(min(int(key)+KeyOffset, 127))
}

// Velocity converts a note volume to a MIDI velocity in 1..127.
func Velocity(volume uint8) uint8 {
	return uint8(max(int(volume)/2, 1))
}

// PanValue converts a note pan (0..12) to a MIDI pan controller value.
func PanValue(pan uint8) uint8 {
	return uint8(min(int(pan)*127/12, 127))
}

// RowsPerBeat returns how many rows make one quarter note.
func RowsPerBeat(song *organya.Song) int {
	if song.BeatsPerStep > 0 {
		return int(song.BeatsPerStep)
	}
	return defaultRowBeat
}

// BPM returns the tempo of the song in quarter notes per minute.
func BPM(song *organya.Song) float64 {
	click := max(int(song.Click), 1)
	return 60000 / float64(click*RowsPerBeat(song))
}

// Encode converts the song to an in-memory SMF. When the song loops, only the
// first pass up to the loop end is included and markers are placed at the
// loop points.
func Encode(song *organya.Song) (*smf.SMF, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(uint16(RowsPerBeat(song)))
	var tempo smf.Track
	tempo.Add(0, smf.MetaTrackSequenceName(song.Tag))
	tempo.Add(0, smf.MetaTempo(BPM(song)))
	if song.Loops() {
		tempo.Add(song.LoopStart, smf.MetaMarker("loopStart"))
		tempo.Add(song.LoopEnd-song.LoopStart, smf.MetaMarker("loopEnd"))
	}
	tempo.Close(0)
	if err := s.Add(tempo); err != nil {
		return nil, fmt.Errorf("could not add tempo track: %w", err)
	}
	for i := range song.Tracks {
		t := &song.Tracks[i]
		if len(t.Notes) == 0 || t.Muted() {
			continue
		}
		if err := s.Add(encodeTrack(song, i)); err != nil {
			return nil, fmt.Errorf("could not add track %d: %w", i, err)
		}
	}
	return s, nil
}

func encodeTrack(song *organya.Song, index int) smf.Track {
	t := &song.Tracks[index]
	var tr smf.Track
	channel := uint8(index)
	name := fmt.Sprintf("melodic %d", index)
	if t.Drum {
		channel = DrumChannel
		name = fmt.Sprintf("drum %d", index-organya.NumMelodic)
	}
	tr.Add(0, smf.MetaTrackSequenceName(name))
	if !t.Drum {
		tr.Add(0, midi.ProgramChange(channel, Program))
	}
	var now uint32
	pan := -1
	for _, n := range t.Notes {
		if song.Loops() && n.Position >= song.LoopEnd {
			break
		}
		if n.Length == 0 {
			continue
		}
		end := uint32(min(n.End(), math.MaxUint32))
		if song.Loops() {
			end = min(end, song.LoopEnd)
		}
		key := Key(n.Key)
		if t.Drum {
			key = DrumKey(t.Index)
		}
		if int(n.Pan) != pan {
			tr.Add(n.Position-now, midi.ControlChange(channel, panController, PanValue(n.Pan)))
			now = n.Position
			pan = int(n.Pan)
		}
		tr.Add(n.Position-now, midi.NoteOn(channel, key, Velocity(n.Volume)))
		tr.Add(end-n.Position, midi.NoteOff(channel, key))
		now = end
	}
	tr.Close(0)
	return tr
}

// Write encodes the song and writes it to w as a Standard MIDI File.
func Write(w io.Writer, song *organya.Song) error {
	s, err := Encode(song)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("could not write SMF: %w", err)
	}
	return nil
}
