// Package player turns a decoded song into audio. Each of the 16 tracks is
// played by its own Sequencer; a Mixer sums them and a Stream delivers the
// mix to an audio sink, clamped to [-1, 1].
//
// Everything is pull based and single threaded: nothing is computed before
// it is asked for, and all I/O happens in New, before the first frame.
package player

import (
	"fmt"

	"github.com/vsariola/organya"
	"github.com/vsariola/organya/wavebank"
)

// New validates the song against the bank, resolves every waveform the song
// needs and returns a mixer of the 16 track sequencers.
func New(song *organya.Song, bank *wavebank.Bank) (*Mixer, error) {
	waves, err := bank.Preload(song)
	if err != nil {
		return nil, fmt.Errorf("player.New failed: %w", err)
	}
	seqs := make([]*Sequencer, organya.NumTracks)
	for i := range seqs {
		seqs[i] = NewSequencer(song, i, waves[i])
	}
	return NewMixer(seqs...), nil
}

// NewSongStream is a shorthand for New followed by NewStream.
func NewSongStream(song *organya.Song, bank *wavebank.Bank, opts Options) (*Stream, error) {
	mixer, err := New(song, bank)
	if err != nil {
		return nil, err
	}
	return NewStream(mixer, opts), nil
}

// Render renders the given number of frames of the song into a new buffer.
func Render(song *organya.Song, bank *wavebank.Bank, frames int, opts Options) (organya.AudioBuffer, error) {
	stream, err := NewSongStream(song, bank, opts)
	if err != nil {
		return nil, err
	}
	buffer := make(organya.AudioBuffer, frames)
	if err := stream.ReadAudio(buffer); err != nil {
		return nil, fmt.Errorf("player.Render failed: %w", err)
	}
	return buffer, nil
}

// PassFrames returns the number of frames in one pass through the song, from
// the start to the loop end (or the last note, if the song does not loop).
func PassFrames(song *organya.Song) int {
	return song.LengthInRows() * song.SamplesPerRow()
}

// LoopFrames returns the number of frames of one loop iteration, or 0 if the
// song does not loop.
func LoopFrames(song *organya.Song) int {
	if !song.Loops() {
		return 0
	}
	return int(song.LoopEnd-song.LoopStart) * song.SamplesPerRow()
}
