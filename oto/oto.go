// Package oto plays organya audio sources on the default audio device using
// github.com/ebitengine/oto/v3.
package oto

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/vsariola/organya"
)

type OtoContext struct {
	context *oto.Context
}

type OtoOutput struct {
	player *oto.Player
	done   chan struct{}
	once   sync.Once
}

// sourceReader adapts an organya.AudioSource to the io.Reader oto pulls
// from.
type sourceReader struct {
	source  organya.AudioSource
	buffer  organya.AudioBuffer
	bytes   []byte
	pending []byte // unread part of bytes
}

const (
	otoBufferFrames = 2048
	bytesPerFrame   = 8
)

// NewContext creates the oto context and waits until the device is ready.
func NewContext() (*OtoContext, error) {
	op := &oto.NewContextOptions{
		SampleRate:   organya.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context}, nil
}

// Play starts pulling audio from source. The returned handle plays until it
// is closed or the source fails.
func (c *OtoContext) Play(source organya.AudioSource) organya.CloserWaiter {
	r := &sourceReader{source: source, buffer: make(organya.AudioBuffer, otoBufferFrames)}
	o := &OtoOutput{player: c.context.NewPlayer(r), done: make(chan struct{})}
	o.player.Play()
	return o
}

// Close suspends the audio device; oto contexts cannot be destroyed.
func (c *OtoContext) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

// Close stops playback and disposes of the player.
func (o *OtoOutput) Close() error {
	o.once.Do(func() { close(o.done) })
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

// Wait blocks until Close has been called.
func (o *OtoOutput) Wait() {
	<-o.done
}

func (r *sourceReader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		frames := min(len(r.buffer), max(len(p)/bytesPerFrame, 1))
		buf := r.buffer[:frames]
		if err := r.source.ReadAudio(buf); err != nil {
			return 0, fmt.Errorf("cannot read audio source: %w", err)
		}
		r.bytes = FloatBufferTo32BitLE(buf, r.bytes[:0])
		r.pending = r.bytes
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

var _ io.Reader = (*sourceReader)(nil)
