package organya

type (
	// AudioBuffer is a buffer of stereo frames at SampleRate: index 0 is the
	// left channel and index 1 the right channel.
	AudioBuffer [][2]float32

	// AudioSource is an endless producer of audio. ReadAudio always fills the
	// whole buffer.
	AudioSource interface {
		ReadAudio(buffer AudioBuffer) error
	}

	// AudioContext is an audio device that can play sources.
	AudioContext interface {
		Play(source AudioSource) CloserWaiter
		Close() error
	}

	// CloserWaiter is a handle to something being played: Close stops it and
	// Wait blocks until it has stopped.
	CloserWaiter interface {
		Close() error
		Wait()
	}
)

// Fill sets every frame of the buffer to value.
func (b AudioBuffer) Fill(value [2]float32) {
	for i := range b {
		b[i] = value
	}
}
