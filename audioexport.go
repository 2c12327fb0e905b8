package organya

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Wav writes the buffer to w as a 16-bit stereo .wav file at SampleRate.
// Values outside [-1, 1] are clipped.
func Wav(w io.WriteSeeker, buffer AudioBuffer) error {
	enc := wav.NewEncoder(w, SampleRate, 16, 2, 1)
	data := make([]int, 0, len(buffer)*2)
	for _, frame := range buffer {
		data = append(data, int(toInt16(frame[0])), int(toInt16(frame[1])))
	}
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: SampleRate, NumChannels: 2},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("Wav failed: %v", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("Wav failed: could not finalize header: %v", err)
	}
	return nil
}

// Raw returns the buffer as interleaved little-endian samples; either
// float32 or, if pcm16 is set, int16.
func Raw(buffer AudioBuffer, pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	var err error
	if pcm16 {
		int16data := make([]int16, len(buffer)*2)
		for i, v := range buffer {
			int16data[2*i] = toInt16(v[0])
			int16data[2*i+1] = toInt16(v[1])
		}
		err = binary.Write(buf, binary.LittleEndian, int16data)
	} else {
		err = binary.Write(buf, binary.LittleEndian, buffer)
	}
	if err != nil {
		return nil, fmt.Errorf("Raw failed: could not binary write data to binary buffer: %v", err)
	}
	return buf.Bytes(), nil
}

func toInt16(v float32) int16 {
	return int16(clamp(int(v*math.MaxInt16), math.MinInt16, math.MaxInt16))
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
