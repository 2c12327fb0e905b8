package oto

import (
	"encoding/binary"
	"math"

	"github.com/vsariola/organya"
)

// FloatBufferTo32BitLE appends the interleaved float32 little-endian bytes of
// buff to dst and returns the extended slice. The samples are expected to be
// clamped already.
func FloatBufferTo32BitLE(buff organya.AudioBuffer, dst []byte) []byte {
	for _, frame := range buff {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(frame[0]))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(frame[1]))
	}
	return dst
}
