package oto_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/vsariola/organya"
	"github.com/vsariola/organya/oto"
)

func TestFloatBufferTo32BitLE(t *testing.T) {
	buf := organya.AudioBuffer{{0.5, -1}, {0, 0.25}}
	dst := oto.FloatBufferTo32BitLE(buf, []byte{0xAA})
	if len(dst) != 1+len(buf)*8 {
		t.Fatalf("expected %d bytes, got %d", 1+len(buf)*8, len(dst))
	}
	if dst[0] != 0xAA {
		t.Fatalf("existing contents of dst were overwritten")
	}
	expected := []float32{0.5, -1, 0, 0.25}
	for i, e := range expected {
		v := math.Float32frombits(binary.LittleEndian.Uint32(dst[1+4*i:]))
		if v != e {
			t.Errorf("sample %d: got %v, expected %v", i, v, e)
		}
	}
}
