package wavebank_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/vsariola/organya"
	"github.com/vsariola/organya/wavebank"
)

func encodeBank(cycle int, melodic [][]byte, rate uint16, drums [][]byte) []byte {
	var b bytes.Buffer
	b.WriteByte(byte(len(melodic)))
	b.Write([]byte{byte(cycle >> 16), byte(cycle >> 8), byte(cycle)})
	for _, m := range melodic {
		b.Write(m)
	}
	b.WriteByte(byte(len(drums)))
	b.Write([]byte{byte(rate >> 8), byte(rate)})
	for _, d := range drums {
		b.Write([]byte{byte(len(d) >> 16), byte(len(d) >> 8), byte(len(d))})
		b.Write(d)
	}
	return b.Bytes()
}

var testBank = encodeBank(4,
	[][]byte{{0, 64, 128, 192}, {1, 2, 3, 255}},
	0,
	[][]byte{{10, 20, 30}, {}, {0x80, 0x7F}})

// closeTracker is a ReadSeeker that records if it was closed.
type closeTracker struct {
	*bytes.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func checkBank(t *testing.T, bank *wavebank.Bank) {
	t.Helper()
	if bank.NumMelodic() != 2 || bank.NumDrums() != 3 || bank.CycleLength() != 4 {
		t.Fatalf("wrong counts: %d melodic, %d drums, cycle %d", bank.NumMelodic(), bank.NumDrums(), bank.CycleLength())
	}
	if bank.DrumRate() != organya.SampleRate {
		t.Fatalf("zero drum rate should mean %d, got %d", organya.SampleRate, bank.DrumRate())
	}
	w, err := bank.Resolve(0, false)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := []int8{0, 64, -128, -64}
	for i := range want {
		if w.Samples[i] != want[i] {
			t.Fatalf("melodic 0 sample %d = %d, expected %d", i, w.Samples[i], want[i])
		}
	}
	if w.Drum || w.Len() != 4 {
		t.Fatalf("wrong melodic waveform: %+v", w)
	}
	d, err := bank.Resolve(2, true)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !d.Drum || len(d.Samples) != 2 || d.Samples[0] != -128 || d.Samples[1] != 127 {
		t.Fatalf("wrong drum waveform: %+v", d)
	}
	empty, err := bank.Resolve(1, true)
	if err != nil || len(empty.Samples) != 0 {
		t.Fatalf("empty drum: %+v, %v", empty, err)
	}
	again, _ := bank.Resolve(2, true)
	if again != d {
		t.Fatalf("Resolve should return the cached waveform")
	}
	_, err = bank.Resolve(3, true)
	if !errors.Is(err, organya.ErrConfig) {
		t.Fatalf("expected ErrConfig for drum 3, got %v", err)
	}
	_, err = bank.Resolve(-1, false)
	if !errors.Is(err, organya.ErrConfig) {
		t.Fatalf("expected ErrConfig for melodic -1, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	bank, err := wavebank.Load(bytes.NewReader(testBank))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	checkBank(t, bank)
	if err := bank.Close(); err != nil {
		t.Fatalf("Close of an eager bank failed: %v", err)
	}
	if _, err := bank.Resolve(1, false); err != nil {
		t.Fatalf("eager bank should resolve after Close: %v", err)
	}
}

func TestOpen(t *testing.T) {
	src := &closeTracker{Reader: bytes.NewReader(testBank)}
	bank, err := wavebank.Open(src)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	checkBank(t, bank)
	if err := bank.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !src.closed {
		t.Fatalf("Close should close the byte source")
	}
	if _, err := bank.Resolve(0, false); err != nil {
		t.Fatalf("already resolved waveform should stay available: %v", err)
	}
	var ioErr *organya.IOError
	if _, err := bank.Resolve(1, false); !errors.As(err, &ioErr) {
		t.Fatalf("resolving from a closed bank should be an IOError, got %v", err)
	}
}

func TestTruncatedBank(t *testing.T) {
	for n := 0; n < len(testBank); n++ {
		data := testBank[:n]
		_, err := wavebank.Load(bytes.NewReader(data))
		var ioErr *organya.IOError
		if !errors.As(err, &ioErr) || !errors.Is(err, organya.ErrTruncated) {
			t.Fatalf("Load of %d bytes: expected truncated IOError, got %v", n, err)
		}
		_, err = wavebank.Open(bytes.NewReader(data))
		if !errors.As(err, &ioErr) {
			t.Fatalf("Open of %d bytes: expected IOError, got %v", n, err)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestLoadReadError(t *testing.T) {
	_, err := wavebank.Load(failingReader{})
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("expected the reader error to be wrapped, got %v", err)
	}
}

func TestDrumRate(t *testing.T) {
	bank, err := wavebank.Load(bytes.NewReader(encodeBank(0, nil, 22050, [][]byte{make([]byte, 100)})))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	d, err := bank.Resolve(0, true)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if d.Rate != 22050 || d.Len() != 200 {
		t.Fatalf("22050 Hz drum of 100 samples should last 200 frames, got rate %d len %d", d.Rate, d.Len())
	}
}

func TestValidate(t *testing.T) {
	bank, err := wavebank.Load(bytes.NewReader(testBank))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	song := &organya.Song{}
	for i := range song.Tracks {
		song.Tracks[i].Drum = i >= organya.NumMelodic
		song.Tracks[i].Index = 200 // unused tracks may reference anything
	}
	if err := bank.Validate(song); err != nil {
		t.Fatalf("empty tracks should validate: %v", err)
	}
	song.Tracks[1].Notes = []organya.Note{{Length: 1}}
	song.Tracks[1].Pi = true
	if err := bank.Validate(song); err != nil {
		t.Fatalf("muted tracks should validate: %v", err)
	}
	song.Tracks[10].Notes = []organya.Note{{Length: 1}}
	song.Tracks[10].Index = 3
	err = bank.Validate(song)
	var ce *organya.ConfigError
	if !errors.As(err, &ce) || ce.Track != 10 || !ce.Drum || ce.Available != 3 {
		t.Fatalf("expected ConfigError for track 10, got %v", err)
	}
	song.Tracks[10].Index = 2
	waves, err := bank.Preload(song)
	if err != nil {
		t.Fatalf("Preload failed: %v", err)
	}
	if waves[10] == nil || waves[1] != nil || waves[0] != nil {
		t.Fatalf("Preload should resolve only tracks that can sound")
	}
}
