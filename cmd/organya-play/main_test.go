package main

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/vsariola/organya"
)

// memFile is an in-memory wavFile.
type memFile struct {
	data     []byte
	pos      int64
	closed   bool
	closeErr error
}

func (m *memFile) Write(p []byte) (int, error) {
	if end := m.pos + int64(len(p)); end > int64(len(m.data)) {
		m.data = append(m.data, make([]byte, end-int64(len(m.data)))...)
	}
	copy(m.data[m.pos:], p)
	m.pos += int64(len(p))
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.data)) + offset
	}
	return m.pos, nil
}

func (m *memFile) Close() error {
	m.closed = true
	return m.closeErr
}

func (m *memFile) Name() string { return "song.wav" }

func TestWriteWav(t *testing.T) {
	f := &memFile{}
	if err := writeWav(f, organya.AudioBuffer{{0.5, -0.5}, {0, 0}}); err != nil {
		t.Fatalf("writeWav failed: %v", err)
	}
	if !f.closed {
		t.Fatalf("file was not closed")
	}
	if !strings.HasPrefix(string(f.data), "RIFF") {
		t.Fatalf("output is not a RIFF file")
	}
}

func TestWriteWavCloseError(t *testing.T) {
	diskFull := errors.New("disk full")
	f := &memFile{closeErr: diskFull}
	err := writeWav(f, organya.AudioBuffer{{0.5, -0.5}})
	if !errors.Is(err, diskFull) {
		t.Fatalf("expected the close error to be reported, got %v", err)
	}
}

func TestPrintInfo(t *testing.T) {
	song := &organya.Song{Properties: organya.Properties{Tag: "Org-02", Click: 100}}
	for i := range song.Tracks {
		song.Tracks[i].Drum = i >= organya.NumMelodic
	}
	song.Tracks[2].Notes = []organya.Note{{Position: 0, Key: 45, Length: 4, Volume: 200, Pan: 6}}
	song.Tracks[9].Notes = []organya.Note{{Position: 0, Length: 1}, {Position: 2, Length: 1}}
	var b bytes.Buffer
	if err := printInfo(&b, "dir/song.org", song); err != nil {
		t.Fatalf("printInfo failed: %v", err)
	}
	out := b.String()
	for _, want := range []string{"song.org", "tracks:  1 melodic, 1 drum", "Melodic 2", "Drum    1", "loop:    none"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output does not contain %q:\n%s", want, out)
		}
	}
}
