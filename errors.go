package organya

import (
	"errors"
	"fmt"

	"github.com/vsariola/organya/cursor"
)

var (
	// ErrTruncated means the input ended before a required field.
	ErrTruncated = cursor.ErrTruncated
	// ErrInvalidTag means the 6-byte format marker at the start of a song is
	// not text.
	ErrInvalidTag = errors.New("invalid format tag")
	// ErrConfig is wrapped by every *ConfigError.
	ErrConfig = errors.New("invalid instrument configuration")
)

// FormatError reports a song file that could not be decoded. Err is either
// ErrTruncated or ErrInvalidTag (possibly wrapped), so errors.Is can be used
// to tell them apart.
type FormatError struct {
	Offset int    // byte offset where decoding failed
	Field  string // human readable name of the field being decoded
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("organya: cannot decode %s at offset %d: %v", e.Field, e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// IOError reports a byte source (song file or instrument bank) that could not
// supply the data asked from it.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("organya: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ConfigError reports a track referencing an instrument that does not exist
// in the loaded instrument bank. Track is -1 when the lookup was not made on
// behalf of a track.
type ConfigError struct {
	Track      int
	Instrument int
	Drum       bool
	Available  int
}

func (e *ConfigError) Error() string {
	kind := "melodic"
	if e.Drum {
		kind = "drum"
	}
	if e.Track < 0 {
		return fmt.Sprintf("organya: no %s instrument %d, the bank has only %d", kind, e.Instrument, e.Available)
	}
	return fmt.Sprintf("organya: track %d uses %s instrument %d, but the bank has only %d", e.Track, kind, e.Instrument, e.Available)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }
