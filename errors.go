package disklist

import (
	"errors"

	"github.com/Belval/disklist/index"
	"github.com/Belval/disklist/records"
)

var (
	// ErrOutOfRange is returned for positions outside the list and for
	// slices with a zero step.
	ErrOutOfRange = index.ErrOutOfRange
	// ErrCorruptRecord is returned when a stored element cannot be read
	// back, fails its checksum, or cannot be decoded.
	ErrCorruptRecord = records.ErrCorruptRecord
	// ErrIO is returned when the backing store fails.
	ErrIO = records.ErrIO

	ErrNotFound       = errors.New("disklist: value not found")
	ErrClosed         = errors.New("disklist: list is closed")
	ErrNilList        = errors.New("disklist: nil list")
	ErrNoCodec        = errors.New("disklist: codec is required")
	ErrUnknownBackend = errors.New("disklist: unknown backend")
)
