// Package store defines the backing store a disklist writes its encoded
// elements into.
//
// A Store is an append-preferring byte region: bytes are only ever added at
// the current end, any span can be read back by offset, and the whole region
// can be reset to empty. A Store never reclaims space on its own; spans that
// are no longer referenced stay in place until Reset or Close.
//
// Implementations:
//   - store/file: an unlinked-on-close temporary file (the default)
//   - store/pebble: an ephemeral pebble database in a temporary directory
//   - store/memory: a byte slice, for tests and small lists
package store

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrOutOfBounds is returned by ReadAt when the requested span ends past
	// the current extent of the store.
	ErrOutOfBounds = errors.New("store: read out of bounds")
	// ErrClosed is returned by any operation on a closed store.
	ErrClosed = errors.New("store: closed")
)

// Store is an ephemeral, appendable, randomly readable byte region.
type Store interface {
	io.ReaderAt

	// Append writes p at the current end of the store and returns the
	// offset where the write began. Implementations must not retain p.
	Append(p []byte) (int64, error)

	// Size returns the current extent of the store in bytes.
	Size() int64

	// Reset discards all content and returns the store to zero length.
	Reset() error

	// Close releases the store and everything it holds.
	Close() error
}

// Opener creates a fresh, empty Store.
type Opener func() (Store, error)

// CheckBounds validates a read of n bytes at off against a store of the
// given size.
func CheckBounds(off int64, n int, size int64) error {
	if off < 0 || n < 0 || off+int64(n) > size {
		return fmt.Errorf("%w: span [%d, %d) exceeds size %d", ErrOutOfBounds, off, off+int64(n), size)
	}
	return nil
}

// Copy appends the first n bytes of src to dst and returns the offset in dst
// where the copied bytes begin. n is captured by the caller so copying a
// store into itself only copies the bytes present before the call.
func Copy(dst Store, src io.ReaderAt, n int64) (int64, error) {
	base := dst.Size()
	if n == 0 {
		return base, nil
	}

	w := &appendWriter{s: dst}
	buf := make([]byte, copyBufSize)
	if _, err := io.CopyBuffer(w, io.NewSectionReader(src, 0, n), buf); err != nil {
		return base, fmt.Errorf("store: copy: %w", err)
	}

	return base, nil
}

const copyBufSize = 64 * 1024

// appendWriter adapts a Store to io.Writer.
type appendWriter struct {
	s Store
}

func (w *appendWriter) Write(p []byte) (int, error) {
	// io.CopyBuffer reuses its buffer between writes.
	if _, err := w.s.Append(p); err != nil {
		return 0, err
	}
	return len(p), nil
}
