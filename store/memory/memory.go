// Package memory provides a Store held entirely in a byte slice.
package memory

import (
	"github.com/Belval/disklist/store"
)

// Store keeps every appended byte in memory.
type Store struct {
	data   []byte
	closed bool
}

func New() *Store {
	return &Store{}
}

// Open is a store.Opener for in-memory stores.
func Open() (store.Store, error) {
	return New(), nil
}

func (s *Store) Append(p []byte) (int64, error) {
	if s.closed {
		return 0, store.ErrClosed
	}
	off := int64(len(s.data))
	s.data = append(s.data, p...)
	return off, nil
}

func (s *Store) ReadAt(p []byte, off int64) (int, error) {
	if s.closed {
		return 0, store.ErrClosed
	}
	if err := store.CheckBounds(off, len(p), int64(len(s.data))); err != nil {
		return 0, err
	}
	return copy(p, s.data[off:]), nil
}

func (s *Store) Size() int64 {
	return int64(len(s.data))
}

func (s *Store) Reset() error {
	if s.closed {
		return store.ErrClosed
	}
	s.data = s.data[:0]
	return nil
}

func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.data = nil
	return nil
}
