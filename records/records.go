// Package records composes a backing store, an offset table and a codec
// into element-level storage addressed by position.
//
// Every write encodes the element, frames it with recordio and appends the
// frame at the end of the backing store; the offset table alone decides
// where the element sits in the list. Nothing is ever rewritten in place:
// Set and Delete leave the superseded frame behind as orphaned space, which
// only Clear (or an explicit compaction) gives back.
package records

import (
	"errors"
	"fmt"

	"github.com/Belval/disklist/codec"
	"github.com/Belval/disklist/index"
	"github.com/Belval/disklist/recordio"
	"github.com/Belval/disklist/store"
)

var (
	// ErrCorruptRecord is returned when a frame cannot be read back in full,
	// fails verification, or cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt record")
	// ErrIO is returned when the backing store fails to read, write or reset.
	ErrIO = errors.New("backing store failure")
)

// Store provides get/set/append/insert/delete by position.
type Store[T any] struct {
	backing store.Store
	table   *index.Table
	codec   codec.Codec[T]
	frame   []byte
}

func New[T any](backing store.Store, c codec.Codec[T]) *Store[T] {
	return &Store[T]{
		backing: backing,
		table:   index.New(),
		codec:   c,
	}
}

// Len returns the number of elements.
func (s *Store[T]) Len() int {
	return s.table.Len()
}

// Size returns the number of bytes in the backing store, orphans included.
func (s *Store[T]) Size() int64 {
	return s.backing.Size()
}

// LiveBytes returns the number of backing store bytes still referenced.
func (s *Store[T]) LiveBytes() int64 {
	return s.table.LiveBytes()
}

// Backing returns the backing store.
func (s *Store[T]) Backing() store.Store {
	return s.backing
}

// Records returns a snapshot of the offset table.
func (s *Store[T]) Records() []index.Record {
	return s.table.Records()
}

// Get returns the element at pos.
func (s *Store[T]) Get(pos int) (T, error) {
	r, err := s.table.Get(pos)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.read(r)
}

// GetRange returns the elements selected by sl, reading one frame per
// element.
func (s *Store[T]) GetRange(sl index.Slice) ([]T, error) {
	recs, err := s.table.Range(sl)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(recs))
	for _, r := range recs {
		v, err := s.read(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Length returns the stored payload length of the element at pos.
func (s *Store[T]) Length(pos int) (int64, error) {
	r, err := s.table.Get(pos)
	if err != nil {
		return 0, err
	}
	return r.Length, nil
}

// RoundTrip returns v as it would read back from the store, together with
// the payload length it would be stored with.
func (s *Store[T]) RoundTrip(v T) (T, int64, error) {
	var zero T
	payload, err := s.encode(v)
	if err != nil {
		return zero, 0, err
	}
	back, err := s.codec.Decode(payload)
	if err != nil {
		return zero, 0, fmt.Errorf("records: decode: %w", err)
	}
	return back, int64(len(payload)), nil
}

// Set stores v as the element at pos. The previous frame is orphaned.
func (s *Store[T]) Set(pos int, v T) error {
	pos, err := s.table.Normalize(pos)
	if err != nil {
		return err
	}

	r, err := s.write(v)
	if err != nil {
		return err
	}

	_, err = s.table.Replace(pos, r)
	return err
}

// Append stores v after the last element.
func (s *Store[T]) Append(v T) error {
	r, err := s.write(v)
	if err != nil {
		return err
	}

	s.table.Append(r)
	return nil
}

// Insert stores v at pos, shifting later elements back. The frame itself is
// appended at the end of the backing store like any other write.
func (s *Store[T]) Insert(pos int, v T) error {
	pos, err := s.table.InsertPosition(pos)
	if err != nil {
		return err
	}

	r, err := s.write(v)
	if err != nil {
		return err
	}

	return s.table.Insert(pos, r)
}

// Delete removes the element at pos. Its frame is orphaned.
func (s *Store[T]) Delete(pos int) error {
	_, err := s.table.Remove(pos)
	return err
}

// Clear drops every element and resets the backing store.
func (s *Store[T]) Clear() error {
	s.table.Reset()
	if err := s.backing.Reset(); err != nil {
		return fmt.Errorf("%w: reset: %w", ErrIO, err)
	}
	return nil
}

// Concat appends every element of other. All of other's store bytes are
// copied behind this store's current end and other's records are shifted
// by that end. other is left untouched; s may be other.
func (s *Store[T]) Concat(other *Store[T]) error {
	recs := other.table.Records()

	base, err := store.Copy(s.backing, other.backing, other.backing.Size())
	if err != nil {
		return fmt.Errorf("%w: concat: %w", ErrIO, err)
	}

	s.table.AppendShifted(recs, base)
	return nil
}

// Swap replaces the backing store and offset table, returning the previous
// store so the caller can close it.
func (s *Store[T]) Swap(backing store.Store, table *index.Table) store.Store {
	old := s.backing
	s.backing = backing
	s.table = table
	return old
}

// ReadFrame reads and verifies the frame r points at and returns its
// payload.
func ReadFrame(src store.Store, r index.Record) ([]byte, error) {
	frame := make([]byte, r.FrameSize())
	if _, err := src.ReadAt(frame, r.Offset); err != nil {
		if errors.Is(err, store.ErrOutOfBounds) {
			return nil, fmt.Errorf("%w: record at %d: %w", ErrCorruptRecord, r.Offset, err)
		}
		return nil, fmt.Errorf("%w: read at %d: %w", ErrIO, r.Offset, err)
	}

	payload, err := recordio.Decode(frame, r.Length)
	if err != nil {
		return nil, fmt.Errorf("%w: record at %d: %w", ErrCorruptRecord, r.Offset, err)
	}
	return payload, nil
}

func (s *Store[T]) read(r index.Record) (T, error) {
	payload, err := ReadFrame(s.backing, r)
	if err != nil {
		var zero T
		return zero, err
	}

	v, err := s.codec.Decode(payload)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: record at %d: %w", ErrCorruptRecord, r.Offset, err)
	}
	return v, nil
}

func (s *Store[T]) write(v T) (index.Record, error) {
	payload, err := s.encode(v)
	if err != nil {
		return index.Record{}, err
	}

	s.frame = recordio.Append(s.frame[:0], payload)
	off, err := s.backing.Append(s.frame)
	if err != nil {
		return index.Record{}, fmt.Errorf("%w: append: %w", ErrIO, err)
	}

	return index.Record{Offset: off, Length: int64(len(payload))}, nil
}

func (s *Store[T]) encode(v T) ([]byte, error) {
	payload, err := s.codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("records: encode: %w", err)
	}
	return payload, nil
}
