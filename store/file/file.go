// Package file provides a Store backed by a temporary file.
//
// The file is created in the directory given to New (the system temporary
// directory when empty) and removed when the store is closed. Appends are
// buffered; the buffer is flushed before any read that reaches into it.
package file

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Belval/disklist/store"
)

const (
	defaultBufSize = 52 * 1024
	filePattern    = "disklist-*.dat"
)

// Store is a store.Store over an ephemeral file.
type Store struct {
	f       *os.File
	buf     *bufio.Writer
	size    int64
	flushed int64
	closed  bool
}

// New creates a fresh temporary file in dir.
func New(dir string) (*Store, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("file store: failed to create directory %s: %w", dir, err)
		}
	}

	f, err := os.CreateTemp(dir, filePattern)
	if err != nil {
		return nil, fmt.Errorf("file store: failed to create temp file: %w", err)
	}

	return &Store{
		f:   f,
		buf: bufio.NewWriterSize(f, defaultBufSize),
	}, nil
}

// Opener returns a store.Opener creating file stores in dir.
func Opener(dir string) store.Opener {
	return func() (store.Store, error) {
		return New(dir)
	}
}

// Name returns the path of the backing file.
func (s *Store) Name() string {
	return s.f.Name()
}

func (s *Store) Append(p []byte) (int64, error) {
	if s.closed {
		return 0, store.ErrClosed
	}

	off := s.size
	n, err := s.buf.Write(p)
	s.size += int64(n)
	if err != nil {
		return off, fmt.Errorf("file store: write at %d: %w", off, err)
	}
	return off, nil
}

func (s *Store) ReadAt(p []byte, off int64) (int, error) {
	if s.closed {
		return 0, store.ErrClosed
	}
	if err := store.CheckBounds(off, len(p), s.size); err != nil {
		return 0, err
	}

	if off+int64(len(p)) > s.flushed {
		if err := s.flush(); err != nil {
			return 0, err
		}
	}

	n, err := s.f.ReadAt(p, off)
	if err != nil {
		if errors.Is(err, io.EOF) && n == len(p) {
			return n, nil
		}
		return n, fmt.Errorf("file store: read at %d: %w", off, err)
	}
	return n, nil
}

func (s *Store) Size() int64 {
	return s.size
}

func (s *Store) Reset() error {
	if s.closed {
		return store.ErrClosed
	}

	s.buf.Reset(s.f)
	if err := s.f.Truncate(0); err != nil {
		return fmt.Errorf("file store: truncate: %w", err)
	}
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("file store: seek: %w", err)
	}

	s.size = 0
	s.flushed = 0
	return nil
}

// Close closes and removes the backing file.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	name := s.f.Name()
	return errors.Join(
		s.f.Close(),
		os.Remove(name),
	)
}

func (s *Store) flush() error {
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("file store: flush: %w", err)
	}
	s.flushed = s.size
	return nil
}
