// Package pebble provides a Store backed by an ephemeral pebble database.
//
// Every Append becomes one key/value pair: the key is the big-endian offset
// the chunk starts at, the value is the appended bytes. A read seeks to the
// last chunk starting at or before the requested offset and stitches
// following chunks until the span is filled. The database lives in a
// temporary directory that is removed on Close.
package pebble

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cockroachdb/pebble"

	"github.com/Belval/disklist/store"
)

const dirPattern = "disklist-pebble-*"

var keySize = binary.Size(uint64(0))

// Options configures the pebble database.
type Options struct {
	// CacheSize is the size of the pebble block cache in bytes.
	// Zero keeps pebble's default.
	CacheSize int64

	// MemTableSize is the size of a single memtable in bytes.
	// Zero keeps pebble's default.
	MemTableSize uint64
}

// Store is a store.Store over a pebble database.
type Store struct {
	db     *pebble.DB
	dir    string
	size   int64
	closed bool
}

// New opens a pebble database in a fresh temporary directory under dir.
func New(dir string, opts *Options) (*Store, error) {
	if opts == nil {
		opts = &Options{}
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("pebble store: failed to create directory %s: %w", dir, err)
		}
	}

	path, err := os.MkdirTemp(dir, dirPattern)
	if err != nil {
		return nil, fmt.Errorf("pebble store: failed to create temp dir: %w", err)
	}

	pebbleOpts := &pebble.Options{}
	if opts.CacheSize > 0 {
		cache := pebble.NewCache(opts.CacheSize)
		defer cache.Unref()
		pebbleOpts.Cache = cache
	}
	if opts.MemTableSize > 0 {
		pebbleOpts.MemTableSize = opts.MemTableSize
	}

	db, err := pebble.Open(path, pebbleOpts)
	if err != nil {
		os.RemoveAll(path)
		return nil, fmt.Errorf("pebble store: failed to open database: %w", err)
	}

	return &Store{
		db:  db,
		dir: path,
	}, nil
}

// Opener returns a store.Opener creating pebble stores under dir.
func Opener(dir string, opts *Options) store.Opener {
	return func() (store.Store, error) {
		return New(dir, opts)
	}
}

func (s *Store) Append(p []byte) (int64, error) {
	if s.closed {
		return 0, store.ErrClosed
	}

	off := s.size
	if len(p) == 0 {
		return off, nil
	}

	if err := s.db.Set(chunkKey(off), p, pebble.NoSync); err != nil {
		return off, fmt.Errorf("pebble store: set chunk %d: %w", off, err)
	}
	s.size += int64(len(p))

	return off, nil
}

func (s *Store) ReadAt(p []byte, off int64) (int, error) {
	if s.closed {
		return 0, store.ErrClosed
	}
	if err := store.CheckBounds(off, len(p), s.size); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}

	it, err := s.db.NewIter(&pebble.IterOptions{
		UpperBound: chunkKey(off + int64(len(p))),
	})
	if err != nil {
		return 0, fmt.Errorf("pebble store: new iterator: %w", err)
	}

	n, readErr := readChunks(it, p, off)

	return n, errors.Join(readErr, it.Close())
}

// readChunks fills p starting at off from the chunk containing off onwards.
func readChunks(it *pebble.Iterator, p []byte, off int64) (int, error) {
	var n int
	for valid := it.SeekLT(chunkKey(off + 1)); valid && n < len(p); valid = it.Next() {
		start := int64(binary.BigEndian.Uint64(it.Key()))
		value := it.Value()

		pos := off + int64(n) - start
		if pos < 0 || pos >= int64(len(value)) {
			return n, fmt.Errorf("pebble store: missing chunk at %d", off+int64(n))
		}
		n += copy(p[n:], value[pos:])
	}

	if err := it.Error(); err != nil {
		return n, fmt.Errorf("pebble store: iterate: %w", err)
	}
	if n < len(p) {
		return n, fmt.Errorf("pebble store: read at %d: %w", off, io.ErrUnexpectedEOF)
	}

	return n, nil
}

func (s *Store) Size() int64 {
	return s.size
}

// Reset drops every chunk with a single range deletion.
func (s *Store) Reset() error {
	if s.closed {
		return store.ErrClosed
	}

	if err := s.db.DeleteRange(chunkKey(0), chunkKey(math.MaxInt64), pebble.NoSync); err != nil {
		return fmt.Errorf("pebble store: delete range: %w", err)
	}
	s.size = 0

	return nil
}

// Close closes the database and removes its directory.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	return errors.Join(
		s.db.Close(),
		os.RemoveAll(s.dir),
	)
}

func chunkKey(off int64) []byte {
	key := make([]byte, keySize)
	binary.BigEndian.PutUint64(key, uint64(off))
	return key
}
