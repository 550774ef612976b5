// Package storetest holds the behaviour every store.Store implementation
// must share.
package storetest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Belval/disklist/store"
)

// Run exercises s against the store contract. The store is closed by Run.
func Run(t *testing.T, open store.Opener) {
	t.Helper()

	t.Run("append returns offsets", func(t *testing.T) {
		s := mustOpen(t, open)

		off, err := s.Append([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, int64(0), off)

		off, err = s.Append([]byte("world!"))
		require.NoError(t, err)
		assert.Equal(t, int64(5), off)
		assert.Equal(t, int64(11), s.Size())
	})

	t.Run("read spans", func(t *testing.T) {
		s := mustOpen(t, open)

		for _, chunk := range []string{"abc", "defg", "", "hi"} {
			_, err := s.Append([]byte(chunk))
			require.NoError(t, err)
		}

		tests := []struct {
			name string
			off  int64
			n    int
			want string
		}{
			{name: "whole chunk", off: 3, n: 4, want: "defg"},
			{name: "inside chunk", off: 4, n: 2, want: "ef"},
			{name: "across chunks", off: 2, n: 6, want: "cdefgh"},
			{name: "everything", off: 0, n: 9, want: "abcdefghi"},
			{name: "empty", off: 9, n: 0, want: ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := make([]byte, tt.n)
				n, err := s.ReadAt(p, tt.off)
				require.NoError(t, err)
				assert.Equal(t, tt.n, n)
				assert.Equal(t, tt.want, string(p))
			})
		}
	})

	t.Run("read out of bounds", func(t *testing.T) {
		s := mustOpen(t, open)

		_, err := s.Append([]byte("abc"))
		require.NoError(t, err)

		_, err = s.ReadAt(make([]byte, 2), 2)
		assert.ErrorIs(t, err, store.ErrOutOfBounds)

		_, err = s.ReadAt(make([]byte, 1), -1)
		assert.ErrorIs(t, err, store.ErrOutOfBounds)
	})

	t.Run("append does not retain input", func(t *testing.T) {
		s := mustOpen(t, open)

		p := []byte("abc")
		_, err := s.Append(p)
		require.NoError(t, err)
		copy(p, "xyz")

		got := make([]byte, 3)
		_, err = s.ReadAt(got, 0)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(got))
	})

	t.Run("reset", func(t *testing.T) {
		s := mustOpen(t, open)

		_, err := s.Append([]byte("some bytes"))
		require.NoError(t, err)
		require.NoError(t, s.Reset())
		assert.Equal(t, int64(0), s.Size())

		_, err = s.ReadAt(make([]byte, 1), 0)
		assert.ErrorIs(t, err, store.ErrOutOfBounds)

		off, err := s.Append([]byte("new"))
		require.NoError(t, err)
		assert.Equal(t, int64(0), off)

		got := make([]byte, 3)
		_, err = s.ReadAt(got, 0)
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))
	})

	t.Run("copy", func(t *testing.T) {
		dst := mustOpen(t, open)
		src := mustOpen(t, open)

		_, err := dst.Append([]byte("left"))
		require.NoError(t, err)
		payload := bytes.Repeat([]byte("0123456789"), 20_000)
		_, err = src.Append(payload)
		require.NoError(t, err)

		base, err := store.Copy(dst, src, src.Size())
		require.NoError(t, err)
		assert.Equal(t, int64(4), base)
		assert.Equal(t, int64(4+len(payload)), dst.Size())

		got := make([]byte, len(payload))
		_, err = dst.ReadAt(got, base)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("copy into itself", func(t *testing.T) {
		s := mustOpen(t, open)

		_, err := s.Append([]byte("twice"))
		require.NoError(t, err)

		base, err := store.Copy(s, s, s.Size())
		require.NoError(t, err)
		assert.Equal(t, int64(5), base)

		got := make([]byte, 10)
		_, err = s.ReadAt(got, 0)
		require.NoError(t, err)
		assert.Equal(t, "twicetwice", string(got))
	})

	t.Run("closed", func(t *testing.T) {
		s, err := open()
		require.NoError(t, err)
		require.NoError(t, s.Close())
		require.NoError(t, s.Close())

		_, err = s.Append([]byte("x"))
		assert.ErrorIs(t, err, store.ErrClosed)
		_, err = s.ReadAt(make([]byte, 1), 0)
		assert.ErrorIs(t, err, store.ErrClosed)
		assert.ErrorIs(t, s.Reset(), store.ErrClosed)
	})
}

func mustOpen(t *testing.T, open store.Opener) store.Store {
	t.Helper()

	s, err := open()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, s.Close())
	})
	return s
}
