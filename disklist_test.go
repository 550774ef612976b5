package disklist_test

import (
	"bytes"
	"errors"
	"slices"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Belval/disklist"
	"github.com/Belval/disklist/codec"
	"github.com/Belval/disklist/index"
	"github.com/Belval/disklist/store"
	"github.com/Belval/disklist/store/memory"
)

// newList opens a gob encoded string list in a test directory and fills it.
func newList(t *testing.T, values []string, opts ...disklist.Option) *disklist.List[string] {
	t.Helper()

	opts = append([]disklist.Option{disklist.WithDir(t.TempDir())}, opts...)
	l, err := disklist.New(codec.NewGob[string](), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	require.NoError(t, l.Extend(values...))
	return l
}

func values(t *testing.T, l *disklist.List[string]) []string {
	t.Helper()

	got, err := l.Slice(disklist.Unset, disklist.Unset, 1)
	require.NoError(t, err)
	return got
}

func digits(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i)
	}
	return out
}

var backends = []string{disklist.BackendFile, disklist.BackendPebble, disklist.BackendMemory}

func TestList_Backends(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			l := newList(t, digits(4), disklist.WithBackend(backend))

			require.NoError(t, l.Set(0, "10"))
			require.NoError(t, l.Insert(1, "x"))
			require.NoError(t, l.Delete(-1))
			assert.Equal(t, []string{"10", "x", "1", "2"}, values(t, l))

			require.NoError(t, l.Compact())
			assert.Equal(t, []string{"10", "x", "1", "2"}, values(t, l))
			assert.Zero(t, l.Stats().OrphanedBytes)
		})
	}
}

func TestList_RoundTrip(t *testing.T) {
	type point struct {
		X, Y int
		Tags []string
	}

	l, err := disklist.New(codec.NewGob[point](), disklist.WithBackend(disklist.BackendMemory))
	require.NoError(t, err)
	defer l.Close()

	want := []point{
		{X: 1, Y: 2, Tags: []string{"a"}},
		{X: -5, Y: 0, Tags: []string{"b", "c"}},
		{X: 0, Y: 0, Tags: []string{"x"}},
	}
	for i, p := range want {
		require.NoError(t, l.Append(p))
		got, err := l.Get(i)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestList_Get(t *testing.T) {
	l := newList(t, digits(4))

	tests := []struct {
		name    string
		pos     int
		want    string
		wantErr error
	}{
		{name: "first", pos: 0, want: "0"},
		{name: "last", pos: 3, want: "3"},
		{name: "negative", pos: -1, want: "3"},
		{name: "past end", pos: 4, wantErr: disklist.ErrOutOfRange},
		{name: "before start", pos: -5, wantErr: disklist.ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Get(tt.pos)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestList_Slice(t *testing.T) {
	l := newList(t, digits(6))

	tests := []struct {
		name              string
		start, stop, step int
		want              []string
		wantErr           bool
	}{
		{name: "all", start: disklist.Unset, stop: disklist.Unset, step: 1, want: digits(6)},
		{name: "window", start: 1, stop: 3, step: 1, want: []string{"1", "2"}},
		{name: "stop clamped", start: 4, stop: 100, step: 1, want: []string{"4", "5"}},
		{name: "negative bounds", start: -3, stop: -1, step: 1, want: []string{"3", "4"}},
		{name: "stepped", start: 0, stop: disklist.Unset, step: 2, want: []string{"0", "2", "4"}},
		{name: "reversed", start: disklist.Unset, stop: disklist.Unset, step: -1, want: []string{"5", "4", "3", "2", "1", "0"}},
		{name: "backward stepped", start: 5, stop: 0, step: -2, want: []string{"5", "3", "1"}},
		{name: "empty", start: 3, stop: 3, step: 1, want: []string{}},
		{name: "zero step", start: 0, stop: 2, step: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Slice(tt.start, tt.stop, tt.step)
			if tt.wantErr {
				assert.ErrorIs(t, err, disklist.ErrOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := l.SliceOf(index.All())
	require.NoError(t, err)
	assert.Equal(t, digits(6), got)
}

func TestList_LengthInvariants(t *testing.T) {
	l := newList(t, nil)
	assert.Equal(t, 0, l.Len())

	for i := range 5 {
		require.NoError(t, l.Append(strconv.Itoa(i)))
		assert.Equal(t, i+1, l.Len())
	}

	require.NoError(t, l.Delete(2))
	assert.Equal(t, 4, l.Len())

	other := newList(t, digits(3))
	before := l.Len() + other.Len()
	_, err := l.Concat(other)
	require.NoError(t, err)
	assert.Equal(t, before, l.Len())

	require.NoError(t, l.Clear())
	assert.Equal(t, 0, l.Len())
	assert.Zero(t, l.Stats().StoreBytes)
}

func TestList_Insert(t *testing.T) {
	tests := []struct {
		name string
		pos  int
		want []string
	}{
		{name: "front", pos: 0, want: []string{"x", "0", "1", "2"}},
		{name: "middle", pos: 2, want: []string{"0", "1", "x", "2"}},
		{name: "end", pos: 3, want: []string{"0", "1", "2", "x"}},
		{name: "negative", pos: -1, want: []string{"0", "1", "x", "2"}},
		{name: "clamped high", pos: 100, want: []string{"0", "1", "2", "x"}},
		{name: "clamped low", pos: -100, want: []string{"x", "0", "1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newList(t, digits(3))
			require.NoError(t, l.Insert(tt.pos, "x"))
			assert.Equal(t, tt.want, values(t, l))
		})
	}
}

func TestList_Delete(t *testing.T) {
	l := newList(t, digits(5))

	require.NoError(t, l.Delete(1))
	assert.Equal(t, []string{"0", "2", "3", "4"}, values(t, l))

	require.NoError(t, l.Delete(-1))
	assert.Equal(t, []string{"0", "2", "3"}, values(t, l))

	assert.ErrorIs(t, l.Delete(3), disklist.ErrOutOfRange)
	assert.Equal(t, 3, l.Len())
}

func TestList_SetOrphansSpace(t *testing.T) {
	l := newList(t, digits(3))
	before := l.Stats()
	assert.Zero(t, before.OrphanedBytes)

	require.NoError(t, l.Set(1, "one"))
	assert.Equal(t, []string{"0", "one", "2"}, values(t, l))

	after := l.Stats()
	assert.Greater(t, after.StoreBytes, before.StoreBytes)
	assert.Positive(t, after.OrphanedBytes)
	assert.Equal(t, after.StoreBytes-after.LiveBytes, after.OrphanedBytes)

	assert.ErrorIs(t, l.Set(3, "x"), disklist.ErrOutOfRange)
	assert.Equal(t, after.StoreBytes, l.Stats().StoreBytes)
}

func TestList_Search(t *testing.T) {
	l := newList(t, []string{"a", "b", "a", "c", "bb", "a"})

	tests := []struct {
		name        string
		value       string
		start, stop int
		want        int
		wantErr     error
	}{
		{name: "first match", value: "a", start: disklist.Unset, stop: disklist.Unset, want: 0},
		{name: "after start", value: "a", start: 1, stop: disklist.Unset, want: 2},
		{name: "negative start", value: "a", start: -2, stop: disklist.Unset, want: 5},
		{name: "same length different value", value: "bb", start: disklist.Unset, stop: disklist.Unset, want: 4},
		{name: "stop excludes", value: "c", start: 0, stop: 3, wantErr: disklist.ErrNotFound},
		{name: "absent", value: "z", start: disklist.Unset, stop: disklist.Unset, wantErr: disklist.ErrNotFound},
		{name: "start past end", value: "a", start: 10, stop: disklist.Unset, wantErr: disklist.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.IndexRange(tt.value, tt.start, tt.stop)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	i, err := l.Index("c")
	require.NoError(t, err)
	assert.Equal(t, 3, i)

	n, err := l.Count("a")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = l.Count("z")
	require.NoError(t, err)
	assert.Zero(t, n)

	ok, err := l.Contains("bb")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Contains("bbb")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestList_SearchFunc(t *testing.T) {
	l := newList(t, []string{"apple", "kiwi", "avocado", "fig"})

	startsWithA := func(s string) bool { return s[0] == 'a' }

	i, err := l.IndexFunc(func(s string) bool { return len(s) == 3 })
	require.NoError(t, err)
	assert.Equal(t, 3, i)

	_, err = l.IndexFunc(func(s string) bool { return s == "" })
	assert.ErrorIs(t, err, disklist.ErrNotFound)

	n, err := l.CountFunc(startsWithA)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestList_SearchMatchesStructs(t *testing.T) {
	type pair struct {
		Key   string
		Value []int
	}

	l, err := disklist.New(codec.NewGob[pair](), disklist.WithBackend(disklist.BackendMemory))
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Extend(
		pair{Key: "a", Value: []int{1}},
		pair{Key: "b", Value: nil},
		pair{Key: "b", Value: []int{}},
	))

	// An empty slice decodes the same way nil does.
	n, err := l.Count(pair{Key: "b", Value: []int{}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	i, err := l.Index(pair{Key: "a", Value: []int{1}})
	require.NoError(t, err)
	assert.Zero(t, i)
}

func TestList_Scenarios(t *testing.T) {
	t.Run("insert shifts", func(t *testing.T) {
		l := newList(t, digits(4))
		require.NoError(t, l.Insert(1, "10"))

		assert.Equal(t, 5, l.Len())
		got, err := l.Get(1)
		require.NoError(t, err)
		assert.Equal(t, "10", got)
		got, err = l.Get(2)
		require.NoError(t, err)
		assert.Equal(t, "1", got)
	})

	t.Run("remove first match only", func(t *testing.T) {
		l := newList(t, []string{"0", "1", "2", "3", "0"})
		require.NoError(t, l.Remove("0"))
		assert.Equal(t, []string{"1", "2", "3", "0"}, values(t, l))

		assert.ErrorIs(t, l.Remove("9"), disklist.ErrNotFound)
	})

	t.Run("pop last", func(t *testing.T) {
		l := newList(t, digits(4))
		got, err := l.Pop()
		require.NoError(t, err)
		assert.Equal(t, "3", got)
		assert.Equal(t, []string{"0", "1", "2"}, values(t, l))
	})

	t.Run("bounded index miss", func(t *testing.T) {
		l := newList(t, digits(4))
		_, err := l.IndexRange("2", 0, 1)
		assert.ErrorIs(t, err, disklist.ErrNotFound)
	})
}

func TestList_PopAt(t *testing.T) {
	l := newList(t, digits(4))

	got, err := l.PopAt(1)
	require.NoError(t, err)
	assert.Equal(t, "1", got)
	assert.Equal(t, []string{"0", "2", "3"}, values(t, l))

	_, err = l.PopAt(10)
	assert.ErrorIs(t, err, disklist.ErrOutOfRange)

	empty := newList(t, nil)
	_, err = empty.Pop()
	assert.ErrorIs(t, err, disklist.ErrOutOfRange)
}

func TestList_Concat(t *testing.T) {
	left := newList(t, []string{"1", "2"})
	right := newList(t, []string{"3", "4"})
	require.NoError(t, right.Set(0, "three"))

	got, err := left.Concat(right)
	require.NoError(t, err)
	assert.Same(t, left, got)

	assert.Equal(t, []string{"1", "2", "three", "4"}, values(t, left))
	assert.Equal(t, []string{"three", "4"}, values(t, right), "the other list is left intact")

	// Further writes land after the copied bytes.
	require.NoError(t, left.Append("5"))
	assert.Equal(t, []string{"1", "2", "three", "4", "5"}, values(t, left))
}

func TestList_ConcatAcrossBackends(t *testing.T) {
	left := newList(t, []string{"a"}, disklist.WithBackend(disklist.BackendPebble))
	right := newList(t, []string{"b", "c"}, disklist.WithBackend(disklist.BackendFile))

	_, err := left.Concat(right)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, values(t, left))
}

func TestList_ConcatSelf(t *testing.T) {
	l := newList(t, []string{"x", "y"})

	_, err := l.Concat(l)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "x", "y"}, values(t, l))
}

func TestList_Compact(t *testing.T) {
	l := newList(t, digits(10))
	for i := range 10 {
		require.NoError(t, l.Set(i, "v"+strconv.Itoa(i)))
	}
	require.NoError(t, l.Insert(0, "head"))
	require.NoError(t, l.Delete(5))
	want := values(t, l)

	before := l.Stats()
	require.Positive(t, before.OrphanedBytes)

	require.NoError(t, l.Compact())

	after := l.Stats()
	assert.Equal(t, want, values(t, l))
	assert.Zero(t, after.OrphanedBytes)
	assert.Equal(t, before.LiveBytes, after.StoreBytes)
	assert.Equal(t, int64(1), after.Compactions)
	assert.Equal(t, before.StoreBytes-after.StoreBytes, after.ReclaimedBytes)

	require.NoError(t, l.Append("tail"))
	got, err := l.Get(-1)
	require.NoError(t, err)
	assert.Equal(t, "tail", got)
}

func TestList_CompactOpenFailure(t *testing.T) {
	errOpen := errors.New("no space left")
	opened := 0
	open := func() (store.Store, error) {
		opened++
		if opened > 1 {
			return nil, errOpen
		}
		return memory.New(), nil
	}

	l := newList(t, digits(3), disklist.WithStore(open))
	require.NoError(t, l.Set(0, "x"))

	err := l.Compact()
	assert.ErrorIs(t, err, disklist.ErrIO)
	assert.ErrorIs(t, err, errOpen)
	assert.Equal(t, []string{"x", "1", "2"}, values(t, l))
}

func TestList_CorruptRecord(t *testing.T) {
	backing := &corruptibleStore{Store: memory.New()}
	opened := false
	open := func() (store.Store, error) {
		if opened {
			return memory.New(), nil
		}
		opened = true
		return backing, nil
	}
	var logs bytes.Buffer
	l := newList(t, digits(3), disklist.WithStore(open), disklist.WithLogger(zerolog.New(&logs)))

	backing.flip(int(l.Stats().StoreBytes) - 1)

	_, err := l.Get(2)
	assert.ErrorIs(t, err, disklist.ErrCorruptRecord)
	assert.Contains(t, logs.String(), `"level":"error"`)
	assert.Contains(t, logs.String(), `"event_type":"corrupt_record"`)

	_, err = l.Slice(disklist.Unset, disklist.Unset, 1)
	assert.ErrorIs(t, err, disklist.ErrCorruptRecord)

	got, err := l.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "0", got)

	var seen []string
	var iterErr error
	for v, err := range l.All() {
		if err != nil {
			iterErr = err
			break
		}
		seen = append(seen, v)
	}
	assert.Equal(t, []string{"0", "1"}, seen)
	assert.ErrorIs(t, iterErr, disklist.ErrCorruptRecord)

	assert.ErrorIs(t, l.Compact(), disklist.ErrCorruptRecord)
	assert.Equal(t, 3, l.Len(), "a failed compaction keeps the list as it was")
	got, err = l.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestList_Closed(t *testing.T) {
	l, err := disklist.New(codec.NewGob[string](), disklist.WithDir(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, l.Append("a"))

	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "closing twice is a no-op")

	_, err = l.Get(0)
	assert.ErrorIs(t, err, disklist.ErrClosed)
	_, err = l.Slice(0, 1, 1)
	assert.ErrorIs(t, err, disklist.ErrClosed)
	assert.ErrorIs(t, l.Set(0, "b"), disklist.ErrClosed)
	assert.ErrorIs(t, l.Append("b"), disklist.ErrClosed)
	assert.ErrorIs(t, l.Insert(0, "b"), disklist.ErrClosed)
	assert.ErrorIs(t, l.Delete(0), disklist.ErrClosed)
	assert.ErrorIs(t, l.Remove("a"), disklist.ErrClosed)
	assert.ErrorIs(t, l.Clear(), disklist.ErrClosed)
	assert.ErrorIs(t, l.Compact(), disklist.ErrClosed)
	_, err = l.Index("a")
	assert.ErrorIs(t, err, disklist.ErrClosed)
	_, err = l.Count("a")
	assert.ErrorIs(t, err, disklist.ErrClosed)
	_, err = l.Pop()
	assert.ErrorIs(t, err, disklist.ErrClosed)

	other := newList(t, []string{"x"})
	_, err = other.Concat(l)
	assert.ErrorIs(t, err, disklist.ErrClosed)

	it := l.Iter()
	assert.False(t, it.Next())
	assert.ErrorIs(t, it.Err(), disklist.ErrClosed)
}

// closeFailStore is a memory store whose Close always fails.
type closeFailStore struct {
	*memory.Store
	err error
}

func (c closeFailStore) Close() error {
	return errors.Join(c.Store.Close(), c.err)
}

func TestList_CloseFailure(t *testing.T) {
	errStuck := errors.New("stuck")
	var logs bytes.Buffer
	l, err := disklist.New(codec.NewGob[string](),
		disklist.WithLogger(zerolog.New(&logs)),
		disklist.WithStore(func() (store.Store, error) {
			return closeFailStore{Store: memory.New(), err: errStuck}, nil
		}),
	)
	require.NoError(t, err)

	err = l.Close()
	assert.ErrorIs(t, err, disklist.ErrIO)
	assert.ErrorIs(t, err, errStuck)
	assert.Contains(t, logs.String(), `"event_type":"close"`)
	assert.Contains(t, logs.String(), `"error":"backing store failure: close store: stuck"`)

	assert.NoError(t, l.Close(), "a failed close still marks the list closed")
}

func TestList_ConcatNil(t *testing.T) {
	l := newList(t, []string{"a"})

	got, err := l.Concat(nil)
	assert.ErrorIs(t, err, disklist.ErrNilList)
	assert.Same(t, l, got)
	assert.Equal(t, []string{"a"}, values(t, l))
}

func TestNew_Errors(t *testing.T) {
	_, err := disklist.New[string](nil)
	assert.ErrorIs(t, err, disklist.ErrNoCodec)

	_, err = disklist.New(codec.NewGob[string](), disklist.WithBackend("tape"))
	assert.ErrorIs(t, err, disklist.ErrUnknownBackend)

	errOpen := errors.New("denied")
	_, err = disklist.New(codec.NewGob[string](), disklist.WithStore(func() (store.Store, error) {
		return nil, errOpen
	}))
	assert.ErrorIs(t, err, disklist.ErrIO)
	assert.ErrorIs(t, err, errOpen)
}

func TestList_Extend(t *testing.T) {
	l := newList(t, []string{"a"})

	require.NoError(t, l.ExtendSeq(slices.Values([]string{"b", "c"})))
	assert.Equal(t, []string{"a", "b", "c"}, values(t, l))
	assert.Equal(t, int64(3), l.Stats().Writes)
}

func TestList_IDs(t *testing.T) {
	a := newList(t, nil)
	b := newList(t, nil)

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, a.ID(), a.Stats().ID)
}

// corruptibleStore lets tests damage bytes already written.
type corruptibleStore struct {
	*memory.Store
	flipped map[int64]bool
}

func (c *corruptibleStore) flip(off int) {
	if c.flipped == nil {
		c.flipped = make(map[int64]bool)
	}
	c.flipped[int64(off)] = true
}

func (c *corruptibleStore) ReadAt(p []byte, off int64) (int, error) {
	n, err := c.Store.ReadAt(p, off)
	for i := range p[:n] {
		if c.flipped[off+int64(i)] {
			p[i] ^= 0xFF
		}
	}
	return n, err
}
