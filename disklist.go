package disklist

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"reflect"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Belval/disklist/codec"
	"github.com/Belval/disklist/compactor"
	"github.com/Belval/disklist/index"
	"github.com/Belval/disklist/monitoring"
	"github.com/Belval/disklist/records"
	"github.com/Belval/disklist/store"
)

// Unset marks an open bound in Slice and IndexRange.
const Unset = index.Unset

// List is a sequence of T stored outside memory.
type List[T any] struct {
	id        string
	records   *records.Store[T]
	open      store.Opener
	cacheSize int

	// generation changes on every mutation so iterators can drop stale
	// windows.
	generation uint64
	closed     bool
	closers    []io.Closer

	log   monitoring.Logger
	stats *monitoring.Stats
}

// Stats describes a list's storage and activity.
type Stats struct {
	ID             string
	Len            int
	StoreBytes     int64
	LiveBytes      int64
	OrphanedBytes  int64
	Writes         int64
	Reads          int64
	CacheHits      int64
	CacheRefreshes int64
	Compactions    int64
	ReclaimedBytes int64
}

// New creates an empty list that encodes elements with c.
func New[T any](c codec.Codec[T], opts ...Option) (*List[T], error) {
	// Apply default options
	o := defaultOptions()

	// Apply user options
	for _, opt := range opts {
		opt(&o)
	}

	l, err := newList(c, o)
	if err != nil {
		return nil, errors.Join(err, closeAll(o.closers))
	}
	return l, nil
}

func newList[T any](c codec.Codec[T], o options) (*List[T], error) {
	if c == nil {
		return nil, ErrNoCodec
	}

	open, err := o.storeOpener()
	if err != nil {
		return nil, err
	}

	backing, err := open()
	if err != nil {
		return nil, fmt.Errorf("%w: open store: %w", ErrIO, err)
	}

	registry := o.registry
	if registry == nil {
		registry = monitoring.NewRegistry()
	}

	id := uuid.NewString()
	l := &List[T]{
		id:        id,
		records:   records.New(backing, c),
		open:      open,
		cacheSize: o.cacheSize,
		closers:   o.closers,
		log:       monitoring.NewLogger(o.logger, "disklist").With("list", id),
		stats:     monitoring.NewStats(registry),
	}

	l.log.Log(zerolog.DebugLevel, monitoring.EventOpen, "list opened", map[string]interface{}{
		"backend":    o.backend,
		"cache_size": o.cacheSize,
	})
	return l, nil
}

// ID returns the identifier the list logs under.
func (l *List[T]) ID() string {
	return l.id
}

// Len returns the number of elements.
func (l *List[T]) Len() int {
	return l.records.Len()
}

// Get returns the element at i. Negative positions count from the end.
func (l *List[T]) Get(i int) (T, error) {
	if l.closed {
		var zero T
		return zero, ErrClosed
	}

	v, err := l.records.Get(i)
	if err != nil {
		return v, l.fail(err)
	}
	l.stats.RecordReads(1)
	return v, nil
}

// Slice returns the elements from start up to stop, stepping by step. Pass
// Unset for an open bound.
func (l *List[T]) Slice(start, stop, step int) ([]T, error) {
	return l.SliceOf(index.Slice{Start: start, Stop: stop, Step: step})
}

// SliceOf returns the elements s selects.
func (l *List[T]) SliceOf(s index.Slice) ([]T, error) {
	if l.closed {
		return nil, ErrClosed
	}

	vs, err := l.records.GetRange(s)
	if err != nil {
		return nil, l.fail(err)
	}
	l.stats.RecordReads(len(vs))
	return vs, nil
}

// Set replaces the element at i.
func (l *List[T]) Set(i int, v T) error {
	if l.closed {
		return ErrClosed
	}

	if err := l.records.Set(i, v); err != nil {
		return l.fail(err)
	}
	l.wrote()
	return nil
}

// Delete removes the element at i.
func (l *List[T]) Delete(i int) error {
	if l.closed {
		return ErrClosed
	}

	if err := l.records.Delete(i); err != nil {
		return err
	}
	l.generation++
	return nil
}

// Append adds v at the end of the list.
func (l *List[T]) Append(v T) error {
	if l.closed {
		return ErrClosed
	}

	if err := l.records.Append(v); err != nil {
		return l.fail(err)
	}
	l.wrote()
	return nil
}

// Insert places v before position i. Positions past either end are clamped,
// so Insert never fails with ErrOutOfRange.
func (l *List[T]) Insert(i int, v T) error {
	if l.closed {
		return ErrClosed
	}

	n := l.records.Len()
	switch {
	case i < 0:
		i = max(i+n, 0)
	case i > n:
		i = n
	}

	if err := l.records.Insert(i, v); err != nil {
		return l.fail(err)
	}
	l.wrote()
	return nil
}

// Extend appends every value in order.
func (l *List[T]) Extend(vs ...T) error {
	for _, v := range vs {
		if err := l.Append(v); err != nil {
			return err
		}
	}
	return nil
}

// ExtendSeq appends every value seq yields.
func (l *List[T]) ExtendSeq(seq iter.Seq[T]) error {
	for v := range seq {
		if err := l.Append(v); err != nil {
			return err
		}
	}
	return nil
}

// Index returns the position of the first element equal to v.
func (l *List[T]) Index(v T) (int, error) {
	return l.IndexRange(v, Unset, Unset)
}

// IndexRange returns the position of the first element equal to v within
// [start, stop). Negative bounds count from the end and both are clamped to
// the list.
func (l *List[T]) IndexRange(v T, start, stop int) (int, error) {
	if l.closed {
		return 0, ErrClosed
	}

	m, err := l.matcher(v)
	if err != nil {
		return 0, err
	}
	return l.find(start, stop, m)
}

// IndexFunc returns the position of the first element f reports true for.
func (l *List[T]) IndexFunc(f func(T) bool) (int, error) {
	if l.closed {
		return 0, ErrClosed
	}
	return l.find(Unset, Unset, l.predicate(f))
}

// Contains reports whether an element equal to v is present.
func (l *List[T]) Contains(v T) (bool, error) {
	_, err := l.Index(v)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Remove deletes the first element equal to v.
func (l *List[T]) Remove(v T) error {
	i, err := l.Index(v)
	if err != nil {
		return err
	}
	return l.Delete(i)
}

// Pop removes and returns the last element.
func (l *List[T]) Pop() (T, error) {
	return l.PopAt(-1)
}

// PopAt removes and returns the element at i.
func (l *List[T]) PopAt(i int) (T, error) {
	v, err := l.Get(i)
	if err != nil {
		return v, err
	}
	if err := l.Delete(i); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Count returns the number of elements equal to v.
func (l *List[T]) Count(v T) (int, error) {
	if l.closed {
		return 0, ErrClosed
	}

	m, err := l.matcher(v)
	if err != nil {
		return 0, err
	}
	return l.count(m)
}

// CountFunc returns the number of elements f reports true for.
func (l *List[T]) CountFunc(f func(T) bool) (int, error) {
	if l.closed {
		return 0, ErrClosed
	}
	return l.count(l.predicate(f))
}

// Clear removes every element and releases the backing store's contents.
func (l *List[T]) Clear() error {
	if l.closed {
		return ErrClosed
	}

	l.generation++
	if err := l.records.Clear(); err != nil {
		return err
	}
	l.log.Log(zerolog.DebugLevel, monitoring.EventClear, "list cleared", nil)
	return nil
}

// Concat appends every element of other to l and returns l. other is left
// unchanged and may be l itself. Both lists must use compatible codecs.
func (l *List[T]) Concat(other *List[T]) (*List[T], error) {
	if other == nil {
		return l, ErrNilList
	}
	if l.closed || other.closed {
		return l, ErrClosed
	}

	n := other.Len()
	l.generation++
	if err := l.records.Concat(other.records); err != nil {
		return l, err
	}

	l.log.Log(zerolog.DebugLevel, monitoring.EventConcat, "list concatenated", map[string]interface{}{
		"other":    other.id,
		"elements": n,
	})
	return l, nil
}

// Iter returns an iterator positioned before the first element.
func (l *List[T]) Iter() *Iterator[T] {
	return newIterator(l)
}

// All returns a sequence over the list's elements. A read failure is
// yielded once with the zero value and ends the sequence.
func (l *List[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		it := l.Iter()
		for it.Next() {
			if !yield(it.Value(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// Compact copies the live elements into a fresh backing store and releases
// the old one. Element order and values are unchanged.
func (l *List[T]) Compact() error {
	if l.closed {
		return ErrClosed
	}

	before := l.records.Size()

	dst, err := l.open()
	if err != nil {
		return fmt.Errorf("%w: open store: %w", ErrIO, err)
	}

	table, err := compactor.Compact(dst, l.records.Backing(), l.records.Records())
	if err != nil {
		return errors.Join(l.fail(err), closeStore(dst))
	}

	l.generation++
	old := l.records.Swap(dst, table)

	reclaimed := before - dst.Size()
	l.stats.RecordCompaction(reclaimed)
	l.log.Log(zerolog.DebugLevel, monitoring.EventCompact, "list compacted", map[string]interface{}{
		"reclaimed": reclaimed,
		"size":      dst.Size(),
	})

	return closeStore(old)
}

// Stats reports the list's storage and activity.
func (l *List[T]) Stats() Stats {
	size, live := l.records.Size(), l.records.LiveBytes()
	l.stats.SetSizes(size, live)

	return Stats{
		ID:             l.id,
		Len:            l.records.Len(),
		StoreBytes:     size,
		LiveBytes:      live,
		OrphanedBytes:  size - live,
		Writes:         l.stats.Count(monitoring.MetricWrites),
		Reads:          l.stats.Count(monitoring.MetricReads),
		CacheHits:      l.stats.Count(monitoring.MetricCacheHits),
		CacheRefreshes: l.stats.Count(monitoring.MetricCacheRefreshes),
		Compactions:    l.stats.Count(monitoring.MetricCompactions),
		ReclaimedBytes: l.stats.Count(monitoring.MetricReclaimedBytes),
	}
}

// Close releases the backing store. Closing a closed list is a no-op.
func (l *List[T]) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.generation++

	err := errors.Join(closeStore(l.records.Backing()), closeAll(l.closers))
	if err != nil {
		l.log.Error(monitoring.EventClose, "close failed", err)
		return err
	}
	l.log.Log(zerolog.DebugLevel, monitoring.EventClose, "list closed", nil)
	return nil
}

// matcher returns a test for elements equal to v. Elements whose stored
// length differs from v's encoded length are rejected without decoding.
func (l *List[T]) matcher(v T) (func(int) (bool, error), error) {
	probe, want, err := l.records.RoundTrip(v)
	if err != nil {
		return nil, err
	}

	return func(i int) (bool, error) {
		n, err := l.records.Length(i)
		if err != nil || n != want {
			return false, err
		}
		got, err := l.Get(i)
		if err != nil {
			return false, err
		}
		return reflect.DeepEqual(got, probe), nil
	}, nil
}

func (l *List[T]) predicate(f func(T) bool) func(int) (bool, error) {
	return func(i int) (bool, error) {
		got, err := l.Get(i)
		if err != nil {
			return false, err
		}
		return f(got), nil
	}
}

func (l *List[T]) find(start, stop int, match func(int) (bool, error)) (int, error) {
	lo, hi, _, _, _ := index.Slice{Start: start, Stop: stop, Step: 1}.Indices(l.Len())
	for i := lo; i < hi; i++ {
		ok, err := match(i)
		if err != nil {
			return 0, err
		}
		if ok {
			return i, nil
		}
	}
	return 0, ErrNotFound
}

func (l *List[T]) count(match func(int) (bool, error)) (int, error) {
	var n int
	for i := range l.Len() {
		ok, err := match(i)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (l *List[T]) wrote() {
	l.generation++
	l.stats.RecordWrite()
}

// fail logs corrupt reads and returns err unchanged.
func (l *List[T]) fail(err error) error {
	if errors.Is(err, ErrCorruptRecord) {
		l.log.Error(monitoring.EventCorrupt, "corrupt record", err)
	}
	return err
}

func closeStore(s store.Store) error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("%w: close store: %w", ErrIO, err)
	}
	return nil
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
