package disklist

import (
	"github.com/Belval/disklist/index"
)

type iteratorState int

const (
	stateFresh iteratorState = iota
	stateWindowed
	stateExhausted
)

// Iterator walks a list front to back. With a cache size configured it reads
// the store one window of elements at a time and serves the following steps
// from memory; otherwise every step reads a single element.
//
// Mutating the list while iterating is allowed. The iterator notices the
// change before its next step, drops its window and continues from its
// current position against the list as it is now.
type Iterator[T any] struct {
	list  *List[T]
	state iteratorState
	pos   int

	// window holds the decoded elements at positions [start, end).
	window     []T
	start, end int
	generation uint64

	value T
	err   error
}

func newIterator[T any](l *List[T]) *Iterator[T] {
	return &Iterator[T]{
		list:       l,
		generation: l.generation,
	}
}

// Next advances to the next element and reports whether there is one.
func (it *Iterator[T]) Next() bool {
	if it.state == stateExhausted {
		return false
	}

	l := it.list
	if l.closed {
		return it.stop(ErrClosed)
	}
	if it.generation != l.generation {
		it.dropWindow()
		it.generation = l.generation
	}
	if it.pos >= l.Len() {
		return it.stop(nil)
	}

	switch {
	case it.state == stateWindowed && it.start <= it.pos && it.pos < it.end:
		l.stats.RecordCacheHit()
	case l.cacheSize > 0:
		if err := it.refresh(); err != nil {
			return it.stop(err)
		}
	default:
		v, err := l.records.Get(it.pos)
		if err != nil {
			return it.stop(l.fail(err))
		}
		l.stats.RecordReads(1)
		it.value = v
		it.pos++
		return true
	}

	it.value = it.window[it.pos-it.start]
	it.pos++
	return true
}

// Value returns the element the last successful Next moved to.
func (it *Iterator[T]) Value() T {
	return it.value
}

// Err returns the error that ended iteration, if any.
func (it *Iterator[T]) Err() error {
	return it.err
}

// Reset rewinds the iterator to the first element and drops its window.
func (it *Iterator[T]) Reset() {
	var zero T
	it.state = stateFresh
	it.pos = 0
	it.value = zero
	it.err = nil
	it.window = nil
	it.start, it.end = 0, 0
	it.generation = it.list.generation
}

// refresh reads the window starting at the current position.
func (it *Iterator[T]) refresh() error {
	l := it.list
	size := min(l.cacheSize, l.Len()-it.pos)

	vs, err := l.records.GetRange(index.Slice{Start: it.pos, Stop: it.pos + size, Step: 1})
	if err != nil {
		return l.fail(err)
	}
	l.stats.RecordReads(len(vs))
	l.stats.RecordCacheRefresh()

	it.window = vs
	it.start, it.end = it.pos, it.pos+len(vs)
	it.state = stateWindowed
	return nil
}

func (it *Iterator[T]) dropWindow() {
	it.window = nil
	it.start, it.end = 0, 0
	if it.state == stateWindowed {
		it.state = stateFresh
	}
}

func (it *Iterator[T]) stop(err error) bool {
	var zero T
	it.state = stateExhausted
	it.err = err
	it.value = zero
	it.window = nil
	return false
}
