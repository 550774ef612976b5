// Package index implements the in-memory offset table of a disklist: one
// (offset, length) record per element, in element order. Position in the
// table is the element's logical index; the backing store only ever sees
// appends, so every structural change to the list is a change to this table.
//
// Appending and replacing are O(1). Inserting and removing shift the tail of
// the table and are O(n). A replaced or removed record's bytes stay in the
// backing store as orphaned space; the table keeps a running total of live
// frame bytes so callers can tell how much of the store is still reachable.
package index

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Belval/disklist/recordio"
)

// ErrOutOfRange is returned for positions outside the table and for slices
// with a zero step.
var ErrOutOfRange = errors.New("index out of range")

// Record locates one encoded element in the backing store.
type Record struct {
	// Offset is where the element's frame starts.
	Offset int64
	// Length is the encoded payload length, excluding the frame header.
	Length int64
}

// FrameSize returns the number of store bytes the record's frame occupies.
func (r Record) FrameSize() int64 {
	return recordio.Size(r.Length)
}

// Table is the ordered sequence of records.
type Table struct {
	records []Record
	live    int64
}

func New() *Table {
	return &Table{}
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// LiveBytes returns the total frame size of every record in the table.
func (t *Table) LiveBytes() int64 {
	return t.live
}

// Normalize maps pos onto [0, Len()), counting negative positions from
// the end.
func (t *Table) Normalize(pos int) (int, error) {
	n := len(t.records)
	if pos < 0 {
		pos += n
	}
	if pos < 0 || pos >= n {
		return 0, fmt.Errorf("%w: position %d, length %d", ErrOutOfRange, pos, n)
	}
	return pos, nil
}

// Get returns the record at pos.
func (t *Table) Get(pos int) (Record, error) {
	i, err := t.Normalize(pos)
	if err != nil {
		return Record{}, err
	}
	return t.records[i], nil
}

// Append adds r at the end of the table.
func (t *Table) Append(r Record) {
	t.records = append(t.records, r)
	t.live += r.FrameSize()
}

// InsertPosition resolves pos as an insert position, which must lie in
// [0, Len()] once negative positions are counted from the end.
func (t *Table) InsertPosition(pos int) (int, error) {
	n := len(t.records)
	if pos < 0 {
		pos += n
	}
	if pos < 0 || pos > n {
		return 0, fmt.Errorf("%w: insert at %d, length %d", ErrOutOfRange, pos, n)
	}
	return pos, nil
}

// Insert places r at pos and shifts every later record one slot back.
func (t *Table) Insert(pos int, r Record) error {
	pos, err := t.InsertPosition(pos)
	if err != nil {
		return err
	}

	t.records = slices.Insert(t.records, pos, r)
	t.live += r.FrameSize()
	return nil
}

// Replace overwrites the record at pos and returns the superseded record.
func (t *Table) Replace(pos int, r Record) (Record, error) {
	i, err := t.Normalize(pos)
	if err != nil {
		return Record{}, err
	}

	old := t.records[i]
	t.records[i] = r
	t.live += r.FrameSize() - old.FrameSize()
	return old, nil
}

// Remove deletes the record at pos, shifting every later record one slot
// forward, and returns it.
func (t *Table) Remove(pos int) (Record, error) {
	i, err := t.Normalize(pos)
	if err != nil {
		return Record{}, err
	}

	old := t.records[i]
	t.records = slices.Delete(t.records, i, i+1)
	t.live -= old.FrameSize()
	return old, nil
}

// Range returns the records selected by s, in selection order.
func (t *Table) Range(s Slice) ([]Record, error) {
	start, _, step, count, err := s.Indices(len(t.records))
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, count)
	for i, pos := 0, start; i < count; i, pos = i+1, pos+step {
		out = append(out, t.records[pos])
	}
	return out, nil
}

// Records returns a copy of every record in order.
func (t *Table) Records() []Record {
	return slices.Clone(t.records)
}

// AppendShifted appends records whose offsets are moved by delta, as
// needed when their bytes were copied into this table's store at delta.
func (t *Table) AppendShifted(records []Record, delta int64) {
	t.records = slices.Grow(t.records, len(records))
	for _, r := range records {
		r.Offset += delta
		t.Append(r)
	}
}

// Reset drops every record.
func (t *Table) Reset() {
	t.records = nil
	t.live = 0
}
