package compactor

import (
	"fmt"

	"github.com/google/btree"

	"github.com/Belval/disklist/index"
	"github.com/Belval/disklist/recordio"
	"github.com/Belval/disklist/records"
	"github.com/Belval/disklist/store"
)

// frame is a live record and the list position that references it.
type frame struct {
	rec index.Record
	pos int
}

func byOffset(a, b *frame) bool {
	return a.rec.Offset < b.rec.Offset
}

// Compact copies the frames referenced by recs from src into dst in offset
// order and returns a table addressing the copies. Every frame is verified
// before it is written. Orphaned frames are never read. Two records at the
// same offset mean a damaged table and fail with ErrCorruptRecord before
// anything is copied.
func Compact(dst, src store.Store, recs []index.Record) (*index.Table, error) {
	frames := btree.NewG[*frame](2, byOffset)

	for pos, r := range recs {
		if _, dup := frames.ReplaceOrInsert(&frame{rec: r, pos: pos}); dup {
			return nil, fmt.Errorf("%w: records share offset %d", records.ErrCorruptRecord, r.Offset)
		}
	}

	var (
		placed = make([]index.Record, len(recs))
		buf    []byte
		err    error
	)

	frames.Ascend(func(f *frame) bool {
		var payload []byte
		payload, err = records.ReadFrame(src, f.rec)
		if err != nil {
			return false
		}

		buf = recordio.Append(buf[:0], payload)
		var off int64
		off, err = dst.Append(buf)
		if err != nil {
			err = fmt.Errorf("%w: compact: %w", records.ErrIO, err)
			return false
		}

		placed[f.pos] = index.Record{Offset: off, Length: f.rec.Length}
		return true
	})
	if err != nil {
		return nil, err
	}

	table := index.New()
	for _, r := range placed {
		table.Append(r)
	}
	return table, nil
}
