// Package compactor rewrites a disklist backing store so that it holds only
// the frames its offset table still references.
//
// Set and Delete never touch the backing store: they append or drop table
// entries and leave the superseded frames behind. Over time the store grows
// well past the bytes the list actually needs. Compaction walks the live
// records in offset order, verifies each frame, copies it into a fresh store
// and hands back a table pointing at the copies.
//
// Properties of the result:
//   - Element order is the order of the input records, not the order frames
//     appear in the source store
//   - Every live frame is copied exactly once, since no two records share
//     an offset
//   - The destination holds exactly the live bytes of the source
//
// Basic usage:
//
//	dst, err := openStore()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	table, err := compactor.Compact(dst, src.Backing(), src.Records())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	old := src.Swap(dst, table)
//	old.Close()
//
// Reading the source in offset order keeps file and pebble backed stores on
// a sequential access path, since frames are laid out in the order they were
// written.
package compactor
