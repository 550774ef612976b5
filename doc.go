// Package disklist provides List, a list whose elements live in an
// ephemeral backing store instead of memory.
//
// Each element is encoded with a codec.Codec, framed and appended to the
// backing store. The list itself only keeps an offset table with one small
// record per element, so a list can hold far more data than fits in memory
// while still supporting indexing, slicing, insertion, deletion, search,
// concatenation and iteration.
//
// Writes never modify bytes already in the store. Set, Delete and the other
// mutations append new frames or drop table entries, leaving the superseded
// bytes behind as orphaned space. Clear releases everything; Compact copies
// the live elements into a fresh store.
//
// Basic usage:
//
//	l, err := disklist.New(codec.NewGob[string]())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Close()
//
//	for _, s := range []string{"a", "b", "c"} {
//	    if err := l.Append(s); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
//	for v, err := range l.All() {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(v)
//	}
//
// Iteration can read the store in windows of several elements at a time,
// see WithCacheSize. A List is not safe for concurrent use and its contents
// do not survive Close or the end of the process.
package disklist
