// Package idx implements the in-memory model and v2 on-disk encoding
// of a packfile index (spec.md §6.2), part of C8's output.
package idx

import (
	"sort"

	"github.com/haxorof/gitpack/plumbing"
	"github.com/haxorof/gitpack/plumbing/hash"
)

// Magic is the 4-byte v2 index signature.
var Magic = [4]byte{0xff, 't', 'O', 'c'}

// Version is the only on-disk index version this module writes.
const Version = 2

// extOffsetBit marks a 31-bit offset slot as an index into the
// ext_offsets table rather than a raw offset.
const extOffsetBit = 1 << 31

// largeOffsetThreshold is the smallest pack offset that can no longer
// fit in 31 bits and must go through ext_offsets.
const largeOffsetThreshold = 1 << 31

// Entry is one object's index record.
type Entry struct {
	ID     plumbing.OID
	Offset uint64
	CRC32  uint32
}

// Index is the in-memory model built up by an indexer before
// encoding. Entries are accepted in any order and sorted by OID at
// Encode time.
type Index struct {
	Algorithm hash.Algorithm
	Entries   []Entry
}

// New returns an empty index for the given hash algorithm.
func New(algo hash.Algorithm) *Index {
	return &Index{Algorithm: algo}
}

// Add records one object's index entry.
func (idx *Index) Add(id plumbing.OID, offset uint64, crc32 uint32) {
	idx.Entries = append(idx.Entries, Entry{ID: id, Offset: offset, CRC32: crc32})
}

// Len reports the number of entries, including injected thin-pack
// bases (spec.md §6.2: "N is the total number of objects in the
// pack, including thin-bases").
func (idx *Index) Len() int { return len(idx.Entries) }

// Sorted returns the entries in ascending OID order, the order the
// on-disk format requires.
func (idx *Index) Sorted() []Entry {
	out := append([]Entry(nil), idx.Entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Less(out[j].ID) })
	return out
}
