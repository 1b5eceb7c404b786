package indexer

import "github.com/haxorof/gitpack/plumbing"

type entryKind int8

const (
	entryObject entryKind = iota
	entryDelta
)

// entry is the indexer's per-object bookkeeping record (spec.md §3).
// Non-delta entries have id/crc32 filled in at parse time; delta
// entries have finalKind/id filled in only once resolved.
type entry struct {
	kind         entryKind
	offset       uint64
	headerLen    uint16
	inflatedSize uint64
	crc32        uint32

	id      plumbing.OID
	idKnown bool

	// declaredKind is the entry's on-wire type: a concrete object kind
	// for non-delta entries, OFSDeltaObject/REFDeltaObject for deltas.
	declaredKind plumbing.ObjectType
	// finalKind and resolvedData are filled in once the entry's
	// content is known: immediately for non-delta entries, only after
	// delta resolution for ofs/ref-delta entries.
	finalKind    plumbing.ObjectType
	resolvedData []byte

	hasRefBase   bool
	refBase      plumbing.OID
	basePosition uint64 // ofs-delta only: absolute base offset
	resolved     bool
}
