package packfile

import "github.com/haxorof/gitpack/plumbing"

// Callbacks is the push consumer interface the parser drives
// (spec.md §6.4). Every field returns 0 to continue or a non-zero
// abort code to stop the parse; a nil field is treated as always
// returning 0. Fields mirror libgit2's git_packfile_parser_options
// one for one.
type Callbacks struct {
	// PackfileHeader is invoked once, after the 12-byte preamble.
	PackfileHeader func(version, entryCount uint32) int

	// ObjectStart is invoked when a non-delta entry's header has been
	// fully read.
	ObjectStart func(position uint64, headerLen uint16, kind plumbing.ObjectType, size uint64) int
	// ObjectData may be invoked multiple times per entry as inflated
	// bytes become available.
	ObjectData func(buf []byte) int
	// ObjectComplete is invoked once the entry's deflated payload and
	// checksum have been fully consumed.
	ObjectComplete func(compressedSize uint64, crc32 uint32, oid plumbing.OID) int

	// DeltaStart is invoked when a delta entry's header (including its
	// ref/ofs base sub-header) has been fully read. baseOID is non-nil
	// for ref-delta; baseOffset is non-zero (the absolute base
	// position) for ofs-delta.
	DeltaStart func(position uint64, kind plumbing.ObjectType, headerLen uint16, size uint64, baseOID *plumbing.OID, baseOffset uint64) int
	// DeltaData may be invoked multiple times per entry as the raw
	// delta-instruction bytes become available.
	DeltaData func(buf []byte) int
	// DeltaComplete is invoked once the delta entry's deflated payload
	// and checksum have been fully consumed.
	DeltaComplete func(compressedSize uint64, crc32 uint32) int

	// PackfileComplete is invoked once the trailer has been verified.
	PackfileComplete func(trailer []byte) int
}

func (c *Callbacks) packfileHeader(version, entryCount uint32) int {
	if c == nil || c.PackfileHeader == nil {
		return 0
	}
	return c.PackfileHeader(version, entryCount)
}

func (c *Callbacks) objectStart(position uint64, headerLen uint16, kind plumbing.ObjectType, size uint64) int {
	if c == nil || c.ObjectStart == nil {
		return 0
	}
	return c.ObjectStart(position, headerLen, kind, size)
}

func (c *Callbacks) objectData(buf []byte) int {
	if c == nil || c.ObjectData == nil || len(buf) == 0 {
		return 0
	}
	return c.ObjectData(buf)
}

func (c *Callbacks) objectComplete(compressedSize uint64, crc32 uint32, oid plumbing.OID) int {
	if c == nil || c.ObjectComplete == nil {
		return 0
	}
	return c.ObjectComplete(compressedSize, crc32, oid)
}

func (c *Callbacks) deltaStart(position uint64, kind plumbing.ObjectType, headerLen uint16, size uint64, baseOID *plumbing.OID, baseOffset uint64) int {
	if c == nil || c.DeltaStart == nil {
		return 0
	}
	return c.DeltaStart(position, kind, headerLen, size, baseOID, baseOffset)
}

func (c *Callbacks) deltaData(buf []byte) int {
	if c == nil || c.DeltaData == nil || len(buf) == 0 {
		return 0
	}
	return c.DeltaData(buf)
}

func (c *Callbacks) deltaComplete(compressedSize uint64, crc32 uint32) int {
	if c == nil || c.DeltaComplete == nil {
		return 0
	}
	return c.DeltaComplete(compressedSize, crc32)
}

func (c *Callbacks) packfileComplete(trailer []byte) int {
	if c == nil || c.PackfileComplete == nil {
		return 0
	}
	return c.PackfileComplete(trailer)
}
