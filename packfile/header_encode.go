package packfile

import "github.com/haxorof/gitpack/plumbing"

// EncodeEntryHeader renders the variable-length entry-header varint
// for a non-delta object of the given kind and size (spec.md §6.1),
// the inverse of headerAccumulator. Used by the indexer to synthesize
// a thin-pack base entry (spec.md §4.5).
func EncodeEntryHeader(kind plumbing.ObjectType, size uint64) []byte {
	first := byte(kind&0x7) << 4
	rest := size >> 4
	first |= byte(size & 0x0f)
	if rest > 0 {
		first |= 0x80
	}
	out := []byte{first}
	for rest > 0 {
		b := byte(rest & 0x7f)
		rest >>= 7
		if rest > 0 {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

// EncodeOfsDeltaOffset renders the ofs-delta negative-offset varint
// (spec.md §6.1) for a base located offset bytes before the current
// entry, the inverse of ofsAccumulator.
func EncodeOfsDeltaOffset(offset uint64) []byte {
	var rev []byte
	rev = append(rev, byte(offset&0x7f))
	offset >>= 7
	for offset > 0 {
		offset--
		rev = append(rev, 0x80|byte(offset&0x7f))
		offset >>= 7
	}
	out := make([]byte, len(rev))
	for i, b := range rev {
		out[len(rev)-1-i] = b
	}
	return out
}

// EncodeOfsDeltaHeader renders a complete ofs-delta entry header: the
// entry-header varint (kind OFSDeltaObject, size the inflated delta
// stream length) followed by the negative base offset varint.
func EncodeOfsDeltaHeader(size uint64, baseOffset uint64) []byte {
	out := EncodeEntryHeader(plumbing.OFSDeltaObject, size)
	return append(out, EncodeOfsDeltaOffset(baseOffset)...)
}

// EncodeRefDeltaHeader renders a complete ref-delta entry header: the
// entry-header varint (kind REFDeltaObject, size the inflated delta
// stream length) followed by the base's raw digest bytes.
func EncodeRefDeltaHeader(size uint64, base plumbing.OID) []byte {
	out := EncodeEntryHeader(plumbing.REFDeltaObject, size)
	return append(out, base.Bytes()...)
}
