package idx

import (
	"encoding/binary"
	"io"

	"github.com/haxorof/gitpack/plumbing"
	"github.com/haxorof/gitpack/plumbing/hash"
)

// Encode writes the bit-exact v2 on-disk index (spec.md §6.2) for idx
// to w: magic, version, 256-entry fanout, sorted OIDs, CRC32s,
// offsets (with the 64-bit ext_offsets escape for positions ≥ 2^31),
// a copy of the pack's own trailer, and finally a digest of
// everything written before it. Grounded in go-git's
// idxfile/encoder.go streaming phase structure and libgit2's
// write_index.
func Encode(w io.Writer, idx *Index, packTrailer []byte) error {
	if len(packTrailer) != idx.Algorithm.Size() {
		return plumbing.NewError(plumbing.ErrParse, "pack trailer length %d does not match algorithm size %d", len(packTrailer), idx.Algorithm.Size())
	}

	digest := hash.New(idx.Algorithm)
	mw := io.MultiWriter(w, digest)

	if _, err := mw.Write(Magic[:]); err != nil {
		return plumbing.NewError(plumbing.ErrIO, "%v", err)
	}
	if err := writeU32(mw, Version); err != nil {
		return err
	}

	entries := idx.Sorted()

	var counts [256]uint32
	for _, e := range entries {
		counts[e.ID.ByteAt(0)]++
	}
	var fanout [256]uint32
	var running uint32
	for i := 0; i < 256; i++ {
		running += counts[i]
		fanout[i] = running
	}
	for _, v := range fanout {
		if err := writeU32(mw, v); err != nil {
			return err
		}
	}

	for _, e := range entries {
		if _, err := mw.Write(e.ID.Bytes()); err != nil {
			return plumbing.NewError(plumbing.ErrIO, "%v", err)
		}
	}

	for _, e := range entries {
		if err := writeU32(mw, e.CRC32); err != nil {
			return err
		}
	}

	var extOffsets []uint64
	for _, e := range entries {
		if e.Offset >= largeOffsetThreshold {
			slot := extOffsetBit | uint32(len(extOffsets))
			extOffsets = append(extOffsets, e.Offset)
			if err := writeU32(mw, slot); err != nil {
				return err
			}
			continue
		}
		if err := writeU32(mw, uint32(e.Offset)); err != nil {
			return err
		}
	}

	for _, off := range extOffsets {
		if err := writeU64(mw, off); err != nil {
			return err
		}
	}

	if _, err := mw.Write(packTrailer); err != nil {
		return plumbing.NewError(plumbing.ErrIO, "%v", err)
	}

	if _, err := w.Write(digest.Sum(nil)); err != nil {
		return plumbing.NewError(plumbing.ErrIO, "%v", err)
	}
	return nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return plumbing.NewError(plumbing.ErrIO, "%v", err)
	}
	return nil
}

func writeU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return plumbing.NewError(plumbing.ErrIO, "%v", err)
	}
	return nil
}
