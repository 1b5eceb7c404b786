package indexer

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/haxorof/gitpack/internal/trace"
	"github.com/haxorof/gitpack/internal/zlib"
	"github.com/haxorof/gitpack/packfile"
	"github.com/haxorof/gitpack/plumbing"
	"github.com/haxorof/gitpack/plumbing/hash"
)

// tryInjectBase attempts to source a missing ref-delta base from the
// external object store and append it to the tempfile as a new
// non-delta entry, returning injected=true once it becomes available
// by id (either because it already was, or because this call just
// fetched it). It returns injected=false, err=nil when the base simply
// cannot be sourced here, leaving the caller's convergence loop to
// decide whether that is fatal.
func (ix *Indexer) tryInjectBase(oid plumbing.OID) (injected bool, err error) {
	if _, ok := ix.byID[oid]; ok {
		return true, nil
	}
	if ix.keepThinPack || ix.odb == nil {
		return false, nil
	}
	if !ix.odb.Exists(oid) {
		return false, nil
	}

	kind, data, rerr := ix.odb.Read(oid)
	if rerr != nil {
		return false, plumbing.NewError(plumbing.ErrMissingBase, "thin-base %s: %v", oid, rerr)
	}

	if !ix.hasThinEntries {
		if err := ix.truncateTrailer(); err != nil {
			return false, err
		}
		ix.hasThinEntries = true
	}

	header := packfile.EncodeEntryHeader(kind, uint64(len(data)))
	deflated, derr := zlib.Deflate(data)
	if derr != nil {
		return false, derr
	}

	offset := ix.packfileSize
	if _, werr := ix.tmp.Write(header); werr != nil {
		return false, plumbing.WrapError(plumbing.ErrIO, werr, "could not write thin-base %s header", oid)
	}
	if _, werr := ix.tmp.Write(deflated); werr != nil {
		return false, plumbing.WrapError(plumbing.ErrIO, werr, "could not write thin-base %s payload", oid)
	}
	ix.packfileSize += uint64(len(header) + len(deflated))

	crc := crc32.NewIEEE()
	crc.Write(header)    //nolint:errcheck
	crc.Write(deflated)  //nolint:errcheck

	e := &entry{
		kind:         entryObject,
		offset:       offset,
		headerLen:    uint16(len(header)),
		inflatedSize: uint64(len(data)),
		crc32:        crc.Sum32(),
		id:           oid,
		idKnown:      true,
		declaredKind: kind,
		finalKind:    kind,
		resolvedData: append([]byte(nil), data...),
		resolved:     true,
	}
	ix.byPosition[offset] = e
	ix.byID[oid] = e
	ix.ordered = append(ix.ordered, e)
	ix.localObjects++
	trace.Indexer.Printf("injected thin-base %s %s at offset %d (%d bytes)", kind, oid, offset, len(data))

	if ix.verify {
		if verr := ix.recordResolvedObject(e, kind, e.resolvedData); verr != nil {
			return false, verr
		}
	}

	if code := ix.fireProgress(); code != 0 {
		return false, &plumbing.CallbackAbortedError{Code: code}
	}
	return true, nil
}

// truncateTrailer drops the original trailer bytes from the tail of
// the tempfile so thin-base entries can be appended in their place.
// Called once, before the first injection.
func (ix *Indexer) truncateTrailer() error {
	trailerSize := int64(ix.algo.Size())
	newSize := int64(ix.packfileSize) - trailerSize
	if newSize < 12 {
		return plumbing.NewError(plumbing.ErrIO, "packfile too short to carry a trailer")
	}
	if err := ix.tmp.Truncate(newSize); err != nil {
		return plumbing.WrapError(plumbing.ErrIO, err, "could not truncate temp pack file to %d bytes", newSize)
	}
	if _, err := ix.tmp.Seek(newSize, io.SeekStart); err != nil {
		return plumbing.WrapError(plumbing.ErrIO, err, "could not seek to offset %d", newSize)
	}
	ix.packfileSize = uint64(newSize)
	return nil
}

// finalizeThinPack rewrites the header's entry count to include the
// injected bases and recomputes the trailer over the whole, now
// longer, pack (spec.md §4.5 step 6). A no-op when nothing was
// injected.
func (ix *Indexer) finalizeThinPack() error {
	if !ix.hasThinEntries {
		return nil
	}

	newCount := ix.header.Count + ix.localObjects
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], newCount)
	if _, err := ix.tmp.Seek(8, io.SeekStart); err != nil {
		return plumbing.WrapError(plumbing.ErrIO, err, "could not seek to the pack header entry count")
	}
	if _, err := ix.tmp.Write(countBuf[:]); err != nil {
		return plumbing.WrapError(plumbing.ErrIO, err, "could not rewrite the pack header entry count")
	}
	ix.header.Count = newCount

	if _, err := ix.tmp.Seek(0, io.SeekStart); err != nil {
		return plumbing.WrapError(plumbing.ErrIO, err, "could not seek to the start of the temp pack file")
	}
	h := hash.New(ix.algo)
	if _, err := io.CopyN(h, ix.tmp, int64(ix.packfileSize)); err != nil {
		return plumbing.WrapError(plumbing.ErrIO, err, "could not rehash %d bytes of the lengthened pack", ix.packfileSize)
	}
	newTrailer := h.Sum(nil)

	if _, err := ix.tmp.Seek(int64(ix.packfileSize), io.SeekStart); err != nil {
		return plumbing.WrapError(plumbing.ErrIO, err, "could not seek to append the new trailer at offset %d", ix.packfileSize)
	}
	if _, err := ix.tmp.Write(newTrailer); err != nil {
		return plumbing.WrapError(plumbing.ErrIO, err, "could not write the recomputed trailer")
	}
	ix.packfileSize += uint64(len(newTrailer))
	ix.trailer = newTrailer
	return nil
}
