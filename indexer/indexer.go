// Package indexer builds a pack's .idx sibling while the pack itself
// is still streaming in, resolving deltas and writing both files only
// once the full pack has been received and verified (spec.md §4.5,
// C8). It is grounded in libgit2's git_indexer and in go-git's
// storage/filesystem/dotgit.PackWriter for the billy temp-file/rename
// lifecycle, adapted from a goroutine-driven reader into the
// synchronous Append/Commit push model the rest of this module uses.
package indexer

import (
	"encoding/hex"
	"errors"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"

	"github.com/haxorof/gitpack/idx"
	"github.com/haxorof/gitpack/internal/trace"
	"github.com/haxorof/gitpack/internal/zlib"
	"github.com/haxorof/gitpack/packfile"
	"github.com/haxorof/gitpack/plumbing"
	"github.com/haxorof/gitpack/plumbing/hash"
	"github.com/haxorof/gitpack/store"
)

// errBaseUnresolved signals, internally to resolveRefDeltas, that a
// ref-delta's base is not yet available by id: either it's a base
// still waiting on its own resolution, or a base that must be sourced
// from the object store.
var errBaseUnresolved = errors.New("indexer: ref-delta base not yet resolved")

// Indexer consumes a packfile byte stream incrementally, resolves its
// deltas at Commit time, and writes a matching pack/idx pair. It is
// not safe for concurrent use.
type Indexer struct {
	algo         hash.Algorithm
	verify       bool
	keepThinPack bool
	fsync        bool
	mode         uint32
	progress     ProgressFunc
	odb          store.ObjectStore

	fs      billy.Filesystem
	dir     string
	tmp     billy.File
	tmpPath string

	parser *packfile.Parser

	header packfile.Header

	byPosition map[uint64]*entry
	byID       map[plumbing.OID]*entry
	ordered    []*entry

	offsetDeltas []*entry
	refDeltas    []*entry

	expectedIDs    map[plumbing.OID]struct{}
	hasThinEntries bool

	packfileSize    uint64
	receivedBytes   uint64
	receivedObjects uint32
	indexedObjects  uint32
	totalObjects    uint32
	totalDeltas     uint32
	indexedDeltas   uint32
	localObjects    uint32

	curEntry  *entry
	verifyBuf []byte

	trailer []byte

	committed bool
	failed    bool
	err       error
}

// New returns an Indexer that buffers the incoming pack under dir
// (created via the filesystem's temp-file facility) and is ready to
// accept Append calls.
func New(fs billy.Filesystem, dir string, opts ...Option) (*Indexer, error) {
	ix := &Indexer{
		algo:       hash.SHA1,
		fs:         fs,
		dir:        dir,
		byPosition: make(map[uint64]*entry),
		byID:       make(map[plumbing.OID]*entry),
	}
	for _, opt := range opts {
		opt(ix)
	}
	if ix.verify {
		ix.expectedIDs = make(map[plumbing.OID]struct{})
	}

	tmp, err := fs.TempFile(dir, "pack-")
	if err != nil {
		return nil, plumbing.WrapError(plumbing.ErrIO, err, "could not create temp pack file in %s", dir)
	}
	ix.tmp = tmp
	ix.tmpPath = tmp.Name()

	ix.parser = packfile.NewParser(
		packfile.WithAlgorithm(ix.algo),
		packfile.WithCallbacks(ix.callbacks()),
	)
	return ix, nil
}

func (ix *Indexer) callbacks() *packfile.Callbacks {
	return &packfile.Callbacks{
		PackfileHeader:   ix.onPackfileHeader,
		ObjectStart:      ix.onObjectStart,
		ObjectData:       ix.onObjectData,
		ObjectComplete:   ix.onObjectComplete,
		DeltaStart:       ix.onDeltaStart,
		DeltaComplete:    ix.onDeltaComplete,
		PackfileComplete: ix.onPackfileComplete,
	}
}

// Append feeds the next chunk of the incoming pack. Chunks may be any
// size and split at any byte boundary.
func (ix *Indexer) Append(data []byte) error {
	if ix.committed {
		return plumbing.NewError(plumbing.ErrState, "Append called after Commit")
	}
	if ix.failed {
		return ix.err
	}

	if _, err := ix.tmp.Write(data); err != nil {
		return ix.failWith(plumbing.WrapError(plumbing.ErrIO, err, "could not write %d bytes to temp pack file", len(data)))
	}
	ix.packfileSize += uint64(len(data))
	ix.receivedBytes += uint64(len(data))

	if err := ix.parser.Parse(data); err != nil {
		return ix.failWith(err)
	}
	return nil
}

// Close discards the temporary pack file if Commit was never called
// or did not succeed. Calling it after a successful Commit is a no-op.
func (ix *Indexer) Close() error {
	if ix.committed {
		return nil
	}
	_ = ix.tmp.Close()
	return ix.fs.Remove(ix.tmpPath)
}

func (ix *Indexer) failWith(err error) error {
	ix.failed = true
	ix.err = err
	return err
}

func (ix *Indexer) fireProgress() int {
	if ix.progress == nil {
		return 0
	}
	return ix.progress(Progress{
		TotalObjects:    ix.totalObjects,
		IndexedObjects:  ix.indexedObjects,
		ReceivedObjects: ix.receivedObjects,
		ReceivedBytes:   ix.receivedBytes,
		LocalObjects:    ix.localObjects,
		TotalDeltas:     ix.totalDeltas,
		IndexedDeltas:   ix.indexedDeltas,
	})
}

func (ix *Indexer) onPackfileHeader(version, count uint32) int {
	ix.header = packfile.Header{Version: version, Count: count}
	ix.totalObjects = count
	half := count / 2
	ix.offsetDeltas = make([]*entry, 0, half)
	ix.refDeltas = make([]*entry, 0, half)
	return ix.fireProgress()
}

func (ix *Indexer) onObjectStart(position uint64, headerLen uint16, kind plumbing.ObjectType, size uint64) int {
	e := &entry{kind: entryObject, offset: position, headerLen: headerLen, inflatedSize: size, declaredKind: kind}
	ix.byPosition[position] = e
	ix.ordered = append(ix.ordered, e)
	ix.curEntry = e
	if ix.verify {
		ix.verifyBuf = ix.verifyBuf[:0]
	}
	trace.Indexer.Printf("entry at offset %d: %s, inflated size %d", position, kind, size)
	return 0
}

func (ix *Indexer) onObjectData(buf []byte) int {
	if ix.verify {
		ix.verifyBuf = append(ix.verifyBuf, buf...)
	}
	return 0
}

func (ix *Indexer) onObjectComplete(_ uint64, crc32 uint32, oid plumbing.OID) int {
	e := ix.curEntry
	e.id = oid
	e.idKnown = true
	e.finalKind = e.declaredKind
	e.crc32 = crc32
	e.resolved = true
	ix.byID[oid] = e

	if ix.verify {
		e.resolvedData = append([]byte(nil), ix.verifyBuf...)
		if err := ix.recordResolvedObject(e, e.finalKind, e.resolvedData); err != nil {
			ix.failed = true
			ix.err = err
			return -1
		}
	}

	ix.receivedObjects++
	ix.indexedObjects++
	return ix.fireProgress()
}

func (ix *Indexer) onDeltaStart(position uint64, kind plumbing.ObjectType, headerLen uint16, size uint64, baseOID *plumbing.OID, baseOffset uint64) int {
	e := &entry{kind: entryDelta, offset: position, headerLen: headerLen, inflatedSize: size, declaredKind: kind}
	if baseOID != nil {
		e.hasRefBase = true
		e.refBase = *baseOID
	} else {
		e.basePosition = baseOffset
	}
	ix.byPosition[position] = e
	ix.ordered = append(ix.ordered, e)
	ix.curEntry = e
	if baseOID != nil {
		trace.Indexer.Printf("delta entry at offset %d: ref-base %s", position, *baseOID)
	} else {
		trace.Indexer.Printf("delta entry at offset %d: ofs-base at offset %d", position, baseOffset)
	}
	return 0
}

func (ix *Indexer) onDeltaComplete(_ uint64, crc32 uint32) int {
	e := ix.curEntry
	e.crc32 = crc32
	if e.hasRefBase {
		ix.refDeltas = append(ix.refDeltas, e)
	} else {
		ix.offsetDeltas = append(ix.offsetDeltas, e)
	}
	ix.receivedObjects++
	return ix.fireProgress()
}

func (ix *Indexer) onPackfileComplete(trailer []byte) int {
	ix.trailer = append([]byte(nil), trailer...)
	return 0
}

// Commit resolves every delta, optionally checks connectivity, and
// writes the final pack and idx files into dir (spec.md §4.5 steps
// 1-11). On success the Indexer is consumed; Append and Commit may no
// longer be called.
func (ix *Indexer) Commit() error {
	if ix.failed {
		return ix.err
	}
	if ix.committed {
		return plumbing.NewError(plumbing.ErrState, "Commit called twice")
	}
	if !ix.parser.Done() {
		return ix.failWith(plumbing.NewError(plumbing.ErrState, "Commit called before the packfile trailer was consumed"))
	}

	ix.totalDeltas = ix.totalObjects - ix.indexedObjects
	if code := ix.fireProgress(); code != 0 {
		return ix.failWith(&plumbing.CallbackAbortedError{Code: code})
	}

	for _, e := range ix.offsetDeltas {
		if e.resolved {
			continue
		}
		if _, _, err := ix.resolveEntry(e); err != nil {
			return ix.failWith(err)
		}
	}

	if err := ix.resolveRefDeltas(); err != nil {
		return ix.failWith(err)
	}

	if err := ix.finalizeThinPack(); err != nil {
		return ix.failWith(err)
	}

	if ix.verify && len(ix.expectedIDs) > 0 {
		return ix.failWith(&plumbing.MissingObjectError{Count: len(ix.expectedIDs)})
	}

	if err := ix.writeFinal(); err != nil {
		return ix.failWith(err)
	}

	ix.committed = true
	return nil
}

func (ix *Indexer) resolveRefDeltas() error {
	for {
		progressed := false
		allResolved := true
		for _, e := range ix.refDeltas {
			if e.resolved {
				continue
			}
			if _, _, err := ix.resolveEntry(e); err == nil {
				progressed = true
				continue
			} else if !errors.Is(err, errBaseUnresolved) {
				return err
			}

			allResolved = false
			injected, ierr := ix.tryInjectBase(e.refBase)
			if ierr != nil {
				return ierr
			}
			if injected {
				progressed = true
			}
		}
		if allResolved {
			return nil
		}
		if !progressed {
			return plumbing.NewError(plumbing.ErrMissingBase, "unresolved ref-delta base(s) remain")
		}
	}
}

// resolveEntry returns the fully-materialised kind and bytes of e,
// resolving its delta chain (of either flavour, in any order) as
// needed. Results are memoised on the entry itself.
func (ix *Indexer) resolveEntry(e *entry) (plumbing.ObjectType, []byte, error) {
	if e.kind == entryObject {
		if e.resolvedData == nil {
			data, err := ix.readInflated(e.offset, e.headerLen)
			if err != nil {
				return 0, nil, err
			}
			e.resolvedData = data
		}
		return e.finalKind, e.resolvedData, nil
	}

	if e.resolved {
		return e.finalKind, e.resolvedData, nil
	}

	var base *entry
	if e.hasRefBase {
		b, ok := ix.byID[e.refBase]
		if !ok {
			return 0, nil, errBaseUnresolved
		}
		base = b
	} else {
		b, ok := ix.byPosition[e.basePosition]
		if !ok {
			return 0, nil, plumbing.NewError(plumbing.ErrDelta, "ofs-delta base position %d not found", e.basePosition)
		}
		base = b
	}

	baseKind, baseData, err := ix.resolveEntry(base)
	if err != nil {
		return 0, nil, err
	}

	deltaBytes, err := ix.readInflated(e.offset, e.headerLen)
	if err != nil {
		return 0, nil, err
	}
	result, err := packfile.Apply(baseData, deltaBytes)
	if err != nil {
		return 0, nil, err
	}

	e.finalKind = baseKind
	e.resolvedData = result
	e.resolved = true
	id := plumbing.NewObjectHasher(ix.algo).Compute(baseKind, result)
	e.id = id
	e.idKnown = true
	ix.byID[id] = e
	ix.indexedDeltas++
	ix.indexedObjects++
	trace.Indexer.Printf("resolved delta at offset %d to %s %s (%d bytes)", e.offset, baseKind, id, len(result))

	if code := ix.fireProgress(); code != 0 {
		return 0, nil, &plumbing.CallbackAbortedError{Code: code}
	}
	if ix.verify {
		if err := ix.recordResolvedObject(e, baseKind, result); err != nil {
			return 0, nil, err
		}
	}

	return baseKind, result, nil
}

// readInflated decodes the deflated payload starting at offset+hdrLen
// by re-opening the tempfile for a positional read (spec.md §4.5: "map
// the tempfile read-only (or use positional I/O)"; this module has no
// portable mmap dependency in its stack, so it takes the sanctioned
// positional-I/O path).
func (ix *Indexer) readInflated(offset uint64, hdrLen uint16) ([]byte, error) {
	start := int64(offset) + int64(hdrLen)
	length := int64(ix.packfileSize) - start
	if length <= 0 {
		return nil, plumbing.NewError(plumbing.ErrIO, "entry at offset %d has no payload", offset)
	}

	f, err := ix.fs.Open(ix.tmpPath)
	if err != nil {
		return nil, plumbing.WrapError(plumbing.ErrIO, err, "could not reopen temp pack file %s", ix.tmpPath)
	}
	defer f.Close() //nolint:errcheck

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return nil, plumbing.WrapError(plumbing.ErrIO, err, "could not seek to offset %d", start)
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, plumbing.WrapError(plumbing.ErrIO, err, "could not read %d bytes at offset %d", length, start)
	}

	inf := zlib.NewInflater()
	out, done, err := inf.Feed(raw)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, plumbing.NewError(plumbing.ErrZlib, "entry at offset %d has a truncated deflate stream", offset)
	}
	return out, nil
}

// writeFinal derives the final pack name from the (possibly
// recomputed, if thin bases were injected) trailer, writes the .idx
// file, and renames both into place, following go-git's
// temp-file-then-rename PackWriter idiom.
func (ix *Indexer) writeFinal() error {
	model := idx.New(ix.algo)
	for _, e := range ix.ordered {
		model.Add(e.id, e.offset, e.crc32)
	}

	tmpIdx, err := ix.fs.TempFile(ix.dir, "idx-")
	if err != nil {
		return plumbing.WrapError(plumbing.ErrIO, err, "could not create temp idx file in %s", ix.dir)
	}
	if err := idx.Encode(tmpIdx, model, ix.trailer); err != nil {
		_ = tmpIdx.Close()
		_ = ix.fs.Remove(tmpIdx.Name())
		return err
	}
	if ix.fsync {
		if err := syncFile(tmpIdx); err != nil {
			_ = tmpIdx.Close()
			return err
		}
	}
	if err := tmpIdx.Close(); err != nil {
		return plumbing.WrapError(plumbing.ErrIO, err, "could not close temp idx file %s", tmpIdx.Name())
	}

	if ix.fsync {
		if err := syncFile(ix.tmp); err != nil {
			return err
		}
	}
	if err := ix.tmp.Close(); err != nil {
		return plumbing.WrapError(plumbing.ErrIO, err, "could not close temp pack file %s", ix.tmpPath)
	}

	base := ix.fs.Join(ix.dir, "pack-"+hex.EncodeToString(ix.trailer))
	packPath := base + ".pack"
	idxPath := base + ".idx"

	if err := ix.fs.Rename(tmpIdx.Name(), idxPath); err != nil {
		return plumbing.WrapError(plumbing.ErrIO, err, "could not rename %s to %s", tmpIdx.Name(), idxPath)
	}
	ix.fixPermissions(idxPath)

	if err := ix.fs.Rename(ix.tmpPath, packPath); err != nil {
		return plumbing.WrapError(plumbing.ErrIO, err, "could not rename %s to %s", ix.tmpPath, packPath)
	}
	ix.fixPermissions(packPath)

	return nil
}

func (ix *Indexer) fixPermissions(path string) {
	if ix.mode == 0 {
		return
	}
	if chmodFS, ok := ix.fs.(billy.Chmod); ok {
		_ = chmodFS.Chmod(path, os.FileMode(ix.mode))
	}
}

// syncer is a locally-declared capability interface for files that
// support fsync, mirroring go-billy's own billy.Chmod pattern: the
// base billy.File interface has no Sync method, so callers that want
// durability type-assert for it the same way fixPermissions does for
// Chmod.
type syncer interface {
	Sync() error
}

func syncFile(f billy.File) error {
	if s, ok := f.(syncer); ok {
		if err := s.Sync(); err != nil {
			return plumbing.WrapError(plumbing.ErrIO, err, "could not fsync %T", f)
		}
	}
	return nil
}
