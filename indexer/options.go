package indexer

import (
	"github.com/haxorof/gitpack/plumbing/hash"
	"github.com/haxorof/gitpack/store"
)

// Progress mirrors libgit2's git_indexer_progress: counters reported
// after each progress-relevant step (spec.md §4.5, §6.6).
type Progress struct {
	TotalObjects    uint32
	IndexedObjects  uint32
	ReceivedObjects uint32
	ReceivedBytes   uint64
	LocalObjects    uint32
	TotalDeltas     uint32
	IndexedDeltas   uint32
}

// ProgressFunc is invoked after each progress-relevant step. A
// non-zero return aborts the operation, exactly like a parser
// callback (spec.md §6.6).
type ProgressFunc func(Progress) int

// Option configures an Indexer at construction time, following
// go-git's functional-options idiom.
type Option func(*Indexer)

// WithAlgorithm selects the hash algorithm for object ids, the
// running pack digest, and the written index. Defaults to SHA-1.
func WithAlgorithm(algo hash.Algorithm) Option {
	return func(ix *Indexer) { ix.algo = algo }
}

// WithVerify enables connectivity verification (spec.md §4.5, C9).
func WithVerify(verify bool) Option {
	return func(ix *Indexer) { ix.verify = verify }
}

// WithKeepThinPack disables thin-base injection: a missing ref-delta
// base becomes a hard MissingBase error instead of being fetched from
// the object store.
func WithKeepThinPack(keep bool) Option {
	return func(ix *Indexer) { ix.keepThinPack = keep }
}

// WithFsync enables fsync of the pack and idx files before rename,
// for files that support it. The containing directory is not synced.
func WithFsync(fsync bool) Option {
	return func(ix *Indexer) { ix.fsync = fsync }
}

// WithMode sets the POSIX permission bits for the created pack/idx
// files.
func WithMode(mode uint32) Option {
	return func(ix *Indexer) { ix.mode = mode }
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(ix *Indexer) { ix.progress = fn }
}

// WithObjectStore installs the external object store used for
// thin-pack base resolution and connectivity verification. Required
// when WithVerify or thin-base injection is in play.
func WithObjectStore(odb store.ObjectStore) Option {
	return func(ix *Indexer) { ix.odb = odb }
}
