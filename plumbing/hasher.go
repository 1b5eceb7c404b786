package plumbing

import (
	"hash"
	"strconv"
	"sync"

	gohash "github.com/haxorof/gitpack/plumbing/hash"
)

// ObjectHasher computes the canonical object id for a typed payload:
// hash("<type> <decimal-len>\0<payload>") (spec.md §4.2, §6.3). It is
// safe for concurrent use, mirroring go-git's plumbing.ObjectHasher.
type ObjectHasher struct {
	mu     sync.Mutex
	hasher hash.Hash
	algo   gohash.Algorithm
}

// NewObjectHasher returns a hasher for the given algorithm.
func NewObjectHasher(algo gohash.Algorithm) *ObjectHasher {
	return &ObjectHasher{hasher: gohash.New(algo), algo: algo}
}

// Algorithm reports which digest algorithm this hasher computes.
func (h *ObjectHasher) Algorithm() gohash.Algorithm { return h.algo }

// Compute hashes the canonical framing of an object of type ot with
// payload d and returns the resulting OID.
func (h *ObjectHasher) Compute(ot ObjectType, d []byte) OID {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hasher.Reset()
	writeHeader(h.hasher, ot, int64(len(d)))
	h.hasher.Write(d) //nolint:errcheck // hash.Hash.Write never errors

	id, _ := NewOID(h.hasher.Sum(nil))
	return id
}

// Streaming variants let a caller feed the payload incrementally
// (e.g. while inflating a pack entry) instead of buffering it whole.

// StreamingHasher accumulates a canonical-framed digest across
// multiple Write calls, finished with Sum.
type StreamingHasher struct {
	hasher hash.Hash
}

// NewStreamingHasher starts a canonical-framed digest for an object
// of type ot with a payload that will total size bytes.
func NewStreamingHasher(algo gohash.Algorithm, ot ObjectType, size int64) *StreamingHasher {
	h := gohash.New(algo)
	writeHeader(h, ot, size)
	return &StreamingHasher{hasher: h}
}

// Write feeds more of the payload into the digest.
func (s *StreamingHasher) Write(p []byte) (int, error) {
	return s.hasher.Write(p)
}

// Sum finishes the digest and returns the resulting OID.
func (s *StreamingHasher) Sum() OID {
	id, _ := NewOID(s.hasher.Sum(nil))
	return id
}

func writeHeader(h hash.Hash, ot ObjectType, size int64) {
	h.Write(ot.Bytes())          //nolint:errcheck
	h.Write([]byte(" "))         //nolint:errcheck
	h.Write([]byte(strconv.FormatInt(size, 10))) //nolint:errcheck
	h.Write([]byte{0})           //nolint:errcheck
}
