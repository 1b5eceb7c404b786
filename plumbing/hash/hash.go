// Package hash provides the hash back-ends used across gitpack. It keeps
// the algorithm selection explicit and instance-local rather than relying
// on process-wide state.
package hash

import (
	"crypto/sha256"
	"hash"

	"github.com/pjbgf/sha1cd"
)

const (
	// SHA1Size is the length in bytes of a SHA-1 digest.
	SHA1Size = 20
	// SHA1HexSize is the length in hex characters of a SHA-1 digest.
	SHA1HexSize = SHA1Size * 2
	// SHA256Size is the length in bytes of a SHA-256 digest.
	SHA256Size = 32
	// SHA256HexSize is the length in hex characters of a SHA-256 digest.
	SHA256HexSize = SHA256Size * 2
)

// Algorithm identifies a supported digest function.
type Algorithm int8

const (
	// SHA1 is the default Git object hash.
	SHA1 Algorithm = iota
	// SHA256 is the alternate object hash supported by newer Git.
	SHA256
)

// Size returns the raw digest size for the algorithm.
func (a Algorithm) Size() int {
	if a == SHA256 {
		return SHA256Size
	}
	return SHA1Size
}

// HexSize returns the hexadecimal digest size for the algorithm.
func (a Algorithm) HexSize() int {
	return a.Size() * 2
}

func (a Algorithm) String() string {
	if a == SHA256 {
		return "sha256"
	}
	return "sha1"
}

// New returns a fresh hash.Hash for the given algorithm. Unlike a
// process-wide registry, the choice is resolved per call so that a
// caller-supplied Service (see below) never leaks state between
// unrelated indexer instances.
func New(a Algorithm) hash.Hash {
	switch a {
	case SHA256:
		return sha256.New()
	default:
		return sha1cd.New()
	}
}

// Service is an explicit handle to the hashing back-end, passed to
// constructors instead of relying on package-level globals. This keeps
// the core free of global mutable state (see DESIGN.md).
type Service struct {
	Algorithm Algorithm
}

// NewHash returns a new, ready-to-use digest for this service.
func (s Service) NewHash() hash.Hash {
	return New(s.Algorithm)
}

// Sum computes a one-shot digest of the given vectors of bytes.
func (s Service) Sum(parts ...[]byte) []byte {
	h := s.NewHash()
	for _, p := range parts {
		h.Write(p) //nolint:errcheck // hash.Hash.Write never errors
	}
	return h.Sum(nil)
}
