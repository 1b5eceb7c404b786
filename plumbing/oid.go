package plumbing

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/haxorof/gitpack/plumbing/hash"
)

// MinPrefixLen is the minimum number of hex nibbles a short-id prefix
// must carry. Below this length a prefix is considered too ambiguous
// to be useful, regardless of how unique it happens to be.
const MinPrefixLen = 4

// OID is a content-addressed object identifier: a fixed-size digest
// together with the algorithm that produced it.
type OID struct {
	algo hash.Algorithm
	buf  [hash.SHA256Size]byte
}

// NewOID builds an OID from raw digest bytes. The algorithm is
// inferred from the slice length: 20 bytes is SHA-1, 32 is SHA-256.
// Any other length returns ok=false.
func NewOID(raw []byte) (OID, bool) {
	var id OID
	switch len(raw) {
	case hash.SHA1Size:
		id.algo = hash.SHA1
	case hash.SHA256Size:
		id.algo = hash.SHA256
	default:
		return OID{}, false
	}
	copy(id.buf[:], raw)
	return id, true
}

// FromHex parses a hexadecimal OID. The algorithm is inferred from the
// string length (2*size). Any non-hex character or any length other
// than 2*SHA1Size or 2*SHA256Size is rejected; upper-case hex digits
// are accepted.
func FromHex(s string) (OID, bool) {
	switch len(s) {
	case hash.SHA1HexSize, hash.SHA256HexSize:
	default:
		return OID{}, false
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return OID{}, false
	}
	return NewOID(raw)
}

// Algorithm reports the hash algorithm this OID was produced with.
func (o OID) Algorithm() hash.Algorithm { return o.algo }

// Size returns the number of raw digest bytes for this OID.
func (o OID) Size() int { return o.algo.Size() }

// Bytes returns the raw digest bytes.
func (o OID) Bytes() []byte {
	return append([]byte(nil), o.buf[:o.Size()]...)
}

// IsZero reports whether every digest byte is zero.
func (o OID) IsZero() bool {
	for _, b := range o.buf[:o.Size()] {
		if b != 0 {
			return false
		}
	}
	return true
}

// String returns the canonical lowercase hex form.
func (o OID) String() string {
	return hex.EncodeToString(o.buf[:o.Size()])
}

// Equal reports whether two OIDs have identical bytes and algorithm.
func (o OID) Equal(other OID) bool {
	return o.algo == other.algo && bytes.Equal(o.buf[:o.Size()], other.buf[:other.Size()])
}

// Compare gives the byte-lexicographic order of two OIDs of the same
// algorithm. It is used to sort .idx entries (spec.md §6.2) and to
// implement a total order over OID (spec.md §8.1).
func (o OID) Compare(other OID) int {
	return bytes.Compare(o.buf[:o.Size()], other.buf[:other.Size()])
}

// Less reports o < other under the byte-lexicographic order, making
// OID usable directly with sort.Slice.
func (o OID) Less(other OID) bool {
	return o.Compare(other) < 0
}

// ByteAt returns the raw byte at the given position, used by the .idx
// fanout table (keyed on the first digest byte).
func (o OID) ByteAt(i int) byte { return o.buf[i] }

// Prefix is a partial OID: the first N hex nibbles of some OID(s).
// Comparisons only examine those N nibbles; when N is odd the low
// nibble of the final byte is masked off on both sides.
type Prefix struct {
	algo hash.Algorithm
	buf  [hash.SHA256Size]byte
	n    int // nibble count
}

// ErrInvalidPrefix is returned when a prefix string is malformed or
// outside [MinPrefixLen, 2*size].
var ErrInvalidPrefix = fmt.Errorf("invalid object id prefix")

// NewPrefix parses a short hex string into a Prefix. The algorithm is
// assumed to be SHA-1 unless the hex string is long enough to only be
// a valid SHA-256 prefix (i.e. longer than 2*SHA1Size).
func NewPrefix(s string) (Prefix, error) {
	n := len(s)
	if n < MinPrefixLen {
		return Prefix{}, ErrInvalidPrefix
	}

	algo := hash.SHA1
	maxN := hash.SHA1HexSize
	if n > hash.SHA1HexSize {
		algo = hash.SHA256
		maxN = hash.SHA256HexSize
	}
	if n > maxN {
		return Prefix{}, ErrInvalidPrefix
	}

	padded := s
	if n%2 == 1 {
		padded += "0"
	}
	raw, err := hex.DecodeString(padded)
	if err != nil {
		return Prefix{}, ErrInvalidPrefix
	}

	p := Prefix{algo: algo, n: n}
	copy(p.buf[:], raw)
	if n%2 == 1 {
		p.buf[n/2] &= 0xf0
	}
	return p, nil
}

// Len returns the number of significant nibbles.
func (p Prefix) Len() int { return p.n }

// Match reports whether id's first p.Len() nibbles equal the prefix.
func (p Prefix) Match(id OID) bool {
	if id.Algorithm() != p.algo {
		return false
	}
	fullBytes := p.n / 2
	if !bytes.Equal(p.buf[:fullBytes], id.buf[:fullBytes]) {
		return false
	}
	if p.n%2 == 0 {
		return true
	}
	return (p.buf[fullBytes] & 0xf0) == (id.buf[fullBytes] & 0xf0)
}

func (p Prefix) String() string {
	full := hex.EncodeToString(p.buf[:(p.n+1)/2])
	return full[:p.n]
}
