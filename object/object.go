package object

import (
	"github.com/haxorof/gitpack/plumbing"
	"github.com/haxorof/gitpack/plumbing/hash"
)

// Raw is the parser boundary type (spec.md §3): a declared kind paired
// with its inflated payload. Parse turns it into one of Commit, Tree,
// Tag or Blob. Algorithm identifies the hash algorithm OIDs embedded
// in the payload (tree entries) were produced with.
type Raw struct {
	Kind      plumbing.ObjectType
	Data      []byte
	Algorithm hash.Algorithm
}

// Object is implemented by every typed object.
type Object interface {
	// Kind returns the object's storable type.
	Kind() plumbing.ObjectType
	// Encode returns the canonical payload bytes that hash to the
	// object's id (everything after the "<kind> <len>\0" framing).
	Encode() []byte
}

// ID computes the canonical OID of an object under the given hash
// algorithm (spec.md §4.2: digest of "<kind> <decimal-len>\0" ++
// payload).
func ID(algo hash.Algorithm, o Object) plumbing.OID {
	h := plumbing.NewObjectHasher(algo)
	return h.Compute(o.Kind(), o.Encode())
}

// Parse decodes raw bytes of a declared kind into a typed object. A
// blob is always valid and never inspected, matching spec.md §4.2.
func Parse(raw Raw) (Object, error) {
	switch raw.Kind {
	case plumbing.CommitObject:
		return ParseCommit(raw.Data)
	case plumbing.TreeObject:
		return ParseTree(raw.Data, raw.Algorithm)
	case plumbing.TagObject:
		return ParseTag(raw.Data)
	case plumbing.BlobObject:
		return NewBlob(raw.Data), nil
	default:
		return nil, plumbing.NewError(plumbing.ErrParse, "unsupported object kind %s", raw.Kind)
	}
}
