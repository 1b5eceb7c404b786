package plumbing

import "fmt"

// ObjectType identifies the kind of a Git object, including the two
// wire-only delta encodings that only ever appear inside a packfile
// (spec.md §3, §4.3). It mirrors go-git's plumbing.ObjectType layout.
type ObjectType int8

const (
	// InvalidObject is the zero value and never a valid parsed type.
	InvalidObject ObjectType = 0

	CommitObject ObjectType = 1
	TreeObject   ObjectType = 2
	BlobObject   ObjectType = 3
	TagObject    ObjectType = 4

	// 5 is reserved in the Git wire format.

	// OFSDeltaObject is a delta against a base found at a negative
	// byte offset earlier in the same packfile.
	OFSDeltaObject ObjectType = 6
	// REFDeltaObject is a delta against a base identified by OID,
	// which may or may not be present in the same packfile.
	REFDeltaObject ObjectType = 7

	// AnyObject is used by callers requesting an object without
	// caring about its type; it is never produced by a parser.
	AnyObject ObjectType = -127
)

// String implements fmt.Stringer.
func (t ObjectType) String() string {
	switch t {
	case CommitObject:
		return "commit"
	case TreeObject:
		return "tree"
	case BlobObject:
		return "blob"
	case TagObject:
		return "tag"
	case OFSDeltaObject:
		return "ofs-delta"
	case REFDeltaObject:
		return "ref-delta"
	case AnyObject:
		return "any"
	default:
		return "invalid"
	}
}

// Bytes returns the canonical lowercase type name used in the object
// header framing ("<type> <size>\0", spec.md §4.2). Only valid for
// the four storable types.
func (t ObjectType) Bytes() []byte {
	return []byte(t.String())
}

// Valid reports whether t is one of the four storable object types
// (commit/tree/blob/tag). Delta types are wire-only and never valid
// here, since by the time an object is handed to a caller it has
// already been resolved to a concrete type.
func (t ObjectType) Valid() bool {
	switch t {
	case CommitObject, TreeObject, BlobObject, TagObject:
		return true
	default:
		return false
	}
}

// IsDelta reports whether t is one of the two wire-only delta types.
func (t ObjectType) IsDelta() bool {
	return t == OFSDeltaObject || t == REFDeltaObject
}

// ParseObjectType parses the name used in the object header framing
// ("commit", "tree", "blob", "tag") back into an ObjectType.
func ParseObjectType(name string) (ObjectType, error) {
	switch name {
	case "commit":
		return CommitObject, nil
	case "tree":
		return TreeObject, nil
	case "blob":
		return BlobObject, nil
	case "tag":
		return TagObject, nil
	default:
		return InvalidObject, fmt.Errorf("invalid object type %q", name)
	}
}
