package object

import "github.com/haxorof/gitpack/plumbing"

// Blob is opaque file content; no structure is imposed on it
// (spec.md §3).
type Blob struct {
	Data []byte
}

// NewBlob wraps raw bytes as a Blob. It never fails.
func NewBlob(data []byte) *Blob {
	return &Blob{Data: data}
}

func (b *Blob) Kind() plumbing.ObjectType { return plumbing.BlobObject }
func (b *Blob) Encode() []byte            { return b.Data }
