// Package store defines the external object store boundary the
// indexer consumes for thin-pack base resolution and connectivity
// verification (spec.md §6.5, C6.5).
package store

import "github.com/haxorof/gitpack/plumbing"

// ObjectStore is a read-only, concurrency-safe source of objects
// external to the pack being indexed.
type ObjectStore interface {
	// Exists reports whether oid is present in the store.
	Exists(oid plumbing.OID) bool
	// Read returns the object's kind and inflated bytes.
	Read(oid plumbing.OID) (kind plumbing.ObjectType, data []byte, err error)
	// Header returns the object's kind and size without reading its
	// full payload.
	Header(oid plumbing.OID) (kind plumbing.ObjectType, size uint64, err error)
}
