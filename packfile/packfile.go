// Package packfile implements the resumable packfile wire parser (C6)
// and delta application (C7 math) described in spec.md §4.3-4.4.
package packfile

// Magic is the 4-byte signature every packfile begins with.
var Magic = [4]byte{'P', 'A', 'C', 'K'}

// Version is the only packfile version this module understands.
const Version = 2

// Header is the fixed 12-byte packfile preamble.
type Header struct {
	Version uint32
	Count   uint32
}
