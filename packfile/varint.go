package packfile

import "github.com/haxorof/gitpack/plumbing"

// headerAccumulator decodes the variable-length entry-header varint
// (spec.md §6.1) one byte at a time so it can be paused and resumed
// across arbitrary chunk boundaries (spec.md §4.3 resumability).
//
// First byte: (type:3 bits, low-size:4 bits, more:1 bit MSB).
// Continuation bytes contribute (b&0x7f) << (4 + 7*k) for k=0,1,2,...
type headerAccumulator struct {
	started bool
	typ     plumbing.ObjectType
	size    uint64
	shift   uint
	more    bool
}

// step feeds one header byte and reports whether the varint is
// complete (no further continuation byte expected).
func (a *headerAccumulator) step(b byte) (done bool) {
	if !a.started {
		a.started = true
		a.typ = plumbing.ObjectType((b >> 4) & 0x7)
		a.size = uint64(b & 0x0f)
		a.shift = 4
		a.more = b&0x80 != 0
		return !a.more
	}
	a.size |= uint64(b&0x7f) << a.shift
	a.shift += 7
	a.more = b&0x80 != 0
	return !a.more
}

// ofsAccumulator decodes the ofs-delta negative-offset varint
// (spec.md §6.1): n = b&0x7f for the first byte; each continuation
// byte applies n = ((n+1)<<7) | (b&0x7f).
type ofsAccumulator struct {
	started bool
	n       uint64
	more    bool
}

func (a *ofsAccumulator) step(b byte) (done bool) {
	if !a.started {
		a.started = true
		a.n = uint64(b & 0x7f)
		a.more = b&0x80 != 0
		return !a.more
	}
	a.n = ((a.n + 1) << 7) | uint64(b&0x7f)
	a.more = b&0x80 != 0
	return !a.more
}
