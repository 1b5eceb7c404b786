package packfile

import (
	"github.com/haxorof/gitpack/internal/trace"
	"github.com/haxorof/gitpack/plumbing"
)

// ReadDeltaHeader reads the two size varints every delta starts with
// (spec.md §4.4 step 4): the base object's size and the result
// object's size, each encoded 7 bits per byte, LSB group first, with
// the high bit marking continuation.
func ReadDeltaHeader(delta []byte) (baseSize, resultSize uint64, rest []byte, err error) {
	baseSize, rest, err = readDeltaVarint(delta)
	if err != nil {
		return 0, 0, nil, err
	}
	resultSize, rest, err = readDeltaVarint(rest)
	if err != nil {
		return 0, 0, nil, err
	}
	return baseSize, resultSize, rest, nil
}

func readDeltaVarint(delta []byte) (uint64, []byte, error) {
	var size uint64
	var shift uint
	for {
		if len(delta) == 0 {
			return 0, nil, plumbing.NewError(plumbing.ErrDelta, "truncated delta size varint")
		}
		b := delta[0]
		delta = delta[1:]
		size |= uint64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	return size, delta, nil
}

type offsetField struct {
	mask  byte
	shift uint
}

var copyOffsetFields = []offsetField{
	{0x01, 0}, {0x02, 8}, {0x04, 16}, {0x08, 24},
}

var copySizeFields = []offsetField{
	{0x10, 0}, {0x20, 8}, {0x40, 16},
}

// Apply resolves a delta against its fully-inflated base, producing
// the fully-inflated result (spec.md §4.4 steps 4-6). delta is the
// whole inflated delta stream, including its leading base/result size
// varints, which Apply reads itself through ReadDeltaHeader.
func Apply(base, delta []byte) ([]byte, error) {
	baseSize, resultSize, instructions, err := ReadDeltaHeader(delta)
	if err != nil {
		return nil, err
	}
	if baseSize != uint64(len(base)) {
		return nil, plumbing.NewError(plumbing.ErrDelta, "delta base size mismatch: want %d, have %d", baseSize, len(base))
	}

	out := make([]byte, 0, resultSize)

	for len(instructions) > 0 {
		cmd := instructions[0]
		instructions = instructions[1:]

		switch {
		case cmd&0x80 != 0: // COPY
			var offset, size uint64
			for _, f := range copyOffsetFields {
				if cmd&f.mask != 0 {
					if len(instructions) == 0 {
						return nil, plumbing.NewError(plumbing.ErrDelta, "truncated copy offset")
					}
					offset |= uint64(instructions[0]) << f.shift
					instructions = instructions[1:]
				}
			}
			for _, f := range copySizeFields {
				if cmd&f.mask != 0 {
					if len(instructions) == 0 {
						return nil, plumbing.NewError(plumbing.ErrDelta, "truncated copy size")
					}
					size |= uint64(instructions[0]) << f.shift
					instructions = instructions[1:]
				}
			}
			if size == 0 {
				size = 0x10000
			}
			if offset+size < offset || offset+size > uint64(len(base)) {
				return nil, plumbing.NewError(plumbing.ErrDelta, "copy instruction out of bounds")
			}
			if uint64(len(out))+size > resultSize {
				return nil, plumbing.NewError(plumbing.ErrDelta, "copy instruction overruns result size")
			}
			out = append(out, base[offset:offset+size]...)

		case cmd != 0: // INSERT
			size := int(cmd)
			if len(instructions) < size {
				return nil, plumbing.NewError(plumbing.ErrDelta, "truncated insert payload")
			}
			if uint64(len(out))+uint64(size) > resultSize {
				return nil, plumbing.NewError(plumbing.ErrDelta, "insert instruction overruns result size")
			}
			out = append(out, instructions[:size]...)
			instructions = instructions[size:]

		default: // cmd == 0: reserved
			return nil, plumbing.NewError(plumbing.ErrDelta, "reserved zero delta instruction")
		}
	}

	if uint64(len(out)) != resultSize {
		return nil, plumbing.NewError(plumbing.ErrDelta, "delta result size mismatch: want %d, have %d", resultSize, len(out))
	}
	trace.Delta.Printf("applied delta: base=%d result=%d", len(base), len(out))
	return out, nil
}
