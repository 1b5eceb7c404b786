// Package zlib adapts klauspost/compress/zlib, an io.Reader-oriented
// decompressor, to the byte-resumable push model the packfile parser
// needs (spec.md §4.3): callers feed arbitrarily-sized chunks and get
// back whatever output has become available so far.
//
// compress/flate's Reader cannot be paused mid-stream and resumed
// later with more input without losing its internal bit-reader state,
// and the parser is barred from using goroutines or blocking I/O to
// work around that (spec.md §5: "no internal blocking... none of
// these yield control back to the caller"). Inflater instead re-runs
// the decoder from the start of the buffered-so-far compressed bytes
// on every Feed call and returns only the output bytes beyond what it
// already emitted. This is O(chunks × size) instead of O(size), a
// deliberate trade documented in DESIGN.md; entries are expected to
// be modest in size for this module's use cases.
package zlib

import (
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/haxorof/gitpack/plumbing"
)

// Inflater incrementally decodes a single zlib stream.
type Inflater struct {
	buf      []byte
	emitted  int
	done     bool
	consumed int
}

// NewInflater returns an empty, ready-to-feed Inflater.
func NewInflater() *Inflater {
	return &Inflater{}
}

// Feed appends p to the buffered compressed input and returns any
// newly decoded output. done reports whether the zlib stream has
// reached its logical end (checksum verified); once true, Consumed
// reports exactly how many of the fed bytes (across all Feed calls)
// belong to this stream — any excess belongs to whatever follows in
// the pack and must be re-fed to the next consumer.
func (in *Inflater) Feed(p []byte) (out []byte, done bool, err error) {
	if in.done {
		return nil, true, plumbing.NewError(plumbing.ErrState, "zlib: Feed called after stream completed")
	}
	in.buf = append(in.buf, p...)

	cr := &countingReader{r: bytes.NewReader(in.buf)}
	zr, zerr := zlib.NewReader(cr)
	if zerr != nil {
		if isShortRead(zerr) {
			return nil, false, nil
		}
		return nil, false, plumbing.NewError(plumbing.ErrZlib, "%v", zerr)
	}
	defer zr.Close() //nolint:errcheck

	full, rerr := io.ReadAll(zr)
	if rerr != nil {
		if isShortRead(rerr) {
			if len(full) <= in.emitted {
				return nil, false, nil
			}
			fresh := full[in.emitted:]
			in.emitted = len(full)
			return fresh, false, nil
		}
		return nil, false, plumbing.NewError(plumbing.ErrZlib, "%v", rerr)
	}

	if len(full) < in.emitted {
		return nil, false, plumbing.NewError(plumbing.ErrZlib, "inflate output shrank across Feed calls")
	}
	fresh := full[in.emitted:]
	in.emitted = len(full)
	in.done = true
	in.consumed = cr.n

	return fresh, true, nil
}

// Consumed returns the number of fed bytes that belonged to this
// stream. Valid only once Feed has reported done=true.
func (in *Inflater) Consumed() int { return in.consumed }

// Leftover returns bytes fed but not consumed by this stream: the
// start of whatever follows in the pack.
func (in *Inflater) Leftover() []byte {
	return append([]byte(nil), in.buf[in.consumed:]...)
}

func isShortRead(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

type countingReader struct {
	r *bytes.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

// Deflate compresses data as a single zlib stream, used for
// synthesizing thin-pack base entries (spec.md §4.5) where the whole
// payload is known up front and no resumability is needed.
func Deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, plumbing.NewError(plumbing.ErrZlib, "%v", err)
	}
	if err := w.Close(); err != nil {
		return nil, plumbing.NewError(plumbing.ErrZlib, "%v", err)
	}
	return buf.Bytes(), nil
}
