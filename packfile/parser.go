package packfile

import (
	"bytes"
	"hash"
	"hash/crc32"

	"github.com/haxorof/gitpack/internal/trace"
	"github.com/haxorof/gitpack/internal/zlib"
	"github.com/haxorof/gitpack/plumbing"
	gohash "github.com/haxorof/gitpack/plumbing/hash"
)

type state int

const (
	stateHeader state = iota
	stateEntryStart
	stateEntryHeader
	stateDeltaHeader
	stateData
	stateTrailer
	stateComplete
	stateFailed
)

// Parser is a byte-resumable push-model packfile decoder (C6,
// spec.md §4.3). Callers feed it arbitrarily-sized, arbitrarily-split
// chunks via Parse; every accumulator that needs to survive a chunk
// boundary lives on the Parser itself, per spec.md's resumability
// invariant. It is not safe for concurrent use.
type Parser struct {
	algo      gohash.Algorithm
	callbacks *Callbacks

	state state

	headerBuf []byte // accumulates the 12-byte preamble
	Header    Header

	position      uint64 // absolute bytes consumed so far
	entriesSeen   uint32
	packHash      hash.Hash // running digest over everything before the trailer

	// per-entry scratch, reset at stateEntryStart
	entryPos    uint64
	entryHdrAcc headerAccumulator
	entryHdrLen uint16
	entryCRC    hash.Hash32
	isDelta     bool
	deltaRefBuf []byte // accumulates a ref-delta's raw base OID
	deltaOfsAcc ofsAccumulator
	baseOID     *plumbing.OID
	baseOffset  uint64

	inflater   *zlib.Inflater
	objHasher  *plumbing.StreamingHasher
	entryFed   int // total bytes ever handed to inflater.Feed for this entry

	trailerBuf []byte

	err error
}

// NewParser returns a Parser ready to accept the first chunk.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{algo: gohash.SHA1}
	for _, opt := range opts {
		opt(p)
	}
	p.packHash = gohash.New(p.algo)
	return p
}

// Parse feeds the next chunk of packfile bytes. It is legal to call
// this with chunks split at any byte boundary whatsoever, including
// inside a header byte, inside a varint, or mid-deflate-stream.
func (p *Parser) Parse(chunk []byte) error {
	if p.state == stateFailed {
		return p.err
	}
	if p.state == stateComplete {
		return p.fail(plumbing.NewError(plumbing.ErrState, "Parse called after packfile_complete"))
	}

	data := chunk
	for {
		switch p.state {
		case stateHeader:
			if !p.stepHeader(&data) {
				if p.state == stateFailed {
					return p.err
				}
				return nil
			}
		case stateEntryStart:
			if p.entriesSeen == p.Header.Count {
				p.state = stateTrailer
				p.trailerBuf = p.trailerBuf[:0]
				continue
			}
			p.resetEntry()
			p.state = stateEntryHeader
		case stateEntryHeader:
			if len(data) == 0 {
				return nil
			}
			b := data[0]
			data = data[1:]
			p.consumeHashed(b)
			p.entryHdrLen++
			p.entryCRC.Write([]byte{b}) //nolint:errcheck
			if p.entryHdrAcc.step(b) {
				if err := p.finishHeaderVarint(); err != nil {
					return p.fail(err)
				}
			}
		case stateDeltaHeader:
			if len(data) == 0 {
				return nil
			}
			if err := p.stepDeltaHeader(&data); err != nil {
				return p.fail(err)
			}
		case stateData:
			if len(data) == 0 {
				return nil
			}
			done, err := p.stepData(&data)
			if err != nil {
				return p.fail(err)
			}
			if done {
				if err := p.finishEntry(); err != nil {
					return p.fail(err)
				}
				p.state = stateEntryStart
			}
		case stateTrailer:
			if len(data) == 0 {
				return nil
			}
			need := p.algo.Size() - len(p.trailerBuf)
			take := need
			if take > len(data) {
				take = len(data)
			}
			p.trailerBuf = append(p.trailerBuf, data[:take]...)
			data = data[take:]
			if len(p.trailerBuf) < p.algo.Size() {
				return nil
			}
			if err := p.finishTrailer(); err != nil {
				return p.fail(err)
			}
			p.state = stateComplete
			if len(data) > 0 {
				return p.fail(plumbing.NewError(plumbing.ErrState, "trailing bytes after packfile trailer"))
			}
			return nil
		case stateComplete:
			return nil
		}
	}
}

func (p *Parser) stepHeader(data *[]byte) bool {
	need := 12 - len(p.headerBuf)
	take := need
	if take > len(*data) {
		take = len(*data)
	}
	for _, b := range (*data)[:take] {
		p.consumeHashed(b)
	}
	p.headerBuf = append(p.headerBuf, (*data)[:take]...)
	*data = (*data)[take:]
	if len(p.headerBuf) < 12 {
		return false
	}

	if !bytes.Equal(p.headerBuf[:4], Magic[:]) {
		p.fail(plumbing.NewError(plumbing.ErrParse, "bad packfile magic"))
		return false
	}
	version := beU32(p.headerBuf[4:8])
	count := beU32(p.headerBuf[8:12])
	if version != Version {
		p.fail(plumbing.NewError(plumbing.ErrInvalidVersion, "version %d", version))
		return false
	}
	p.Header = Header{Version: version, Count: count}

	if code := p.callbacks.packfileHeader(version, count); code != 0 {
		p.fail(&plumbing.CallbackAbortedError{Code: code})
		return false
	}

	trace.Parser.Printf("packfile header: version=%d entries=%d", version, count)
	p.state = stateEntryStart
	return true
}

func (p *Parser) resetEntry() {
	p.entryPos = p.position
	p.entryHdrAcc = headerAccumulator{}
	p.entryHdrLen = 0
	p.entryCRC = crc32.NewIEEE()
	p.isDelta = false
	p.deltaRefBuf = p.deltaRefBuf[:0]
	p.deltaOfsAcc = ofsAccumulator{}
	p.baseOID = nil
	p.baseOffset = 0
	p.inflater = zlib.NewInflater()
	p.objHasher = nil
	p.entryFed = 0
}

func (p *Parser) finishHeaderVarint() error {
	kind := p.entryHdrAcc.typ
	size := p.entryHdrAcc.size

	switch kind {
	case plumbing.OFSDeltaObject, plumbing.REFDeltaObject:
		p.isDelta = true
		p.state = stateDeltaHeader
		return nil
	case plumbing.CommitObject, plumbing.TreeObject, plumbing.BlobObject, plumbing.TagObject:
		if code := p.callbacks.objectStart(p.entryPos, p.entryHdrLen, kind, size); code != 0 {
			return &plumbing.CallbackAbortedError{Code: code}
		}
		p.objHasher = plumbing.NewStreamingHasher(p.algo, kind, int64(size))
		p.state = stateData
		return nil
	default:
		return plumbing.NewError(plumbing.ErrParse, "invalid object type code %d", kind)
	}
}

func (p *Parser) stepDeltaHeader(data *[]byte) error {
	if p.entryHdrAcc.typ == plumbing.REFDeltaObject {
		need := p.algo.Size() - len(p.deltaRefBuf)
		take := need
		if take > len(*data) {
			take = len(*data)
		}
		for _, b := range (*data)[:take] {
			p.consumeHashed(b)
			p.entryHdrLen++
			p.entryCRC.Write([]byte{b}) //nolint:errcheck
		}
		p.deltaRefBuf = append(p.deltaRefBuf, (*data)[:take]...)
		*data = (*data)[take:]
		if len(p.deltaRefBuf) < p.algo.Size() {
			return nil
		}
		oid, ok := plumbing.NewOID(p.deltaRefBuf)
		if !ok {
			return plumbing.NewError(plumbing.ErrParse, "invalid ref-delta base id")
		}
		p.baseOID = &oid
		return p.startDeltaData()
	}

	// ofs-delta
	for len(*data) > 0 {
		b := (*data)[0]
		*data = (*data)[1:]
		p.consumeHashed(b)
		p.entryHdrLen++
		p.entryCRC.Write([]byte{b}) //nolint:errcheck
		if p.deltaOfsAcc.step(b) {
			offset := p.deltaOfsAcc.n
			if offset == 0 || offset > p.entryPos {
				return plumbing.NewError(plumbing.ErrDelta, "non-positive or forward-pointing ofs-delta base")
			}
			p.baseOffset = p.entryPos - offset
			return p.startDeltaData()
		}
	}
	return nil
}

func (p *Parser) startDeltaData() error {
	kind := p.entryHdrAcc.typ
	size := p.entryHdrAcc.size
	if code := p.callbacks.deltaStart(p.entryPos, kind, p.entryHdrLen, size, p.baseOID, p.baseOffset); code != 0 {
		return &plumbing.CallbackAbortedError{Code: code}
	}
	p.state = stateData
	return nil
}

// stepData feeds the remainder of the current chunk into the
// inflater and forwards any newly available bytes to the appropriate
// data callback. It reports done once the entry's deflated payload
// (and checksum) has been fully consumed, leaving unconsumed bytes in
// *data for the next entry.
func (p *Parser) stepData(data *[]byte) (bool, error) {
	fedBefore := p.entryFed
	p.entryFed += len(*data)

	out, done, err := p.inflater.Feed(*data)
	if err != nil {
		return false, err
	}

	if !done {
		for _, b := range *data {
			p.consumeHashed(b)
		}
		p.entryCRC.Write(*data) //nolint:errcheck
		*data = nil
		if err := p.emit(out); err != nil {
			return false, err
		}
		return false, nil
	}

	usedThisCall := p.inflater.Consumed() - fedBefore
	if usedThisCall < 0 || usedThisCall > len(*data) {
		return false, plumbing.NewError(plumbing.ErrZlib, "inconsistent inflater accounting")
	}
	used := (*data)[:usedThisCall]
	for _, b := range used {
		p.consumeHashed(b)
	}
	p.entryCRC.Write(used) //nolint:errcheck
	*data = (*data)[usedThisCall:]

	if err := p.emit(out); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Parser) emit(out []byte) error {
	if len(out) == 0 {
		return nil
	}
	if p.isDelta {
		if code := p.callbacks.deltaData(out); code != 0 {
			return &plumbing.CallbackAbortedError{Code: code}
		}
		return nil
	}
	p.objHasher.Write(out) //nolint:errcheck
	if code := p.callbacks.objectData(out); code != 0 {
		return &plumbing.CallbackAbortedError{Code: code}
	}
	return nil
}

func (p *Parser) finishEntry() error {
	compressedSize := uint64(p.entryHdrLen) + uint64(p.inflater.Consumed())
	crc := p.entryCRC.Sum32()

	if p.isDelta {
		if code := p.callbacks.deltaComplete(compressedSize, crc); code != 0 {
			return &plumbing.CallbackAbortedError{Code: code}
		}
	} else {
		oid := p.objHasher.Sum()
		if code := p.callbacks.objectComplete(compressedSize, crc, oid); code != 0 {
			return &plumbing.CallbackAbortedError{Code: code}
		}
	}
	p.entriesSeen++
	return nil
}

func (p *Parser) finishTrailer() error {
	computed := p.packHash.Sum(nil)
	if !bytes.Equal(computed, p.trailerBuf) {
		return plumbing.NewError(plumbing.ErrInvalidChecksum, "packfile trailer mismatch")
	}
	if code := p.callbacks.packfileComplete(p.trailerBuf); code != 0 {
		return &plumbing.CallbackAbortedError{Code: code}
	}
	trace.Parser.Printf("packfile complete: %d entries", p.entriesSeen)
	return nil
}

// consumeHashed advances the absolute position counter and, while
// still before the trailer, feeds the byte into the running packfile
// digest (spec.md §4.3 invariant).
func (p *Parser) consumeHashed(b byte) {
	p.position++
	p.packHash.Write([]byte{b}) //nolint:errcheck
}

func (p *Parser) fail(err error) error {
	p.state = stateFailed
	p.err = err
	return err
}

// Done reports whether the parser has reached packfile_complete.
func (p *Parser) Done() bool { return p.state == stateComplete }

// Failed reports whether the parser is in its terminal failure state.
func (p *Parser) Failed() bool { return p.state == stateFailed }

// Position returns the number of bytes consumed so far.
func (p *Parser) Position() uint64 { return p.position }

func beU32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
