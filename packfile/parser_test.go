package packfile_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haxorof/gitpack/internal/zlib"
	"github.com/haxorof/gitpack/packfile"
	"github.com/haxorof/gitpack/plumbing"
	"github.com/haxorof/gitpack/plumbing/hash"
)

func packHeader(count uint32) []byte {
	buf := make([]byte, 12)
	copy(buf[:4], packfile.Magic[:])
	binary.BigEndian.PutUint32(buf[4:8], packfile.Version)
	binary.BigEndian.PutUint32(buf[8:12], count)
	return buf
}

func deflateOrFail(t *testing.T, data []byte) []byte {
	t.Helper()
	out, err := zlib.Deflate(data)
	require.NoError(t, err)
	return out
}

// buildBlobPack returns a well-formed single-blob packfile, trailer
// included.
func buildBlobPack(t *testing.T, content []byte) []byte {
	t.Helper()

	body := append([]byte{}, packHeader(1)...)
	body = append(body, packfile.EncodeEntryHeader(plumbing.BlobObject, uint64(len(content)))...)
	body = append(body, deflateOrFail(t, content)...)

	h := hash.New(hash.SHA1)
	h.Write(body) //nolint:errcheck
	return append(body, h.Sum(nil)...)
}

// buildOfsDeltaPack returns a packfile with a base blob followed by an
// ofs-delta entry whose instructions are supplied verbatim (already
// including the delta's own baseSize/resultSize varints).
func buildOfsDeltaPack(t *testing.T, base []byte, deltaInstructions []byte) []byte {
	t.Helper()

	body := append([]byte{}, packHeader(2)...)

	baseOffset := uint64(len(body))
	body = append(body, packfile.EncodeEntryHeader(plumbing.BlobObject, uint64(len(base)))...)
	body = append(body, deflateOrFail(t, base)...)

	deltaPos := uint64(len(body))
	backDistance := deltaPos - baseOffset
	body = append(body, packfile.EncodeOfsDeltaHeader(uint64(len(deltaInstructions)), backDistance)...)
	body = append(body, deflateOrFail(t, deltaInstructions)...)

	h := hash.New(hash.SHA1)
	h.Write(body) //nolint:errcheck
	return append(body, h.Sum(nil)...)
}

func parseWhole(t *testing.T, pack []byte) (plumbing.OID, int) {
	t.Helper()
	var oid plumbing.OID
	objects := 0
	cb := &packfile.Callbacks{
		ObjectComplete: func(_ uint64, _ uint32, o plumbing.OID) int {
			oid = o
			objects++
			return 0
		},
	}
	p := packfile.NewParser(packfile.WithCallbacks(cb))
	require.NoError(t, p.Parse(pack))
	require.True(t, p.Done())
	return oid, objects
}

func TestParser_SingleBlob(t *testing.T) {
	pack := buildBlobPack(t, []byte("hello\nworld\n"))
	oid, objects := parseWhole(t, pack)
	require.Equal(t, 1, objects)
	require.False(t, oid.IsZero())
}

func TestParser_ResumableAcrossEverySplit(t *testing.T) {
	pack := buildBlobPack(t, []byte("the quick brown fox jumps over the lazy dog"))
	baseline, _ := parseWhole(t, pack)

	for split := 1; split < len(pack); split++ {
		var oid plumbing.OID
		cb := &packfile.Callbacks{
			ObjectComplete: func(_ uint64, _ uint32, o plumbing.OID) int {
				oid = o
				return 0
			},
		}
		p := packfile.NewParser(packfile.WithCallbacks(cb))
		require.NoError(t, p.Parse(pack[:split]), "split at %d", split)
		require.NoError(t, p.Parse(pack[split:]), "split at %d", split)
		require.True(t, p.Done(), "split at %d", split)
		require.True(t, oid.Equal(baseline), "split at %d", split)
	}
}

func TestParser_ResumableOneByteAtATime(t *testing.T) {
	pack := buildBlobPack(t, []byte("another payload, a little longer this time"))
	baseline, _ := parseWhole(t, pack)

	var oid plumbing.OID
	cb := &packfile.Callbacks{
		ObjectComplete: func(_ uint64, _ uint32, o plumbing.OID) int {
			oid = o
			return 0
		},
	}
	p := packfile.NewParser(packfile.WithCallbacks(cb))
	for i := range pack {
		require.NoError(t, p.Parse(pack[i:i+1]))
	}
	require.True(t, p.Done())
	require.True(t, oid.Equal(baseline))
}

func TestParser_OfsDelta(t *testing.T) {
	base := []byte("hello world")
	instructions := []byte{
		0x0B, 0x12,
		0x90, 0x06,
		0x07, 't', 'h', 'e', 'r', 'e', ',', ' ',
		0x91, 0x06, 0x05,
	}
	pack := buildOfsDeltaPack(t, base, instructions)

	var deltaSeen bool
	var baseOffsetSeen uint64
	cb := &packfile.Callbacks{
		DeltaStart: func(position uint64, kind plumbing.ObjectType, _ uint16, _ uint64, baseOID *plumbing.OID, baseOffset uint64) int {
			deltaSeen = true
			baseOffsetSeen = baseOffset
			require.Equal(t, plumbing.OFSDeltaObject, kind)
			require.Nil(t, baseOID)
			return 0
		},
	}
	p := packfile.NewParser(packfile.WithCallbacks(cb))
	require.NoError(t, p.Parse(pack))
	require.True(t, p.Done())
	require.True(t, deltaSeen)
	require.Equal(t, uint64(12), baseOffsetSeen) // packHeader(2) is 12 bytes
}

func TestParser_BadMagicFails(t *testing.T) {
	pack := buildBlobPack(t, []byte("x"))
	pack[0] = 'X'

	p := packfile.NewParser()
	err := p.Parse(pack)
	require.ErrorIs(t, err, plumbing.ErrParse)
	require.True(t, p.Failed())
}

func TestParser_CorruptTrailerFails(t *testing.T) {
	pack := buildBlobPack(t, []byte("hello\n"))
	pack[len(pack)-1] ^= 0xFF

	p := packfile.NewParser()
	err := p.Parse(pack)
	require.ErrorIs(t, err, plumbing.ErrInvalidChecksum)
}

func TestParser_WrongVersionFails(t *testing.T) {
	pack := buildBlobPack(t, []byte("x"))
	binary.BigEndian.PutUint32(pack[4:8], 3)

	p := packfile.NewParser()
	err := p.Parse(pack)
	require.ErrorIs(t, err, plumbing.ErrInvalidVersion)
}

func TestParser_CallbackAbortStopsParsing(t *testing.T) {
	pack := buildBlobPack(t, []byte("hello\n"))
	cb := &packfile.Callbacks{
		ObjectStart: func(uint64, uint16, plumbing.ObjectType, uint64) int { return 7 },
	}
	p := packfile.NewParser(packfile.WithCallbacks(cb))
	err := p.Parse(pack)
	require.Error(t, err)
	var aborted *plumbing.CallbackAbortedError
	require.ErrorAs(t, err, &aborted)
	require.Equal(t, 7, aborted.Code)
}
