package plumbing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haxorof/gitpack/plumbing"
)

const (
	emptySHA1 = "da39a3ee5e6b4b0d3255bfef95601890afd80709"
	otherSHA1 = "0000000000000000000000000000000000000001"
)

func TestOID_FromHexRoundTrip(t *testing.T) {
	id, ok := plumbing.FromHex(emptySHA1)
	require.True(t, ok)
	require.Equal(t, emptySHA1, id.String())
	require.Equal(t, 20, id.Size())
	require.False(t, id.IsZero())
}

func TestOID_FromHexRejectsBadInput(t *testing.T) {
	_, ok := plumbing.FromHex("abcd")
	require.False(t, ok)

	_, ok = plumbing.FromHex("not-hex-but-forty-characters-long!!!!!!!")
	require.False(t, ok)
}

func TestOID_NewOIDInfersAlgorithmFromLength(t *testing.T) {
	raw := make([]byte, 20)
	id, ok := plumbing.NewOID(raw)
	require.True(t, ok)
	require.True(t, id.IsZero())

	_, ok = plumbing.NewOID(make([]byte, 7))
	require.False(t, ok)
}

func TestOID_EqualAndCompare(t *testing.T) {
	a, _ := plumbing.FromHex(emptySHA1)
	a2, _ := plumbing.FromHex(emptySHA1)
	b, _ := plumbing.FromHex(otherSHA1)

	require.True(t, a.Equal(a2))
	require.False(t, a.Equal(b))
	require.Equal(t, 0, a.Compare(a2))
	require.NotEqual(t, 0, a.Compare(b))

	if a.Compare(b) < 0 {
		require.True(t, a.Less(b))
		require.False(t, b.Less(a))
	} else {
		require.True(t, b.Less(a))
		require.False(t, a.Less(b))
	}
}

func TestPrefix_MatchAndLen(t *testing.T) {
	id, _ := plumbing.FromHex(emptySHA1)
	p, err := plumbing.NewPrefix(emptySHA1[:6])
	require.NoError(t, err)
	require.Equal(t, 6, p.Len())
	require.True(t, p.Match(id))
	require.Equal(t, emptySHA1[:6], p.String())

	other, _ := plumbing.FromHex(otherSHA1)
	require.False(t, p.Match(other))
}

func TestPrefix_OddNibbleCount(t *testing.T) {
	id, _ := plumbing.FromHex(emptySHA1)
	p, err := plumbing.NewPrefix(emptySHA1[:5])
	require.NoError(t, err)
	require.Equal(t, 5, p.Len())
	require.True(t, p.Match(id))
	require.Equal(t, emptySHA1[:5], p.String())
}

func TestPrefix_TooShortIsRejected(t *testing.T) {
	_, err := plumbing.NewPrefix("abc")
	require.ErrorIs(t, err, plumbing.ErrInvalidPrefix)
}

func TestPrefix_TooLongForAlgorithmIsRejected(t *testing.T) {
	tooLong := emptySHA1 + emptySHA1[:25] // 65 hex chars, past SHA-256's 64
	_, err := plumbing.NewPrefix(tooLong)
	require.ErrorIs(t, err, plumbing.ErrInvalidPrefix)
}
