package plumbing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haxorof/gitpack/plumbing"
)

func TestShortIDIndex_SingleInsertHitsFloor(t *testing.T) {
	idx := plumbing.NewShortIDIndex(4)
	id, _ := plumbing.FromHex(emptySHA1)
	require.Equal(t, 4, idx.Insert(id))
	require.Equal(t, 4, idx.Len())
}

func TestShortIDIndex_DuplicateNeverShrinks(t *testing.T) {
	idx := plumbing.NewShortIDIndex(4)
	id, _ := plumbing.FromHex(emptySHA1)
	idx.Insert(id)
	require.Equal(t, 4, idx.Insert(id))
}

func TestShortIDIndex_CollisionGrowsPastSharedNibbles(t *testing.T) {
	idx := plumbing.NewShortIDIndex(4)
	// Both ids share their first 4 nibbles ("aaaa") and diverge at the
	// 5th, so disambiguation needs at least 5.
	a, _ := plumbing.FromHex("aaaa00000000000000000000000000000000000a")
	b, _ := plumbing.FromHex("aaaa11111111111111111111111111111111111b")

	idx.Insert(a)
	got := idx.Insert(b)
	require.GreaterOrEqual(t, got, 5)
	require.Equal(t, got, idx.Len())
}

func TestShortIDIndex_IdenticalFirstBytesRequireFullLength(t *testing.T) {
	idx := plumbing.NewShortIDIndex(4)
	a, _ := plumbing.FromHex("111111111111111111111111111111111111111a")
	b, _ := plumbing.FromHex("111111111111111111111111111111111111111b")

	idx.Insert(a)
	got := idx.Insert(b)
	require.Equal(t, 40, got) // diverge only in the very last nibble
}

func TestShortIDIndex_DefaultsMinWhenNonPositive(t *testing.T) {
	idx := plumbing.NewShortIDIndex(0)
	require.Equal(t, plumbing.MinPrefixLen, idx.Len())
}
