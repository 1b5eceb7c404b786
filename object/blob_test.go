package object_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haxorof/gitpack/object"
	"github.com/haxorof/gitpack/plumbing"
	"github.com/haxorof/gitpack/plumbing/hash"
)

func TestBlob_EncodeIsRawData(t *testing.T) {
	b := object.NewBlob([]byte("hello\n"))
	require.Equal(t, plumbing.BlobObject, b.Kind())
	require.Equal(t, []byte("hello\n"), b.Encode())
}

func TestParse_DispatchesByKind(t *testing.T) {
	obj, err := object.Parse(object.Raw{Kind: plumbing.BlobObject, Data: []byte("x")})
	require.NoError(t, err)
	_, ok := obj.(*object.Blob)
	require.True(t, ok)

	_, err = object.Parse(object.Raw{Kind: plumbing.AnyObject, Data: []byte("x")})
	require.ErrorIs(t, err, plumbing.ErrParse)
}

func TestID_ComputesCanonicalHash(t *testing.T) {
	b := object.NewBlob(nil)
	id := object.ID(hash.SHA1, b)
	// The empty blob's id is the well-known git constant.
	require.Equal(t, "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391", id.String())
}
