package object_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haxorof/gitpack/object"
	"github.com/haxorof/gitpack/plumbing"
	"github.com/haxorof/gitpack/plumbing/hash"
)

func treeEntryBytes(mode uint32, name string, id plumbing.OID) []byte {
	var buf bytes.Buffer
	buf.WriteString(octal(mode))
	buf.WriteByte(' ')
	buf.WriteString(name)
	buf.WriteByte(0)
	buf.Write(id.Bytes())
	return buf.Bytes()
}

func octal(mode uint32) string {
	const digits = "01234567"
	if mode == 0 {
		return "0"
	}
	var out []byte
	for mode > 0 {
		out = append([]byte{digits[mode%8]}, out...)
		mode /= 8
	}
	return string(out)
}

func TestParseTree_OrderingEnforced(t *testing.T) {
	idA, _ := plumbing.FromHex("111111111111111111111111111111111111111a")
	idB, _ := plumbing.FromHex("222222222222222222222222222222222222222b")

	var data []byte
	data = append(data, treeEntryBytes(0o100644, "a.txt", idA)...)
	data = append(data, treeEntryBytes(0o100644, "b.txt", idB)...)

	tr, err := object.ParseTree(data, hash.SHA1)
	require.NoError(t, err)
	require.Len(t, tr.Entries, 2)
	require.Equal(t, "a.txt", tr.Entries[0].Name)
	require.Equal(t, object.EntryFile, tr.Entries[0].Kind)
	require.Equal(t, "b.txt", tr.Entries[1].Name)
}

func TestParseTree_OutOfOrderRejected(t *testing.T) {
	idA, _ := plumbing.FromHex("111111111111111111111111111111111111111a")
	idB, _ := plumbing.FromHex("222222222222222222222222222222222222222b")

	var data []byte
	data = append(data, treeEntryBytes(0o100644, "b.txt", idB)...)
	data = append(data, treeEntryBytes(0o100644, "a.txt", idA)...)

	_, err := object.ParseTree(data, hash.SHA1)
	require.ErrorIs(t, err, plumbing.ErrParse)
}

func TestParseTree_DirectorySortsAsIfTrailingSlash(t *testing.T) {
	idA, _ := plumbing.FromHex("111111111111111111111111111111111111111a")
	idB, _ := plumbing.FromHex("222222222222222222222222222222222222222b")

	// "a.txt" (.=0x2e) sorts before "a" treated as "a/" (/=0x2f).
	var data []byte
	data = append(data, treeEntryBytes(0o100644, "a.txt", idA)...)
	data = append(data, treeEntryBytes(0o40000, "a", idB)...)

	tr, err := object.ParseTree(data, hash.SHA1)
	require.NoError(t, err)
	require.Len(t, tr.Entries, 2)
	require.Equal(t, object.EntryDirectory, tr.Entries[1].Kind)
}

func TestParseTree_ExecutableAndSymlinkAndGitlink(t *testing.T) {
	idA, _ := plumbing.FromHex("111111111111111111111111111111111111111a")
	idB, _ := plumbing.FromHex("222222222222222222222222222222222222222b")
	idC, _ := plumbing.FromHex("333333333333333333333333333333333333333c")

	var data []byte
	data = append(data, treeEntryBytes(0o100755, "run.sh", idA)...)
	data = append(data, treeEntryBytes(0o120000, "symlink", idB)...)
	data = append(data, treeEntryBytes(0o160000, "zzzsubmodule", idC)...)

	tr, err := object.ParseTree(data, hash.SHA1)
	require.NoError(t, err)
	require.Equal(t, object.EntryExecutable, tr.Entries[0].Kind)
	require.Equal(t, object.EntrySymlink, tr.Entries[1].Kind)
	require.Equal(t, object.EntryGitlink, tr.Entries[2].Kind)
}

func TestTree_EncodeRoundTrip(t *testing.T) {
	idA, _ := plumbing.FromHex("111111111111111111111111111111111111111a")
	tr := &object.Tree{Entries: []object.TreeEntry{
		{Mode: 0o100644, Name: "a.txt", ID: idA, Kind: object.EntryFile},
	}}
	require.Equal(t, plumbing.TreeObject, tr.Kind())

	got, err := object.ParseTree(tr.Encode(), hash.SHA1)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	require.Equal(t, "a.txt", got.Entries[0].Name)
}
