package object_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haxorof/gitpack/object"
	"github.com/haxorof/gitpack/plumbing"
)

const (
	treeHex   = "111111111111111111111111111111111111111a"
	parentHex = "222222222222222222222222222222222222222b"
)

func TestParseCommit_RoundTrip(t *testing.T) {
	raw := "tree " + treeHex + "\n" +
		"parent " + parentHex + "\n" +
		"author A U Thor <a@x.com> 1000 +0000\n" +
		"committer A U Thor <a@x.com> 1000 +0000\n" +
		"\n" +
		"message body\n"

	c, err := object.ParseCommit([]byte(raw))
	require.NoError(t, err)
	require.Equal(t, treeHex, c.Tree.String())
	require.Len(t, c.Parents, 1)
	require.Equal(t, parentHex, c.Parents[0].String())
	require.Equal(t, "A U Thor", c.Author.Name)
	require.Equal(t, "message body\n", c.Message)
}

func TestParseCommit_IgnoresUnknownHeaderLine(t *testing.T) {
	raw := "tree " + treeHex + "\n" +
		"author A U Thor <a@x.com> 1000 +0000\n" +
		"committer A U Thor <a@x.com> 1000 +0000\n" +
		"gpgsig -----BEGIN PGP SIGNATURE-----\n" +
		"\n" +
		"msg\n"

	c, err := object.ParseCommit([]byte(raw))
	require.NoError(t, err)
	require.Empty(t, c.Parents)
	require.Equal(t, "msg\n", c.Message)
}

func TestParseCommit_MultipleParents(t *testing.T) {
	raw := "tree " + treeHex + "\n" +
		"parent " + parentHex + "\n" +
		"parent " + treeHex + "\n" +
		"author A U Thor <a@x.com> 1000 +0000\n" +
		"committer A U Thor <a@x.com> 1000 +0000\n" +
		"\n" +
		"merge\n"

	c, err := object.ParseCommit([]byte(raw))
	require.NoError(t, err)
	require.Len(t, c.Parents, 2)
}

func TestParseCommit_MissingTreeFails(t *testing.T) {
	_, err := object.ParseCommit([]byte("author A <a@x> 1 +0000\n"))
	require.ErrorIs(t, err, plumbing.ErrParse)
}

func TestCommit_EncodeRoundTrip(t *testing.T) {
	tree, _ := plumbing.FromHex(treeHex)
	sig := object.Signature{Name: "A U Thor", Email: "a@x.com", Offset: 0}

	c := &object.Commit{
		Tree:      tree,
		Author:    sig,
		Committer: sig,
		Message:   "msg\n",
	}
	require.Equal(t, plumbing.CommitObject, c.Kind())

	got, err := object.ParseCommit(c.Encode())
	require.NoError(t, err)
	require.True(t, got.Tree.Equal(tree))
	require.Equal(t, "msg\n", got.Message)
	require.Equal(t, "A U Thor", got.Author.Name)
}
