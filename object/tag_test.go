package object_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haxorof/gitpack/object"
	"github.com/haxorof/gitpack/plumbing"
)

const targetHex = "111111111111111111111111111111111111111a"

func TestParseTag_RoundTrip(t *testing.T) {
	raw := "object " + targetHex + "\n" +
		"type commit\n" +
		"tag v1.0\n" +
		"tagger A U Thor <a@x.com> 1000 +0000\n" +
		"\n" +
		"Release\n"

	tg, err := object.ParseTag([]byte(raw))
	require.NoError(t, err)
	require.Equal(t, targetHex, tg.Target.String())
	require.Equal(t, plumbing.CommitObject, tg.TargetKind)
	require.Equal(t, "v1.0", tg.Name)
	require.True(t, tg.HasTagger)
	require.Equal(t, "A U Thor", tg.Tagger.Name)
	require.Equal(t, "Release\n", tg.Message)
}

func TestParseTag_WithoutTagger(t *testing.T) {
	raw := "object " + targetHex + "\n" +
		"type commit\n" +
		"tag v1.0\n" +
		"\n" +
		"Release\n"

	tg, err := object.ParseTag([]byte(raw))
	require.NoError(t, err)
	require.False(t, tg.HasTagger)
	require.Nil(t, tg.Tagger)
	require.Equal(t, "Release\n", tg.Message)
}

func TestParseTag_InvalidTargetType(t *testing.T) {
	raw := "object " + targetHex + "\n" +
		"type bogus\n" +
		"tag v1.0\n" +
		"\n" +
		"Release\n"

	_, err := object.ParseTag([]byte(raw))
	require.ErrorIs(t, err, plumbing.ErrParse)
}

func TestTag_EncodeRoundTrip(t *testing.T) {
	target, _ := plumbing.FromHex(targetHex)
	sig := object.Signature{Name: "A U Thor", Email: "a@x.com"}
	tg := &object.Tag{
		Target:     target,
		TargetKind: plumbing.CommitObject,
		Name:       "v1.0",
		Tagger:     &sig,
		HasTagger:  true,
		Message:    "Release\n",
	}
	require.Equal(t, plumbing.TagObject, tg.Kind())

	got, err := object.ParseTag(tg.Encode())
	require.NoError(t, err)
	require.True(t, got.Target.Equal(target))
	require.Equal(t, "v1.0", got.Name)
	require.True(t, got.HasTagger)
}
