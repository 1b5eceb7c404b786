package object

import (
	"bytes"
	"fmt"

	"github.com/haxorof/gitpack/plumbing"
)

// Tag is an annotated tag pointing at another object (spec.md §3).
type Tag struct {
	Target     plumbing.OID
	TargetKind plumbing.ObjectType
	Name       string
	Tagger     *Signature
	HasTagger  bool
	Message    string
}

// ParseTag decodes a tag's inflated payload (spec.md §4.2): "object
// <hex>\n", "type <kindname>\n", "tag <name>\n", an optional "tagger
// <signature>\n", a blank line, then the message.
func ParseTag(data []byte) (*Tag, error) {
	t := &Tag{}

	line, rest, err := nextLine(data)
	if err != nil {
		return nil, err
	}
	if t.Target, err = parseOIDField(line, []byte("object ")); err != nil {
		return nil, err
	}

	line, rest, err = nextLine(rest)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(line, []byte("type ")) {
		return nil, plumbing.NewError(plumbing.ErrParse, "expected type line, got %q", line)
	}
	kind, err := plumbing.ParseObjectType(string(line[len("type "):]))
	if err != nil {
		return nil, plumbing.NewError(plumbing.ErrParse, "invalid tag target type: %v", err)
	}
	t.TargetKind = kind

	line, rest, err = nextLine(rest)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(line, []byte("tag ")) {
		return nil, plumbing.NewError(plumbing.ErrParse, "expected tag line, got %q", line)
	}
	t.Name = string(line[len("tag "):])

	line, next, err := nextLine(rest)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(line, []byte("tagger ")) {
		sig := ParseSignature(line[len("tagger "):])
		t.Tagger = &sig
		t.HasTagger = true
		rest = next
		line, rest, err = nextLine(rest)
		if err != nil {
			return nil, err
		}
	} else {
		rest = next
	}
	if len(line) != 0 {
		return nil, plumbing.NewError(plumbing.ErrParse, "expected blank line before tag message, got %q", line)
	}

	t.Message = string(rest)
	return t, nil
}

func (t *Tag) Kind() plumbing.ObjectType { return plumbing.TagObject }

// Encode returns the canonical tag payload, used to recompute its OID.
func (t *Tag) Encode() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "object %s\n", t.Target.String())
	fmt.Fprintf(&buf, "type %s\n", t.TargetKind.String())
	fmt.Fprintf(&buf, "tag %s\n", t.Name)
	if t.HasTagger && t.Tagger != nil {
		fmt.Fprintf(&buf, "tagger %s\n", encodeSignature(*t.Tagger))
	}
	buf.WriteByte('\n')
	buf.WriteString(t.Message)
	return buf.Bytes()
}
