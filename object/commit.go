package object

import (
	"bytes"
	"fmt"

	"github.com/haxorof/gitpack/plumbing"
)

// Commit is a snapshot of the tree plus provenance (spec.md §3).
type Commit struct {
	Tree      plumbing.OID
	Parents   []plumbing.OID
	Author    Signature
	Committer Signature
	Message   string
}

// ParseCommit decodes a commit's inflated payload (spec.md §4.2):
// "tree <hex>\n", zero or more "parent <hex>\n", "author
// <signature>\n", "committer <signature>\n", then a blank line, then
// the message verbatim. Any further header line between the
// committer line and the blank line (encoding, gpgsig, ...) is
// ignored.
func ParseCommit(data []byte) (*Commit, error) {
	c := &Commit{}

	line, rest, err := nextLine(data)
	if err != nil {
		return nil, err
	}
	if c.Tree, err = parseOIDField(line, []byte("tree ")); err != nil {
		return nil, err
	}

	for {
		line, next, err := nextLine(rest)
		if err != nil {
			return nil, err
		}
		if !bytes.HasPrefix(line, []byte("parent ")) {
			break
		}
		parent, err := parseOIDField(line, []byte("parent "))
		if err != nil {
			return nil, err
		}
		c.Parents = append(c.Parents, parent)
		rest = next
	}

	line, rest, err = nextLine(rest)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(line, []byte("author ")) {
		return nil, plumbing.NewError(plumbing.ErrParse, "expected author line, got %q", line)
	}
	c.Author = ParseSignature(line[len("author "):])

	line, rest, err = nextLine(rest)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(line, []byte("committer ")) {
		return nil, plumbing.NewError(plumbing.ErrParse, "expected committer line, got %q", line)
	}
	c.Committer = ParseSignature(line[len("committer "):])

	for {
		line, next, err := nextLine(rest)
		if err != nil {
			return nil, err
		}
		rest = next
		if len(line) == 0 {
			break
		}
		// unknown header (encoding, gpgsig, mergetag, ...): ignored
	}

	c.Message = string(rest)
	return c, nil
}

func (c *Commit) Kind() plumbing.ObjectType { return plumbing.CommitObject }

// Encode returns the canonical commit payload, used to recompute its
// OID (spec.md §4.2).
func (c *Commit) Encode() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree.String())
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p.String())
	}
	fmt.Fprintf(&buf, "author %s\n", encodeSignature(c.Author))
	fmt.Fprintf(&buf, "committer %s\n", encodeSignature(c.Committer))
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}
