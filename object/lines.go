package object

import (
	"bytes"

	"github.com/haxorof/gitpack/plumbing"
)

// nextLine splits off the next '\n'-terminated line from data,
// returning the line (without the newline) and the remainder. It
// fails if data is exhausted before a newline is found, since every
// header line in a commit/tag is newline-terminated by construction.
func nextLine(data []byte) (line, rest []byte, err error) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return nil, nil, plumbing.NewError(plumbing.ErrParse, "unterminated header line")
	}
	return data[:i], data[i+1:], nil
}

func parseOIDField(field, prefix []byte) (plumbing.OID, error) {
	if !bytes.HasPrefix(field, prefix) {
		return plumbing.OID{}, plumbing.NewError(plumbing.ErrParse, "expected %q, got %q", prefix, field)
	}
	id, ok := plumbing.FromHex(string(field[len(prefix):]))
	if !ok {
		return plumbing.OID{}, plumbing.NewError(plumbing.ErrParse, "invalid object id in %q", field)
	}
	return id, nil
}
