// Package object implements the typed Git objects (commit, tree, tag,
// blob) on top of raw (kind, bytes) pairs handed up by the packfile
// parser or an object store (spec.md §4.2, C4).
package object

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxOffsetMinutes bounds a signature's timezone offset to the
// documented ±14 hours (spec.md §3).
const MaxOffsetMinutes = 14 * 60

// Signature is a person+time pair: "Name <email> <epoch> ±HHMM".
type Signature struct {
	Name  string
	Email string
	// When is the UTC instant named by the epoch field.
	When time.Time
	// Offset is the signed timezone offset in minutes, bounded to
	// [-MaxOffsetMinutes, +MaxOffsetMinutes].
	Offset int
}

// ParseSignature parses a single signature line's value (everything
// after "author "/"committer "/"tagger ", without the trailing
// newline): "Name <email> <epoch> ±HHMM". Per spec.md §4.2, a
// malformed or out-of-range epoch/offset collapses to the Unix epoch
// (time.Unix(0, 0)) and a zero offset rather than failing the
// enclosing object parse; when the epoch/offset fields are absent,
// When stays the zero time.Time. Neither case affects name/email.
// This mirrors go-git's legacy
// NewSignature in spirit but follows the lenient contract instead of
// libgit2's person.c, which rejects the whole line on a bad offset.
func ParseSignature(raw []byte) Signature {
	s := string(raw)

	emailStart := strings.LastIndex(s, " <")
	if emailStart < 0 {
		return Signature{}
	}
	rest := s[emailStart+2:]
	emailEnd := strings.IndexByte(rest, '>')
	if emailEnd < 0 {
		return Signature{Name: s[:emailStart]}
	}

	sig := Signature{
		Name:  s[:emailStart],
		Email: rest[:emailEnd],
	}

	fields := strings.Fields(rest[emailEnd+1:])
	if len(fields) >= 2 {
		sig.When, sig.Offset = parseEpochAndOffset(fields[0], fields[1])
	}
	return sig
}

func parseEpochAndOffset(epoch, offset string) (time.Time, int) {
	sec, err := strconv.ParseInt(epoch, 10, 64)
	if err != nil {
		return time.Unix(0, 0).UTC(), 0
	}

	off, ok := parseOffset(offset)
	if !ok {
		return time.Unix(0, 0).UTC(), 0
	}
	return time.Unix(sec, 0).UTC(), off
}

// parseOffset parses "+HHMM" / "-HHMM". Any malformed or out-of-range
// (|offset| > MaxOffsetMinutes) value reports ok=false.
func parseOffset(s string) (int, bool) {
	if len(s) != 5 {
		return 0, false
	}
	sign := 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, false
	}
	hh, err1 := strconv.Atoi(s[1:3])
	mm, err2 := strconv.Atoi(s[3:5])
	if err1 != nil || err2 != nil {
		return 0, false
	}
	total := sign * (hh*60 + mm)
	if total > MaxOffsetMinutes || total < -MaxOffsetMinutes {
		return 0, false
	}
	return total, true
}

// encodeSignature renders a Signature back to its wire form, the
// inverse of ParseSignature.
func encodeSignature(s Signature) string {
	sign := byte('+')
	off := s.Offset
	if off < 0 {
		sign = '-'
		off = -off
	}
	return fmt.Sprintf("%s <%s> %d %c%02d%02d", s.Name, s.Email, s.When.Unix(), sign, off/60, off%60)
}
