package object

import (
	"bytes"
	"strconv"

	"github.com/haxorof/gitpack/plumbing"
	"github.com/haxorof/gitpack/plumbing/hash"
)

// EntryKind classifies a tree entry, derived from its mode.
type EntryKind int8

const (
	EntryUnknown EntryKind = iota
	EntryDirectory
	EntryFile
	EntryExecutable
	EntrySymlink
	EntryGitlink
)

// TreeEntry is one (mode, name, id) record of a tree.
type TreeEntry struct {
	Mode uint32
	Name string
	ID   plumbing.OID
	Kind EntryKind
}

// Tree is an ordered directory listing (spec.md §3).
type Tree struct {
	Entries []TreeEntry
}

// ParseTree decodes a tree's inflated payload: a concatenation of
// "<octal-mode> <name>\0<raw-oid>" entries, required to already be
// ordered by Git's tree comparator (spec.md §4.2): directory names
// compare as if a trailing '/' were appended. algo picks the entry
// OID's byte width (20 for SHA-1, 32 for SHA-256), since the raw
// bytes alone don't carry that information the way hex OIDs do.
func ParseTree(data []byte, algo hash.Algorithm) (*Tree, error) {
	t := &Tree{}

	var prev string
	havePrev := false
	for len(data) > 0 {
		sp := bytes.IndexByte(data, ' ')
		if sp < 0 {
			return nil, plumbing.NewError(plumbing.ErrParse, "tree entry missing mode separator")
		}
		mode64, err := strconv.ParseUint(string(data[:sp]), 8, 32)
		if err != nil {
			return nil, plumbing.NewError(plumbing.ErrParse, "invalid tree entry mode %q", data[:sp])
		}
		mode := uint32(mode64)

		nul := bytes.IndexByte(data[sp+1:], 0)
		if nul < 0 {
			return nil, plumbing.NewError(plumbing.ErrParse, "tree entry missing name terminator")
		}
		name := string(data[sp+1 : sp+1+nul])

		oidStart := sp + 1 + nul + 1
		oidEnd := oidStart + algo.Size()
		if oidEnd > len(data) {
			return nil, plumbing.NewError(plumbing.ErrParse, "truncated tree entry id")
		}
		id, ok := plumbing.NewOID(data[oidStart:oidEnd])
		if !ok {
			return nil, plumbing.NewError(plumbing.ErrParse, "invalid tree entry id")
		}

		kind := entryKind(mode)
		sortKey := name
		if kind == EntryDirectory {
			sortKey += "/"
		}
		if havePrev && sortKey <= prev {
			return nil, plumbing.NewError(plumbing.ErrParse, "tree entries out of order at %q", name)
		}
		prev, havePrev = sortKey, true

		t.Entries = append(t.Entries, TreeEntry{Mode: mode, Name: name, ID: id, Kind: kind})
		data = data[oidEnd:]
	}
	return t, nil
}

func entryKind(mode uint32) EntryKind {
	switch mode &^ 0o777 {
	case 0o40000:
		return EntryDirectory
	case 0o120000:
		return EntrySymlink
	case 0o160000:
		return EntryGitlink
	case 0o100000:
		if mode&0o111 != 0 {
			return EntryExecutable
		}
		return EntryFile
	default:
		return EntryUnknown
	}
}

func (t *Tree) Kind() plumbing.ObjectType { return plumbing.TreeObject }

// Encode returns the canonical tree payload, used to recompute its
// OID. It assumes all entries share a single hash algorithm (the one
// implied by each entry's OID).
func (t *Tree) Encode() []byte {
	var buf bytes.Buffer
	for _, e := range t.Entries {
		buf.WriteString(strconv.FormatUint(uint64(e.Mode), 8))
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(e.ID.Bytes())
	}
	return buf.Bytes()
}
