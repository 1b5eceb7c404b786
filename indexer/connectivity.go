package indexer

import (
	"github.com/haxorof/gitpack/object"
	"github.com/haxorof/gitpack/plumbing"
)

// recordResolvedObject is the single entry point connectivity
// verification hooks into: called once an object's final kind and
// bytes are known, whether that happened immediately (a non-delta
// entry) or only after delta resolution (spec.md §4.5, C9). It clears
// the object's own id from the pending set and adds whatever it
// references.
func (ix *Indexer) recordResolvedObject(e *entry, kind plumbing.ObjectType, data []byte) error {
	delete(ix.expectedIDs, e.id)
	return ix.addReferents(kind, data)
}

// addReferents parses an object's materialised bytes and marks every
// object it points at as expected, unless that object is already
// known (already indexed from this pack, or present in the external
// store).
func (ix *Indexer) addReferents(kind plumbing.ObjectType, data []byte) error {
	obj, err := object.Parse(object.Raw{Kind: kind, Data: data, Algorithm: ix.algo})
	if err != nil {
		return err
	}

	switch o := obj.(type) {
	case *object.Commit:
		ix.addExpected(o.Tree)
		for _, p := range o.Parents {
			ix.addExpected(p)
		}
	case *object.Tree:
		for _, te := range o.Entries {
			if te.Kind == object.EntryGitlink {
				continue
			}
			ix.addExpected(te.ID)
		}
	case *object.Tag:
		ix.addExpected(o.Target)
	case *object.Blob:
		// no referents
	}
	return nil
}

func (ix *Indexer) addExpected(oid plumbing.OID) {
	if _, ok := ix.byID[oid]; ok {
		return
	}
	if ix.odb != nil && ix.odb.Exists(oid) {
		return
	}
	ix.expectedIDs[oid] = struct{}{}
}
