package store

import "github.com/haxorof/gitpack/plumbing"

type memoryObject struct {
	kind plumbing.ObjectType
	data []byte
}

// Memory is an in-memory ObjectStore, used in tests and to exercise
// thin-pack base injection without a real on-disk object database.
type Memory struct {
	objects map[plumbing.OID]memoryObject
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[plumbing.OID]memoryObject)}
}

// Put registers an object under its id.
func (m *Memory) Put(oid plumbing.OID, kind plumbing.ObjectType, data []byte) {
	m.objects[oid] = memoryObject{kind: kind, data: append([]byte(nil), data...)}
}

func (m *Memory) Exists(oid plumbing.OID) bool {
	_, ok := m.objects[oid]
	return ok
}

func (m *Memory) Read(oid plumbing.OID) (plumbing.ObjectType, []byte, error) {
	o, ok := m.objects[oid]
	if !ok {
		return plumbing.InvalidObject, nil, plumbing.NewError(plumbing.ErrNotFound, "object %s", oid)
	}
	return o.kind, append([]byte(nil), o.data...), nil
}

func (m *Memory) Header(oid plumbing.OID) (plumbing.ObjectType, uint64, error) {
	o, ok := m.objects[oid]
	if !ok {
		return plumbing.InvalidObject, 0, plumbing.NewError(plumbing.ErrNotFound, "object %s", oid)
	}
	return o.kind, uint64(len(o.data)), nil
}
