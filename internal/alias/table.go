// Package alias translates records between the storage shape used by the
// entity store and the wire shape exposed over GraphQL.
//
// Each entity has one statically declared Table. A table is a list of field
// bindings; every binding knows its wire path, its storage path and how to
// copy the value in both directions. Bindings built with Field share a single
// Go type between both accessors, so a wire field bound to a storage field of
// a different type is a compile error.
package alias

import "fmt"

// Binding maps one wire field to one storage field.
type Binding[S, W any] struct {
	Wire      string
	Storage   string
	toWire    func(s *S, w *W)
	toStorage func(w *W, s *S)
}

// Field binds two fields of identical type through accessors returning
// pointers into the storage and wire records.
func Field[S, W, T any](wire, storage string, sf func(*S) *T, wf func(*W) *T) Binding[S, W] {
	return Binding[S, W]{
		Wire:      wire,
		Storage:   storage,
		toWire:    func(s *S, w *W) { *wf(w) = *sf(s) },
		toStorage: func(w *W, s *S) { *sf(s) = *wf(w) },
	}
}

// Convert binds fields whose representation differs between the shapes.
func Convert[S, W any](wire, storage string, toWire func(*S, *W), toStorage func(*W, *S)) Binding[S, W] {
	return Binding[S, W]{Wire: wire, Storage: storage, toWire: toWire, toStorage: toStorage}
}

// Table is the complete bidirectional mapping for one entity.
type Table[S, W any] struct {
	Entity   string
	Bindings []Binding[S, W]
}

// ToWire projects a storage record onto its wire shape.
func (t Table[S, W]) ToWire(s S) W {
	var w W
	for _, b := range t.Bindings {
		b.toWire(&s, &w)
	}
	return w
}

// ToStorage projects a wire record onto its storage shape.
func (t Table[S, W]) ToStorage(w W) S {
	var s S
	for _, b := range t.Bindings {
		b.toStorage(&w, &s)
	}
	return s
}

// ToWireAll maps a slice of storage records.
func (t Table[S, W]) ToWireAll(records []S) []W {
	out := make([]W, len(records))
	for i := range records {
		out[i] = t.ToWire(records[i])
	}
	return out
}

// StoragePath returns the storage path bound to a wire path.
func (t Table[S, W]) StoragePath(wire string) (string, bool) {
	for _, b := range t.Bindings {
		if b.Wire == wire {
			return b.Storage, true
		}
	}
	return "", false
}

// check panics on duplicated paths; tables are package-level values so this
// runs once at init.
func (t Table[S, W]) check() Table[S, W] {
	wire := make(map[string]bool, len(t.Bindings))
	storage := make(map[string]bool, len(t.Bindings))
	for _, b := range t.Bindings {
		if wire[b.Wire] || storage[b.Storage] {
			panic(fmt.Sprintf("alias: %s table binds %s <-> %s twice", t.Entity, b.Wire, b.Storage))
		}
		wire[b.Wire] = true
		storage[b.Storage] = true
	}
	return t
}
