package domain

import (
	"fmt"
	"reflect"
	"sort"
)

// World is the shared mutable state container: an entity pool, typed
// component tables, resource singletons, and a capability registry keyed by
// concrete type.
//
// A World is not safe for concurrent use. Mutations are expected to be
// drained sequentially by a single command loop; anything long-running must
// work against a captured snapshot instead.
type World struct {
	gens      []uint32
	free      []uint32
	tables    map[reflect.Type]table
	resources map[reflect.Type]any
	caps      map[reflect.Type]any
}

// NewWorld constructs an empty world.
func NewWorld() *World {
	return &World{
		tables:    make(map[reflect.Type]table),
		resources: make(map[reflect.Type]any),
		caps:      make(map[reflect.Type]any),
	}
}

// table is the type-erased surface the World needs from every component
// table so entity destruction can clear all attached data.
type table interface {
	remove(Handle) bool
	has(Handle) bool
}

// Create allocates a new entity and returns its handle. Slot indices are
// reused, with the generation bumped so stale handles stay dead.
func (w *World) Create() Handle {
	if n := len(w.free); n > 0 {
		idx := w.free[n-1]
		w.free = w.free[:n-1]
		return Handle{Index: idx, Gen: w.gens[idx]}
	}
	w.gens = append(w.gens, 1)
	return Handle{Index: uint32(len(w.gens) - 1), Gen: 1}
}

// Alive reports whether h refers to a live entity.
func (w *World) Alive(h Handle) bool {
	return !h.IsZero() && int(h.Index) < len(w.gens) && w.gens[h.Index] == h.Gen
}

// Destroy removes the entity and every component attached to it. Destroying
// a dead or zero handle is a no-op.
func (w *World) Destroy(h Handle) {
	if !w.Alive(h) {
		return
	}
	for _, t := range w.tables {
		t.remove(h)
	}
	w.gens[h.Index]++
	w.free = append(w.free, h.Index)
}

// Handles returns every live entity handle, ordered by slot index.
func (w *World) Handles() []Handle {
	free := make(map[uint32]bool, len(w.free))
	for _, idx := range w.free {
		free[idx] = true
	}
	out := make([]Handle, 0, len(w.gens)-len(w.free))
	for idx, gen := range w.gens {
		if free[uint32(idx)] {
			continue
		}
		out = append(out, Handle{Index: uint32(idx), Gen: gen})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// RegisterCapability binds an opaque capability value to a concrete type.
// Registering the same type twice is an authoring error.
func (w *World) RegisterCapability(rt reflect.Type, cap any) error {
	if rt == nil || cap == nil {
		return fmt.Errorf("capability registration requires a type and a value")
	}
	if _, ok := w.caps[rt]; ok {
		return fmt.Errorf("capability for %s already registered", TypeName(rt))
	}
	w.caps[rt] = cap
	return nil
}

// Capability returns the capability registered for rt, if any.
func (w *World) Capability(rt reflect.Type) (any, bool) {
	cap, ok := w.caps[rt]
	return cap, ok
}

// TypeName renders a stable, package-qualified name for rt.
func TypeName(rt reflect.Type) string {
	if rt == nil {
		return "<nil>"
	}
	if pkg := rt.PkgPath(); pkg != "" {
		return pkg + "." + rt.Name()
	}
	return rt.String()
}
