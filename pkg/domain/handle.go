package domain

import "fmt"

// Handle is a stable reference to a live entity in a World. It pairs a slot
// index with the generation the slot had when the entity was created, so a
// handle kept past the entity's destruction stops resolving instead of
// silently aliasing a reused slot.
//
// The zero Handle never resolves.
type Handle struct {
	Index uint32 `json:"index"`
	Gen   uint32 `json:"gen"`
}

// IsZero reports whether h is the invalid zero handle.
func (h Handle) IsZero() bool {
	return h.Gen == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%dv%d", h.Index, h.Gen)
}

// HandleMapper is implemented by components and resources that embed entity
// handles. After a scene restore relocates entities, MapHandles is invoked
// with the translation from persisted handles to live ones.
type HandleMapper interface {
	MapHandles(func(Handle) Handle)
}

// EntryCapability is a capability value that knows how to attach itself to an
// entity. The scene layer uses it to re-equip reloaded entries with the
// dispatch machinery registered for their concrete type.
type EntryCapability interface {
	AttachTo(w *World, h Handle) error
}
