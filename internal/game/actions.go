package game

import (
	"rewindcore/pkg/domain"
)

// SetLevel replaces the Level resource value. The action swaps its payload
// with the live value on every dispatch, so the same swap both applies and
// reverts it.
type SetLevel struct {
	Value uint32 `json:"value"`
}

// Apply exchanges the stored value with the live Level resource.
func (a *SetLevel) Apply(w *domain.World) {
	l, ok := domain.ResourceMut[Level](w)
	if !ok {
		domain.InsertResource(w, Level{})
		l, _ = domain.ResourceMut[Level](w)
	}
	a.Value, l.Value = l.Value, a.Value
}

// Undo performs the same swap, restoring the previous value.
func (a *SetLevel) Undo(w *domain.World) { a.Apply(w) }

// MoveEntity shifts an entity's Position by a delta. The target handle is
// remapped on scene load via MapHandles.
type MoveEntity struct {
	Target domain.Handle `json:"target"`
	DX     float64       `json:"dx"`
	DY     float64       `json:"dy"`
	DZ     float64       `json:"dz"`
}

// Apply adds the delta to the target's position. A missing or despawned
// target makes the action a no-op rather than an error.
func (a *MoveEntity) Apply(w *domain.World) {
	if p, ok := domain.Mut[Position](w, a.Target); ok {
		p.X += a.DX
		p.Y += a.DY
		p.Z += a.DZ
	}
}

// Undo subtracts the delta again.
func (a *MoveEntity) Undo(w *domain.World) {
	if p, ok := domain.Mut[Position](w, a.Target); ok {
		p.X -= a.DX
		p.Y -= a.DY
		p.Z -= a.DZ
	}
}

// MapHandles rewrites the target handle through the translation.
func (a *MoveEntity) MapHandles(f func(domain.Handle) domain.Handle) {
	a.Target = f(a.Target)
}
