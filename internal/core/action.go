// Package core implements the reversible action engine: the Action
// capability, the per-type dispatch binding, the ordered History with its
// past/future cursor, and the Perform/Undo/Redo commands that orchestrate
// them against a domain.World.
package core

import (
	"fmt"
	"reflect"

	"rewindcore/pkg/domain"
)

// Action is a self-contained reversible mutation of shared state. Apply
// performs the forward effect; Undo reverses the most recent Apply exactly.
// Both must stay correct under repeated apply/undo/redo oscillation. The
// engine records and replays actions but never verifies that Undo is a true
// inverse; that contract is the author's.
//
// An action owns whatever data it needs to reverse itself. It may mutate its
// own fields during Apply (for example swapping a previous value out of a
// resource); the engine dispatches through a live pointer into storage, so
// such self-mutations survive into the next Undo.
type Action interface {
	Apply(w *domain.World)
	Undo(w *domain.World)
}

// ActionPtr constrains a pointer type PT to *T implementing Action. Actions
// implement the interface on pointer receivers so self-mutation works.
type ActionPtr[T any] interface {
	*T
	Action
}

// Binding is the type-erased dispatch record attached to every history
// entry: a pair of functions bound once to one concrete action type. It
// carries no business data and is freely copyable.
type Binding struct {
	typ  reflect.Type
	undo func(*domain.World, domain.Handle) error
	redo func(*domain.World, domain.Handle) error
}

// BindingFor binds a dispatch record to the concrete action type T.
func BindingFor[T any, PT ActionPtr[T]]() Binding {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	return Binding{
		typ: rt,
		undo: func(w *domain.World, h domain.Handle) error {
			act, ok := domain.Mut[T](w, h)
			if !ok {
				return &DetachedEntryError{Handle: h, Type: rt}
			}
			PT(act).Undo(w)
			return nil
		},
		redo: func(w *domain.World, h domain.Handle) error {
			act, ok := domain.Mut[T](w, h)
			if !ok {
				return &DetachedEntryError{Handle: h, Type: rt}
			}
			PT(act).Apply(w)
			return nil
		},
	}
}

// Type returns the concrete action type the binding dispatches for.
func (b Binding) Type() reflect.Type { return b.typ }

// Undo reverses the action stored at h.
func (b Binding) Undo(w *domain.World, h domain.Handle) error {
	if b.undo == nil {
		return &DetachedEntryError{Handle: h, Type: b.typ}
	}
	return b.undo(w, h)
}

// Redo re-applies the action stored at h.
func (b Binding) Redo(w *domain.World, h domain.Handle) error {
	if b.redo == nil {
		return &DetachedEntryError{Handle: h, Type: b.typ}
	}
	return b.redo(w, h)
}

// AttachTo equips the entity at h with this binding, satisfying
// domain.EntryCapability so the scene layer can re-bind reloaded entries.
func (b Binding) AttachTo(w *domain.World, h domain.Handle) error {
	return domain.Attach(w, h, b)
}

var _ domain.EntryCapability = Binding{}

// RegisterAction records the dispatch binding for T in the world's
// capability registry. Registration is what makes reloaded entries of type T
// dispatchable without re-performing them; Perform warns when it runs an
// unregistered type.
func RegisterAction[T any, PT ActionPtr[T]](w *domain.World) error {
	return w.RegisterCapability(reflect.TypeOf((*T)(nil)).Elem(), BindingFor[T, PT]())
}

// DetachedEntryError reports a history entry that lost its action value or
// dispatch record. This is a broken construction invariant, not a user
// error; the command that hits it aborts.
type DetachedEntryError struct {
	Handle domain.Handle
	Type   reflect.Type
}

func (e *DetachedEntryError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("history entry %s has no dispatch record", e.Handle)
	}
	return fmt.Sprintf("history entry %s has no %s action value", e.Handle, domain.TypeName(e.Type))
}
