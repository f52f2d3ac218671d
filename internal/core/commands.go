package core

import (
	"fmt"
	"reflect"
	"sync"

	"rewindcore/pkg/domain"
)

// Command is a discrete unit of work executed against the world. Commands
// are queued and drained strictly in order by the Service; a command either
// commits in full or aborts with an error, never leaving a half-applied
// history mutation behind.
type Command interface {
	Name() string
	Run(w *domain.World, log Logger) error
}

// Perform builds the command that applies action, stores it as a new history
// entry together with a freshly bound dispatch record, and discards any
// pending redo branch.
func Perform[T any, PT ActionPtr[T]](action T) Command {
	return performCommand[T, PT]{action: action}
}

type performCommand[T any, PT ActionPtr[T]] struct {
	action T
}

func (c performCommand[T, PT]) Name() string {
	return "perform " + domain.TypeName(reflect.TypeOf((*T)(nil)).Elem())
}

func (c performCommand[T, PT]) Run(w *domain.World, log Logger) error {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if _, ok := w.Capability(rt); !ok {
		warnUnregistered(log, rt)
	}

	action := c.action
	PT(&action).Apply(w)

	entry := w.Create()
	if err := domain.Attach(w, entry, action); err != nil {
		return fmt.Errorf("store action value: %w", err)
	}
	if err := BindingFor[T, PT]().AttachTo(w, entry); err != nil {
		return fmt.Errorf("attach dispatch record: %w", err)
	}

	hist, ok := domain.ResourceMut[History](w)
	if !ok {
		domain.InsertResource(w, History{})
		hist, _ = domain.ResourceMut[History](w)
	}
	for _, stale := range hist.Push(entry) {
		w.Destroy(stale)
	}
	log.Debug("performed action", "entry", entry.String(), "type", domain.TypeName(rt))
	return nil
}

// Undo steps the history cursor back and reverses the entry it lands on.
// At the beginning of history it logs a notice and changes nothing.
type Undo struct{}

// Name implements Command.
func (Undo) Name() string { return "undo" }

// Run implements Command.
func (Undo) Run(w *domain.World, log Logger) error {
	hist, ok := domain.ResourceMut[History](w)
	if !ok {
		log.Info("end of history")
		return nil
	}
	entry, ok := hist.Back()
	if !ok {
		log.Info("end of history")
		return nil
	}
	binding, ok := domain.Get[Binding](w, entry)
	if !ok {
		return &DetachedEntryError{Handle: entry}
	}
	return binding.Undo(w, entry)
}

// Redo steps the history cursor forward and re-applies the entry it passes.
// At the end of history it logs a notice and changes nothing.
type Redo struct{}

// Name implements Command.
func (Redo) Name() string { return "redo" }

// Run implements Command.
func (Redo) Run(w *domain.World, log Logger) error {
	hist, ok := domain.ResourceMut[History](w)
	if !ok {
		log.Info("end of history")
		return nil
	}
	entry, ok := hist.Forward()
	if !ok {
		log.Info("end of history")
		return nil
	}
	binding, ok := domain.Get[Binding](w, entry)
	if !ok {
		return &DetachedEntryError{Handle: entry}
	}
	return binding.Redo(w, entry)
}

var warnedTypes sync.Map

// warnUnregistered flags an action type performed without a capability
// registration, once per process. Entries of such a type still work in the
// live session but cannot be re-bound after a scene reload.
func warnUnregistered(log Logger, rt reflect.Type) {
	if _, loaded := warnedTypes.LoadOrStore(rt, struct{}{}); loaded {
		return
	}
	log.Warn("action type performed without registration; reloaded scenes cannot dispatch it",
		"type", domain.TypeName(rt))
}
