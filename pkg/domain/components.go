package domain

import (
	"fmt"
	"reflect"
	"sort"
)

// typedTable stores one component type for all entities. Values are held
// behind pointers so callers can mutate components in place through Mut.
type typedTable[T any] struct {
	data map[Handle]*T
}

func (t *typedTable[T]) remove(h Handle) bool {
	if _, ok := t.data[h]; !ok {
		return false
	}
	delete(t.data, h)
	return true
}

func (t *typedTable[T]) has(h Handle) bool {
	_, ok := t.data[h]
	return ok
}

func tableOf[T any](w *World, create bool) (*typedTable[T], bool) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if existing, ok := w.tables[rt]; ok {
		return existing.(*typedTable[T]), true
	}
	if !create {
		return nil, false
	}
	t := &typedTable[T]{data: make(map[Handle]*T)}
	w.tables[rt] = t
	return t, true
}

// Attach stores component value v on the entity at h, replacing any previous
// value of the same type. Attaching to a dead handle is an error.
func Attach[T any](w *World, h Handle, v T) error {
	if !w.Alive(h) {
		return fmt.Errorf("attach %s: entity %s is not alive", TypeName(reflect.TypeOf((*T)(nil)).Elem()), h)
	}
	t, _ := tableOf[T](w, true)
	t.data[h] = &v
	return nil
}

// Get returns a copy of the component of type T attached to h.
func Get[T any](w *World, h Handle) (T, bool) {
	t, ok := tableOf[T](w, false)
	if !ok {
		var zero T
		return zero, false
	}
	p, ok := t.data[h]
	if !ok {
		var zero T
		return zero, false
	}
	return *p, true
}

// Mut returns a pointer to the component of type T attached to h. The
// pointer stays valid until the component is detached or the entity
// destroyed; mutations through it are visible to every later reader.
func Mut[T any](w *World, h Handle) (*T, bool) {
	t, ok := tableOf[T](w, false)
	if !ok {
		return nil, false
	}
	p, ok := t.data[h]
	return p, ok
}

// Has reports whether h carries a component of type T.
func Has[T any](w *World, h Handle) bool {
	t, ok := tableOf[T](w, false)
	return ok && t.has(h)
}

// Detach removes the component of type T from h and returns its final value.
func Detach[T any](w *World, h Handle) (T, bool) {
	t, ok := tableOf[T](w, false)
	if !ok {
		var zero T
		return zero, false
	}
	p, ok := t.data[h]
	if !ok {
		var zero T
		return zero, false
	}
	delete(t.data, h)
	return *p, true
}

// Each invokes fn for every entity carrying a component of type T, ordered
// by slot index for determinism.
func Each[T any](w *World, fn func(Handle, *T)) {
	t, ok := tableOf[T](w, false)
	if !ok {
		return
	}
	handles := make([]Handle, 0, len(t.data))
	for h := range t.data {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i].Index < handles[j].Index })
	for _, h := range handles {
		fn(h, t.data[h])
	}
}

// InsertResource stores v as the singleton resource of type T, replacing any
// existing value.
func InsertResource[T any](w *World, v T) {
	w.resources[reflect.TypeOf((*T)(nil)).Elem()] = &v
}

// Resource returns a copy of the resource of type T.
func Resource[T any](w *World) (T, bool) {
	p, ok := w.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		var zero T
		return zero, false
	}
	return *p.(*T), true
}

// ResourceMut returns a pointer to the resource of type T for in-place
// mutation.
func ResourceMut[T any](w *World) (*T, bool) {
	p, ok := w.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	return p.(*T), true
}

// RemoveResource deletes the resource of type T and returns its final value.
func RemoveResource[T any](w *World) (T, bool) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	p, ok := w.resources[rt]
	if !ok {
		var zero T
		return zero, false
	}
	delete(w.resources, rt)
	return *p.(*T), true
}
