// Package scene captures a world's registered components and resources into
// a serializable snapshot and restores snapshots into a live world. Entries
// are relocated to fresh slots on restore, so every persisted handle is
// rewritten through the old-to-new translation, and entries whose action
// type carries a registered capability get their dispatch record re-attached
// without any explicit re-registration step.
//
// The engine defines no file format of its own; this package is the
// collaborator that does.
package scene

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"rewindcore/pkg/domain"
)

// Snapshot is the serializable form of a world: entities with their
// component payloads keyed by registered codec name, plus resource
// singletons.
type Snapshot struct {
	Entities  []Entity                   `json:"entities"`
	Resources map[string]json.RawMessage `json:"resources,omitempty"`
}

// Entity is one persisted entity and its component payloads.
type Entity struct {
	Handle     domain.Handle              `json:"handle"`
	Components map[string]json.RawMessage `json:"components"`
}

// Registry maps codec names to the typed capture/restore machinery for each
// persistable component and resource type. Only registered types survive a
// capture; everything else is filtered out, the way an explicit scene filter
// would.
type Registry struct {
	components map[string]*componentCodec
	resources  map[string]*resourceCodec
	names      map[reflect.Type]string
}

// NewRegistry constructs an empty codec registry.
func NewRegistry() *Registry {
	return &Registry{
		components: make(map[string]*componentCodec),
		resources:  make(map[string]*resourceCodec),
		names:      make(map[reflect.Type]string),
	}
}

type componentCodec struct {
	name    string
	rt      reflect.Type
	capture func(w *domain.World, into map[domain.Handle]map[string]json.RawMessage) error
	restore func(w *domain.World, h domain.Handle, raw json.RawMessage) error
	rebind  func(w *domain.World, h domain.Handle) error
	remap   func(w *domain.World, h domain.Handle, f func(domain.Handle) domain.Handle)
}

type resourceCodec struct {
	name    string
	rt      reflect.Type
	capture func(w *domain.World) (json.RawMessage, bool, error)
	restore func(w *domain.World, raw json.RawMessage) error
	remap   func(w *domain.World, f func(domain.Handle) domain.Handle)
}

func (r *Registry) reserve(name string, rt reflect.Type) error {
	if name == "" {
		return fmt.Errorf("scene codec name is required")
	}
	if _, ok := r.components[name]; ok {
		return fmt.Errorf("scene codec %q already registered", name)
	}
	if _, ok := r.resources[name]; ok {
		return fmt.Errorf("scene codec %q already registered", name)
	}
	if prev, ok := r.names[rt]; ok {
		return fmt.Errorf("type %s already registered as %q", domain.TypeName(rt), prev)
	}
	return nil
}

// RegisterComponent makes component type T persistable under name.
func RegisterComponent[T any](r *Registry, name string) error {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if err := r.reserve(name, rt); err != nil {
		return err
	}
	codec := &componentCodec{
		name: name,
		rt:   rt,
		capture: func(w *domain.World, into map[domain.Handle]map[string]json.RawMessage) error {
			var failure error
			domain.Each(w, func(h domain.Handle, p *T) {
				if failure != nil {
					return
				}
				raw, err := json.Marshal(*p)
				if err != nil {
					failure = fmt.Errorf("encode %s at %s: %w", name, h, err)
					return
				}
				if into[h] == nil {
					into[h] = make(map[string]json.RawMessage)
				}
				into[h][name] = raw
			})
			return failure
		},
		restore: func(w *domain.World, h domain.Handle, raw json.RawMessage) error {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("decode %s at %s: %w", name, h, err)
			}
			return domain.Attach(w, h, v)
		},
		rebind: func(w *domain.World, h domain.Handle) error {
			cap, ok := w.Capability(rt)
			if !ok {
				return nil
			}
			ec, ok := cap.(domain.EntryCapability)
			if !ok {
				return nil
			}
			return ec.AttachTo(w, h)
		},
		remap: func(w *domain.World, h domain.Handle, f func(domain.Handle) domain.Handle) {
			if p, ok := domain.Mut[T](w, h); ok {
				if m, ok := any(p).(domain.HandleMapper); ok {
					m.MapHandles(f)
				}
			}
		},
	}
	r.components[name] = codec
	r.names[rt] = name
	return nil
}

// RegisterResource makes resource type T persistable under name.
func RegisterResource[T any](r *Registry, name string) error {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if err := r.reserve(name, rt); err != nil {
		return err
	}
	codec := &resourceCodec{
		name: name,
		rt:   rt,
		capture: func(w *domain.World) (json.RawMessage, bool, error) {
			v, ok := domain.Resource[T](w)
			if !ok {
				return nil, false, nil
			}
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, false, fmt.Errorf("encode resource %s: %w", name, err)
			}
			return raw, true, nil
		},
		restore: func(w *domain.World, raw json.RawMessage) error {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("decode resource %s: %w", name, err)
			}
			domain.InsertResource(w, v)
			return nil
		},
		remap: func(w *domain.World, f func(domain.Handle) domain.Handle) {
			if p, ok := domain.ResourceMut[T](w); ok {
				if m, ok := any(p).(domain.HandleMapper); ok {
					m.MapHandles(f)
				}
			}
		},
	}
	r.resources[name] = codec
	r.names[rt] = name
	return nil
}

// Capture extracts every registered component and resource from w into a
// snapshot. Entities with no registered components are omitted.
func (r *Registry) Capture(w *domain.World) (Snapshot, error) {
	perEntity := make(map[domain.Handle]map[string]json.RawMessage)
	for _, name := range r.componentNames() {
		if err := r.components[name].capture(w, perEntity); err != nil {
			return Snapshot{}, err
		}
	}

	entities := make([]Entity, 0, len(perEntity))
	for h, components := range perEntity {
		entities = append(entities, Entity{Handle: h, Components: components})
	}
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].Handle.Index < entities[j].Handle.Index
	})

	resources := make(map[string]json.RawMessage)
	for _, name := range r.resourceNames() {
		raw, ok, err := r.resources[name].capture(w)
		if err != nil {
			return Snapshot{}, err
		}
		if ok {
			resources[name] = raw
		}
	}
	if len(resources) == 0 {
		resources = nil
	}
	return Snapshot{Entities: entities, Resources: resources}, nil
}

// Restore loads a snapshot into w. Every persisted entity gets a fresh slot;
// the returned mapping translates persisted handles to live ones and has
// already been applied to every restored HandleMapper component and
// resource. Restored entries whose component type has a registered
// EntryCapability are re-equipped with it.
func (r *Registry) Restore(w *domain.World, snap Snapshot) (map[domain.Handle]domain.Handle, error) {
	mapping := make(map[domain.Handle]domain.Handle, len(snap.Entities))
	for _, ent := range snap.Entities {
		if _, ok := mapping[ent.Handle]; ok {
			return nil, fmt.Errorf("snapshot repeats handle %s", ent.Handle)
		}
		mapping[ent.Handle] = w.Create()
	}
	translate := func(old domain.Handle) domain.Handle {
		if fresh, ok := mapping[old]; ok {
			return fresh
		}
		return old
	}

	for _, ent := range snap.Entities {
		fresh := mapping[ent.Handle]
		for _, name := range sortedKeys(ent.Components) {
			codec, ok := r.components[name]
			if !ok {
				return nil, fmt.Errorf("snapshot references unknown component codec %q", name)
			}
			if err := codec.restore(w, fresh, ent.Components[name]); err != nil {
				return nil, err
			}
			if err := codec.rebind(w, fresh); err != nil {
				return nil, err
			}
		}
	}

	for _, name := range sortedKeys(snap.Resources) {
		codec, ok := r.resources[name]
		if !ok {
			return nil, fmt.Errorf("snapshot references unknown resource codec %q", name)
		}
		if err := codec.restore(w, snap.Resources[name]); err != nil {
			return nil, err
		}
	}

	for _, ent := range snap.Entities {
		fresh := mapping[ent.Handle]
		for name := range ent.Components {
			r.components[name].remap(w, fresh, translate)
		}
	}
	for name := range snap.Resources {
		r.resources[name].remap(w, translate)
	}
	return mapping, nil
}

func (r *Registry) componentNames() []string {
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) resourceNames() []string {
	names := make([]string, 0, len(r.resources))
	for name := range r.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
