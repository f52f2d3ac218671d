package game

import (
	"reflect"

	"rewindcore/internal/core"
	"rewindcore/internal/infra/persistence/scene"
	"rewindcore/pkg/domain"
)

// Register wires the game types into a world and a scene registry: actions
// get their dispatch capability, and every persistable component and
// resource gets a codec. Worlds wired here round-trip through Capture and
// Restore with working undo entries.
func Register(w *domain.World, r *scene.Registry) error {
	if err := core.RegisterAction[SetLevel](w); err != nil {
		return err
	}
	if err := core.RegisterAction[MoveEntity](w); err != nil {
		return err
	}

	for _, register := range []func() error{
		func() error { return scene.RegisterComponent[Player](r, "game.Player") },
		func() error { return scene.RegisterComponent[Position](r, "game.Position") },
		func() error { return scene.RegisterComponent[Label](r, "game.Label") },
		func() error { return scene.RegisterComponent[SetLevel](r, "game.SetLevel") },
		func() error { return scene.RegisterComponent[MoveEntity](r, "game.MoveEntity") },
		func() error { return scene.RegisterResource[Level](r, "game.Level") },
		func() error { return scene.RegisterResource[core.History](r, "core.History") },
	} {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

// ActionTypes lists every action type this package registers. The dispatch
// coverage test checks it against the module's Action implementors.
func ActionTypes() []reflect.Type {
	return []reflect.Type{
		reflect.TypeOf((*SetLevel)(nil)).Elem(),
		reflect.TypeOf((*MoveEntity)(nil)).Elem(),
	}
}

// SpawnPlayer creates the controllable entity at the origin.
func SpawnPlayer(w *domain.World, name string) (domain.Handle, error) {
	h := w.Create()
	for _, attach := range []func() error{
		func() error { return domain.Attach(w, h, Player{}) },
		func() error { return domain.Attach(w, h, Position{}) },
		func() error { return domain.Attach(w, h, Label{Name: name}) },
	} {
		if err := attach(); err != nil {
			return domain.Handle{}, err
		}
	}
	return h, nil
}
