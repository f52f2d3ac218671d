// Package game carries the demo gameplay content: a handful of components,
// a level resource, and the reversible actions that mutate them. It is also
// the single place where those types are registered for dispatch and
// persistence, so a world wired through Register round-trips cleanly.
package game

// Player marks the controllable entity.
type Player struct{}

// Position is a spatial component.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Label is a human-readable tag for an entity.
type Label struct {
	Name string `json:"name"`
}

// Level is a world-wide difficulty resource.
type Level struct {
	Value uint32 `json:"value"`
}
