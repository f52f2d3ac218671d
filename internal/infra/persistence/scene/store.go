package scene

import "context"

// Store is the minimal durable-backend abstraction for scene snapshots: one
// current snapshot per store, replaced wholesale on save.
type Store interface {
	// Save replaces the persisted snapshot.
	Save(ctx context.Context, snap Snapshot) error
	// Load returns the persisted snapshot; ok is false when nothing has
	// been saved yet.
	Load(ctx context.Context) (snap Snapshot, ok bool, err error)
	// Close releases backend resources.
	Close() error
}
