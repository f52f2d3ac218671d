package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"rewindcore/internal/infra/persistence/scene"
)

// ArchivePrefix is the key prefix under which snapshots are exported.
const ArchivePrefix = "scenes/"

// ExportSnapshot writes a scene snapshot to the store as a timestamped JSON
// object. Keys are create-only, so each export produces a new archive entry.
func ExportSnapshot(ctx context.Context, store Store, snap scene.Snapshot, now time.Time) (Info, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Info{}, fmt.Errorf("encode snapshot: %w", err)
	}
	key := ArchivePrefix + now.UTC().Format("20060102T150405.000000000") + ".json"
	info, err := store.Put(ctx, key, bytes.NewReader(data), PutOptions{
		ContentType: "application/json",
		Metadata: map[string]string{
			"entities": strconv.Itoa(len(snap.Entities)),
		},
	})
	if err != nil {
		return Info{}, fmt.Errorf("archive snapshot: %w", err)
	}
	return info, nil
}

// ImportSnapshot reads an archived snapshot back.
func ImportSnapshot(ctx context.Context, store Store, key string) (scene.Snapshot, error) {
	_, rc, err := store.Get(ctx, key)
	if err != nil {
		return scene.Snapshot{}, fmt.Errorf("fetch archive %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return scene.Snapshot{}, fmt.Errorf("read archive %s: %w", key, err)
	}
	var snap scene.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return scene.Snapshot{}, fmt.Errorf("decode archive %s: %w", key, err)
	}
	return snap, nil
}

// ListArchives returns archived snapshot entries sorted by key, which is
// chronological given the timestamped naming.
func ListArchives(ctx context.Context, store Store) ([]Info, error) {
	return store.List(ctx, ArchivePrefix)
}
