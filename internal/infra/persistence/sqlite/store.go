// Package sqlite provides a SQLite-backed scene store. The snapshot is
// persisted as JSON blobs in a single bucket/payload table, so a saved scene
// survives process restarts without any schema migration machinery.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"rewindcore/internal/infra/persistence/scene"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ scene.Store = (*Store)(nil)

const (
	bucketEntities  = "entities"
	bucketResources = "resources"
)

// Store persists scene snapshots to a single SQLite table as JSON blobs.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (creating if needed) a SQLite-backed scene store at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "rewindcore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS scene_state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create scene_state table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Save implements scene.Store. The snapshot replaces whatever was persisted
// before; both buckets are written in one transaction.
func (s *Store) Save(ctx context.Context, snap scene.Snapshot) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entities, err := json.Marshal(snap.Entities)
	if err != nil {
		return fmt.Errorf("encode entities: %w", err)
	}
	resources, err := json.Marshal(snap.Resources)
	if err != nil {
		return fmt.Errorf("encode resources: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for bucket, payload := range map[string][]byte{
		bucketEntities:  entities,
		bucketResources: resources,
	} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scene_state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
			bucket, payload); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	if err := tx.Commit(); err != nil {
		retErr = err
	}
	return retErr
}

// Load implements scene.Store.
func (s *Store) Load(ctx context.Context) (scene.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM scene_state`)
	if err != nil {
		return scene.Snapshot{}, false, fmt.Errorf("select scene_state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snap scene.Snapshot
	found := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return scene.Snapshot{}, false, fmt.Errorf("scan: %w", err)
		}
		switch bucket {
		case bucketEntities:
			if err := json.Unmarshal(payload, &snap.Entities); err != nil {
				return scene.Snapshot{}, false, fmt.Errorf("decode entities: %w", err)
			}
			found = true
		case bucketResources:
			if err := json.Unmarshal(payload, &snap.Resources); err != nil {
				return scene.Snapshot{}, false, fmt.Errorf("decode resources: %w", err)
			}
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return scene.Snapshot{}, false, err
	}
	if !found {
		return scene.Snapshot{}, false, nil
	}
	return snap, true, nil
}

// Close implements scene.Store.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
