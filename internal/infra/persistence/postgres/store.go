// Package postgres provides a Postgres-backed scene store with the same
// bucket/payload layout as the SQLite backend.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"rewindcore/internal/infra/persistence/scene"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

var _ scene.Store = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/rewindcore?sslmode=disable"

	bucketEntities  = "entities"
	bucketResources = "resources"
)

var sqlOpen = sql.Open

// Store persists scene snapshots to Postgres.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed scene store using the provided DSN
// (falls back to defaultDSN), pings the server, and ensures the snapshot
// table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sqlOpen(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS scene_state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure scene_state table: %w", err)
	}
	return &Store{db: db}, nil
}

// Save implements scene.Store.
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
			`INSERT INTO scene_state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
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

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }
