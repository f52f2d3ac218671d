// Package persistence selects a concrete scene store backend from the
// environment.
package persistence

import (
	"context"
	"fmt"
	"os"

	"rewindcore/internal/infra/persistence/memory"
	"rewindcore/internal/infra/persistence/postgres"
	"rewindcore/internal/infra/persistence/scene"
	"rewindcore/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete scene store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenSceneStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	REWINDCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	REWINDCORE_SQLITE_PATH: path to sqlite file (default ./rewindcore.db)
//	REWINDCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenSceneStore(ctx context.Context) (scene.Store, error) {
	driver := os.Getenv("REWINDCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		path := os.Getenv("REWINDCORE_SQLITE_PATH")
		return sqlite.NewStore(path)
	case StoragePostgres:
		dsn := os.Getenv("REWINDCORE_POSTGRES_DSN")
		return postgres.NewStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
