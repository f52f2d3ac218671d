// Package blob selects a blob store backend from the environment and
// provides the snapshot archive helpers built on top of it.
package blob

import (
	"context"
	"fmt"
	"os"

	"rewindcore/internal/infra/blob/core"
	"rewindcore/internal/infra/blob/fs"
	"rewindcore/internal/infra/blob/memory"
	"rewindcore/internal/infra/blob/s3"
)

// Re-exported so callers only import this package.
type (
	Store      = core.Store
	Info       = core.Info
	PutOptions = core.PutOptions
	Driver     = core.Driver
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// Open selects a blob store implementation using environment variables.
//
//	REWINDCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	REWINDCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./archive)
//	(S3 specific variables documented in the s3 package)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("REWINDCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		root := os.Getenv("REWINDCORE_BLOB_FS_ROOT")
		return fs.New(root)
	case DriverS3:
		return s3.OpenFromEnv(ctx)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
