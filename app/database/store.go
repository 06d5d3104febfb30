package database

import (
	"context"
	"fmt"

	"github.com/DavidsonCollege/release-notes-monitor/app/cfg"
)

// Blob is one keyed document in a BlobStore.
type Blob struct {
	Key  string
	Data []byte
}

// BlobStore persists opaque documents by key. Get returns nil data and no
// error for a missing key. Commit writes blobs in the given order; stores
// that support it apply them all-or-nothing.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Commit(ctx context.Context, blobs []Blob) error
	Close() error
}

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

func NewBlobStore(c *cfg.Cfg) (BlobStore, error) {
	switch c.StateDriver {
	case DriverFile, "":
		return NewFileStore(c.StateDir), nil
	case DriverSQLite:
		return NewSQLiteStore(c.DBPath)
	case DriverRedis:
		return NewRedisStore(c.RedisAddress, c.RedisPassword, c.RedisDB)
	default:
		return nil, fmt.Errorf("unknown state driver: %s", c.StateDriver)
	}
}
