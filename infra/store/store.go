package store

import (
	"context"
	"fmt"

	"github.com/kilianp07/evroute/auth"
	"github.com/kilianp07/evroute/config"
	"github.com/kilianp07/evroute/core/trip"
)

// Store is the persistence used by the service: trip history plus accounts.
type Store interface {
	trip.Store
	auth.UserStore
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// Open creates the backend selected by cfg.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "", "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "memory":
		return NewSQLiteStore(":memory:")
	case "postgres":
		return NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
