// Package backend opens the storage implementation selected in config.
package backend

import (
	"context"
	"fmt"

	"github.com/princekumarofficial/videos-service/internal/config"
	"github.com/princekumarofficial/videos-service/internal/storage"
	"github.com/princekumarofficial/videos-service/internal/storage/postgres"
	"github.com/princekumarofficial/videos-service/internal/storage/sqlite"
)

// Backend is a Storage that can also create its own schema.
type Backend interface {
	storage.Storage
	CreateSchema(ctx context.Context) error
}

func Open(cfg config.Storage, pg config.PQSQL) (Backend, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverPostgres:
		db, err := postgres.NewPostgres(pg)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
