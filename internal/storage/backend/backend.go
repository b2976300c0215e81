// Package backend picks the storage implementation named in the config.
package backend

import (
	"context"
	"fmt"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/storage/memory"
	"github.com/aanand-mishra/students-api/internal/storage/mongo"
	"github.com/aanand-mishra/students-api/internal/storage/postgres"
	"github.com/aanand-mishra/students-api/internal/storage/sqlite"
)

// Open constructs and connects the configured store. The caller owns the
// returned handle and must Close it on shutdown.
func Open(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverSQLite:
		st, err := sqlite.New(cfg)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverPostgres:
		st, err := postgres.New(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverMongo:
		st, err := mongo.New(ctx, cfg.Storage.MongoURI, cfg.Storage.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
