package storage

import (
	"context"
	"fmt"

	"sitebuilder/internal/config"
	"sitebuilder/internal/domain"
)

// Open returns the StateStore selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (domain.StateStore, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return OpenSQLite(cfg.Path)
	case "postgres":
		return OpenPostgres(ctx, cfg)
	case "mysql":
		return OpenMySQL(ctx, cfg)
	case "mongodb":
		return OpenMongo(ctx, cfg)
	case "redis":
		return OpenRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
