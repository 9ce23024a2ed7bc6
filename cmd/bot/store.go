package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kotche/carrot-notes/internal/config"
	"github.com/kotche/carrot-notes/internal/docstore"
	"github.com/kotche/carrot-notes/internal/docstore/mongo"
	"github.com/kotche/carrot-notes/internal/docstore/sqldoc"
)

// openStore connects the configured backend and returns it with its closer.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (docstore.Store, func(), error) {
	switch cfg.StoreConfig.Driver {
	case config.DriverMongo:
		store, err := mongo.Connect(ctx, cfg.MongoConfig.URI, cfg.MongoConfig.Database)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := store.Close(context.Background()); err != nil {
				logger.Error("failed to close mongo store", "error", err)
			}
		}
		return store, closer, nil

	case config.DriverPostgres, config.DriverSQLite:
		dialect, err := sqldoc.DialectByName(cfg.StoreConfig.Driver)
		if err != nil {
			return nil, nil, err
		}
		dsn := cfg.SQLiteConfig.Path
		if cfg.StoreConfig.Driver == config.DriverPostgres {
			dsn = cfg.PostgresConfig.DSN()
		}

		store, err := sqldoc.Open(ctx, dialect, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err = store.Migrate(); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("migration error: %w", err)
		}
		closer := func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close sql store", "error", err)
			}
		}
		return store, closer, nil

	default:
		logger.Warn("using in-memory store, data is lost on restart")
		return docstore.NewMemory(), func() {}, nil
	}
}
