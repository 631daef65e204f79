// Package backend opens the entity store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"estategraph/server/config"
	"estategraph/server/internal/database"
	"estategraph/server/internal/store"
	"estategraph/server/internal/store/memory"
	"estategraph/server/internal/store/mongostore"
)

// Open makes one connection attempt to the configured driver.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn("Using the in-memory entity store, records are lost on exit")
		return memory.New(logger), nil

	case config.DriverSQLite:
		logger.Infof("Using database at: %s", cfg.Store.SQLitePath)
		db, err := database.NewDatabase(cfg.Store.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Ping(ctx); err != nil {
			_ = db.Close(ctx)
			return nil, err
		}
		logger.Info("Running database migrations...")
		if err := db.RunMigrations(); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		return db, nil

	case config.DriverMongo:
		logger.WithField("database", cfg.Store.MongoDatabase).Info("Using MongoDB entity store")
		return mongostore.Connect(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase, logger)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// Dialer adapts Open to store.ConnectWithRetry.
func Dialer(cfg *config.Config, logger *logrus.Logger) store.Dialer {
	return func(ctx context.Context) (store.Store, error) {
		return Open(ctx, cfg, logger)
	}
}
