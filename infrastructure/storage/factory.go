package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AzielCF/az-laundry/core/config"
	"github.com/AzielCF/az-laundry/core/database"
	domainStorage "github.com/AzielCF/az-laundry/domains/storage"
	"github.com/AzielCF/az-laundry/infrastructure/valkey"
	"github.com/sirupsen/logrus"
)

// New opens the medium selected by cfg.Storage.Driver.
func New(ctx context.Context, cfg *config.Config) (domainStorage.IMedium, error) {
	switch cfg.Storage.Driver {
	case "memory":
		logrus.Warn("[STORAGE] using in-memory medium, cache and offline queue will not survive a restart")
		return NewMemoryMedium(), nil
	case "sqlite", "":
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage folder: %w", err)
		}
		return OpenSQLite(ctx, cfg.Storage.Path)
	case "postgres":
		return OpenPostgres(ctx, database.PostgresDSN(cfg))
	case "gorm":
		db, err := database.NewDatabase(cfg)
		if err != nil {
			return nil, err
		}
		m := NewGormMedium(db)
		if err := m.Init(ctx); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("failed to migrate kv_store: %w", err)
		}
		return m, nil
	case "valkey":
		client, err := valkey.NewClient(valkey.Config{
			Address:   cfg.Valkey.Address,
			Password:  cfg.Valkey.Password,
			DB:        cfg.Valkey.DB,
			KeyPrefix: cfg.Valkey.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		return NewValkeyMedium(client), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}
