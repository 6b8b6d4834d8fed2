package config

import (
	"fmt"

	"github.com/marmos91/dittotape/internal/logger"
	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/catalogue/badger"
	gormstore "github.com/marmos91/dittotape/pkg/catalogue/gorm"
	"github.com/marmos91/dittotape/pkg/catalogue/memory"
	"github.com/marmos91/dittotape/pkg/metrics"
)

// CreateCatalogue opens the configured catalogue backend.
//
// The store is instrumented with catalogue metrics when metrics are
// enabled. The caller owns the store and must Close it.
func CreateCatalogue(cfg CatalogueConfig) (catalogue.Store, error) {
	store, err := createCatalogueStore(cfg)
	if err != nil {
		return nil, err
	}

	logger.Debug("Catalogue opened", logger.StoreType(string(store.Type())))
	return catalogue.Instrument(store, metrics.NewCatalogueMetrics()), nil
}

func createCatalogueStore(cfg CatalogueConfig) (catalogue.Store, error) {
	switch cfg.Type {
	case catalogue.TypeMemory:
		return memory.New(), nil
	case catalogue.TypeBadger:
		store, err := badger.New(cfg.Badger)
		if err != nil {
			return nil, fmt.Errorf("failed to create badger catalogue: %w", err)
		}
		return store, nil
	case catalogue.TypeSQLite, catalogue.TypePostgres:
		db := cfg.Database()
		db.ApplyDefaults()
		store, err := gormstore.New(db)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s catalogue: %w", cfg.Type, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown catalogue type: %q", cfg.Type)
	}
}
