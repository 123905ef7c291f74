package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/infrastructure/memory"
	"github.com/jhoicas/magazzino-api/internal/infrastructure/postgres"
	"github.com/jhoicas/magazzino-api/pkg/config"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// storage backend elegido por STORAGE_DRIVER.
type storage struct {
	tx     inventory.TxRunner
	reads  inventory.Repos
	locker inventory.SessionLocker
	close  func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	switch cfg.App.StorageDriver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		if err := seedDemo(store, cfg.Ledger.AdjustmentCausale); err != nil {
			return nil, fmt.Errorf("datos demo: %w", err)
		}
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{tx: store, reads: store.Repos(), locker: memory.NewLocker(), close: func() {}}, nil

	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		return &storage{
			tx:     postgres.NewTxRunner(pool),
			reads:  postgres.NewRepos(pool),
			locker: memory.NewLocker(),
			close:  pool.Close,
		}, nil
	}
}

// seedDemo datos de referencia mínimos para probar la API sin base de datos.
func seedDemo(s *memory.Store, adjustmentCausale string) error {
	s.AddCommittente(entity.Committente{ID: "demo", Name: "Committente demo"})
	s.AddProduct(entity.Product{
		ID: "demo-p1", CommittenteID: "demo", SKU: "DEMO-001", Description: "Prodotto demo",
		MinimumStock: decimal.NewFromInt(10), UnitVolumeCM3: 1000,
	})
	s.AddCausale(entity.Causale{Code: "CAR", Description: "Carico", Active: true})
	s.AddCausale(entity.Causale{Code: "SCA", Description: "Scarico", Active: true})
	s.AddCausale(entity.Causale{Code: "RESO", Description: "Reso cliente", Active: true, RequiresAuthorization: true})
	s.AddCausale(entity.Causale{Code: adjustmentCausale, Description: "Rettifica inventariale", Active: true})
	s.AddUDCType(entity.UDCType{ID: "EUR", Name: "Pallet EUR", VolumeMaxCM3: 1_728_000})
	return s.AddUDC(entity.UDC{ID: "UDC-0001", Barcode: "8000000000001", TypeID: "EUR", LocationID: "A-01-01"})
}
