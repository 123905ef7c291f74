package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/infrastructure/memory"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

const (
	tenant      = "c1"
	otherTenant = "c2"
	product     = "p1"
	product2    = "p2"
	causaleIn   = "CAR"
	causaleOut  = "SCA"
	causaleAuth = "RESO"
)

type fixture struct {
	store  *memory.Store
	udcs   *inventory.UDCCapacityManager
	ledger *inventory.StockLedger
	counts *inventory.ReconciliationUseCase
	sheet  *inventory.CountSheetUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	s.AddCommittente(entity.Committente{ID: tenant, Name: "Acme"})
	s.AddCommittente(entity.Committente{ID: otherTenant, Name: "Globex"})
	s.AddProduct(entity.Product{ID: product, CommittenteID: tenant, SKU: "B-200", Description: "Bulloni", MinimumStock: decimal.NewFromInt(20), UnitVolumeCM3: 10})
	s.AddProduct(entity.Product{ID: product2, CommittenteID: tenant, SKU: "A-100", Description: "Viti", MinimumStock: decimal.NewFromInt(5)})
	s.AddCausale(entity.Causale{Code: causaleIn, Description: "Carico", Active: true})
	s.AddCausale(entity.Causale{Code: causaleOut, Description: "Scarico", Active: true})
	s.AddCausale(entity.Causale{Code: causaleAuth, Description: "Reso da autorizzare", Active: true, RequiresAuthorization: true})
	s.AddCausale(entity.Causale{Code: entity.CausaleAdjustment, Description: "Rettifica inventariale", Active: true})
	s.AddUDCType(entity.UDCType{ID: "pallet", Name: "Pallet EUR", VolumeMaxCM3: 1000})

	log := logger.Nop()
	reads := s.Repos()
	udcs := inventory.NewUDCCapacityManager(s, reads, 5, log)
	ledger := inventory.NewStockLedger(s, reads, udcs, inventory.LedgerConfig{MaxRetries: 5}, log)
	counts := inventory.NewReconciliationUseCase(s, reads, ledger, memory.NewLocker(),
		inventory.ReconciliationConfig{MaxRetries: 5, AdjustmentCausale: entity.CausaleAdjustment}, log)
	return &fixture{
		store:  s,
		udcs:   udcs,
		ledger: ledger,
		counts: counts,
		sheet:  inventory.NewCountSheetUseCase(reads, nil, log),
	}
}

func (f *fixture) addUDC(t *testing.T, id string, occupied int64) {
	t.Helper()
	require.NoError(t, f.store.AddUDC(entity.UDC{ID: id, Barcode: "BC-" + id, TypeID: "pallet", VolumeOccupiedCM3: occupied, State: stateFor(occupied)}))
}

func stateFor(occupied int64) entity.UDCState {
	switch {
	case occupied == 0:
		return entity.UDCStateFree
	case occupied >= 1000:
		return entity.UDCStateFull
	default:
		return entity.UDCStateInUse
	}
}

func (f *fixture) commit(t *testing.T, causale string, delta int64) *entity.Movement {
	t.Helper()
	m, err := f.ledger.Commit(context.Background(), inventory.MovementDraft{
		CommittenteID: tenant,
		ProductID:     product,
		CausaleCode:   causale,
		QuantityDelta: decimal.NewFromInt(delta),
		CreatedBy:     "op",
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) stock(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	q, err := f.ledger.CurrentStock(context.Background(), tenant, productID)
	require.NoError(t, err)
	return q
}

func (f *fixture) udc(t *testing.T, id string) *entity.UDC {
	t.Helper()
	u, err := f.udcs.Get(context.Background(), id)
	require.NoError(t, err)
	return u
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
