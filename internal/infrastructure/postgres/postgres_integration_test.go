package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/infrastructure/memory"
	"github.com/jhoicas/magazzino-api/internal/infrastructure/postgres"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// Requiere TEST_DATABASE_URL apuntando a una base descartable.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool, logger.Nop()))
	return pool
}

type seed struct {
	committente, product, udc string
}

func seedData(t *testing.T, pool *pgxpool.Pool) seed {
	t.Helper()
	ctx := context.Background()
	s := seed{committente: uuid.NewString(), product: uuid.NewString(), udc: uuid.NewString()}
	typeID := uuid.NewString()

	_, err := pool.Exec(ctx, `INSERT INTO committenti (id, name) VALUES ($1, 'Test')`, s.committente)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO products (id, committente_id, sku, minimum_stock, unit_volume_cm3)
		VALUES ($1, $2, $3, 10, 5)`, s.product, s.committente, "SKU-"+s.product[:8])
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO causali (code, description) VALUES ('CAR', 'Carico'), ('SCA', 'Scarico')
		ON CONFLICT (code) DO NOTHING`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO udc_types (id, name, volume_max_cm3) VALUES ($1, 'pallet', 1000)`, typeID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO udcs (id, barcode, type_id) VALUES ($1, $2, $3)`, s.udc, "BC-"+s.udc[:8], typeID)
	require.NoError(t, err)
	return s
}

func newLedger(pool *pgxpool.Pool) (*inventory.StockLedger, *inventory.UDCCapacityManager) {
	log := logger.Nop()
	tx := postgres.NewTxRunner(pool)
	reads := postgres.NewRepos(pool)
	udcs := inventory.NewUDCCapacityManager(tx, reads, 5, log)
	return inventory.NewStockLedger(tx, reads, udcs, inventory.LedgerConfig{MaxRetries: 10}, log), udcs
}

func TestPostgres_CommitActualizaStockYUDC(t *testing.T) {
	pool := testPool(t)
	s := seedData(t, pool)
	ledger, udcs := newLedger(pool)
	ctx := context.Background()

	m, err := ledger.Commit(ctx, inventory.MovementDraft{
		CommittenteID: s.committente, ProductID: s.product, CausaleCode: "CAR",
		QuantityDelta: decimal.NewFromInt(100), DestinationUDCID: s.udc,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), m.VolumeCM3)

	q, err := ledger.CurrentStock(ctx, s.committente, s.product)
	require.NoError(t, err)
	assert.True(t, q.Equal(decimal.NewFromInt(100)))

	u, err := udcs.Get(ctx, s.udc)
	require.NoError(t, err)
	assert.Equal(t, int64(500), u.VolumeOccupiedCM3)

	_, err = ledger.Commit(ctx, inventory.MovementDraft{
		CommittenteID: s.committente, ProductID: s.product, CausaleCode: "CAR",
		QuantityDelta: decimal.NewFromInt(101), DestinationUDCID: s.udc,
	})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	q, err = ledger.CurrentStock(ctx, s.committente, s.product)
	require.NoError(t, err)
	assert.True(t, q.Equal(decimal.NewFromInt(100)))
}

func TestPostgres_ConcurrenciaNoVendeDosVeces(t *testing.T) {
	pool := testPool(t)
	s := seedData(t, pool)
	ledger, _ := newLedger(pool)
	ctx := context.Background()

	_, err := ledger.Commit(ctx, inventory.MovementDraft{
		CommittenteID: s.committente, ProductID: s.product, CausaleCode: "CAR", QuantityDelta: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.Commit(ctx, inventory.MovementDraft{
				CommittenteID: s.committente, ProductID: s.product, CausaleCode: "SCA", QuantityDelta: decimal.NewFromInt(-60),
			})
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			failed++
		}
	}
	assert.Equal(t, 1, failed)
	q, err := ledger.CurrentStock(ctx, s.committente, s.product)
	require.NoError(t, err)
	assert.True(t, q.Equal(decimal.NewFromInt(40)))
}

func TestPostgres_ReconciliacionCierra(t *testing.T) {
	pool := testPool(t)
	s := seedData(t, pool)
	ledger, _ := newLedger(pool)
	ctx := context.Background()
	log := logger.Nop()

	_, err := ledger.Commit(ctx, inventory.MovementDraft{
		CommittenteID: s.committente, ProductID: s.product, CausaleCode: "CAR", QuantityDelta: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	rec := inventory.NewReconciliationUseCase(postgres.NewTxRunner(pool), postgres.NewRepos(pool), ledger,
		memory.NewLocker(), inventory.ReconciliationConfig{MaxRetries: 5}, log)
	sess, err := rec.Open(ctx, inventory.OpenCountInput{CommittenteID: s.committente, ProductIDs: []string{s.product}})
	require.NoError(t, err)
	_, err = rec.Start(ctx, s.committente, sess.ID)
	require.NoError(t, err)
	_, err = rec.RecordCount(ctx, s.committente, sess.ID, s.product, decimal.NewFromInt(85))
	require.NoError(t, err)

	res, err := rec.Close(ctx, s.committente, sess.ID, "auditor")
	require.NoError(t, err)
	require.Len(t, res.Adjustments, 1)
	assert.True(t, res.Adjustments[0].QuantityDelta.Equal(decimal.NewFromInt(-15)))

	_, err = rec.Close(ctx, s.committente, sess.ID, "auditor")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	q, err := ledger.CurrentStock(ctx, s.committente, s.product)
	require.NoError(t, err)
	assert.True(t, q.Equal(decimal.NewFromInt(85)))
}
