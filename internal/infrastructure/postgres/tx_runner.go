package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL REPEATABLE READ.
// Un conflicto de serialización se devuelve como domain.ErrWriteConflict para que el caso de uso reintente.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		if isSerializationFailure(err) {
			return wrap("tx", err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrap("commit transaction", err)
	}
	return nil
}

// NewRepos repositorios sobre un Querier (pool para lecturas, tx dentro de Run).
func NewRepos(q Querier) inventory.Repos {
	return inventory.Repos{
		Committenti: NewCommittenteRepository(q),
		Products:    NewProductRepository(q),
		Causali:     NewCausaleRepository(q),
		Stock:       NewStockLevelRepository(q),
		Movements:   NewMovementRepository(q),
		UDCs:        NewUDCRepository(q),
		Counts:      NewInventoryCountRepository(q),
	}
}
