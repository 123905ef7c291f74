package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo giacenza materializada por (committente, producto).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// Get obtiene la giacenza actual; sin fila devuelve cero con Version 0.
func (r *StockLevelRepo) Get(ctx context.Context, committenteID, productID string) (*entity.StockLevel, error) {
	return r.get(ctx, committenteID, productID, "")
}

// GetForUpdate obtiene la giacenza y bloquea la fila (SELECT FOR UPDATE).
// Si la fila aún no existe no hay nada que bloquear: el alta concurrente se resuelve en Save.
func (r *StockLevelRepo) GetForUpdate(ctx context.Context, committenteID, productID string) (*entity.StockLevel, error) {
	return r.get(ctx, committenteID, productID, " FOR UPDATE")
}

func (r *StockLevelRepo) get(ctx context.Context, committenteID, productID, suffix string) (*entity.StockLevel, error) {
	query := `
		SELECT committente_id, product_id, quantity, version, updated_at
		FROM stock_levels WHERE committente_id = $1 AND product_id = $2` + suffix
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, committenteID, productID).Scan(
		&s.CommittenteID, &s.ProductID, &s.Quantity, &s.Version, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{CommittenteID: committenteID, ProductID: productID, Quantity: decimal.Zero}, nil
		}
		return nil, wrap("get stock", err)
	}
	return &s, nil
}

// Save inserta o actualiza la giacenza si la versión almacenada es la leída.
func (r *StockLevelRepo) Save(ctx context.Context, level *entity.StockLevel) error {
	query := `
		INSERT INTO stock_levels (committente_id, product_id, quantity, version, updated_at)
		VALUES ($1, $2, $3, $4 + 1, $5)
		ON CONFLICT (committente_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, version = EXCLUDED.version, updated_at = EXCLUDED.updated_at
		WHERE stock_levels.version = $4`
	tag, err := r.q.Exec(ctx, query, level.CommittenteID, level.ProductID, level.Quantity, level.Version, level.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrWriteConflict
		}
		return wrap("save stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWriteConflict
	}
	level.Version++
	return nil
}

// ListLowStock productos con mínimo > 0 y cantidad <= mínimo, mayor déficit primero.
func (r *StockLevelRepo) ListLowStock(ctx context.Context, committenteID string) ([]entity.LowStockItem, error) {
	query := `
		SELECT p.id, p.sku, p.description, COALESCE(s.quantity, 0) AS quantity, p.minimum_stock
		FROM products p
		LEFT JOIN stock_levels s ON s.committente_id = p.committente_id AND s.product_id = p.id
		WHERE p.committente_id = $1
		  AND p.minimum_stock > 0
		  AND COALESCE(s.quantity, 0) <= p.minimum_stock
		ORDER BY (p.minimum_stock - COALESCE(s.quantity, 0)) DESC, p.sku`
	rows, err := r.q.Query(ctx, query, committenteID)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()

	var list []entity.LowStockItem
	for rows.Next() {
		var it entity.LowStockItem
		if err := rows.Scan(&it.ProductID, &it.SKU, &it.Description, &it.Quantity, &it.MinimumStock); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}
