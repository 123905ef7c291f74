package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, committente_id, sku, description, minimum_stock, unit_cost, unit_volume_cm3, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.CommittenteID, &p.SKU, &p.Description, &p.MinimumStock,
		&p.UnitCost, &p.UnitVolumeCM3, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene un producto del committente por ID.
func (r *ProductRepo) GetByID(ctx context.Context, committenteID, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE committente_id = $1 AND id = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, committenteID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetBySKU obtiene un producto por committente y SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, committenteID, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE committente_id = $1 AND sku = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, committenteID, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// ListByIDs productos del committente en el orden de ids; los que no existen se omiten.
func (r *ProductRepo) ListByIDs(ctx context.Context, committenteID string, ids []string) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT p.id, p.committente_id, p.sku, p.description, p.minimum_stock, p.unit_cost,
		       p.unit_volume_cm3, p.created_at, p.updated_at
		FROM products p
		JOIN unnest($2::text[]) WITH ORDINALITY AS wanted(id, ord) ON wanted.id = p.id
		WHERE p.committente_id = $1
		ORDER BY wanted.ord`
	rows, err := r.q.Query(ctx, query, committenteID, ids)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
