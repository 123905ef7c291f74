package repository

import (
	"context"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo. Todas las búsquedas van acotadas
// por committente: un producto de otro committente se comporta como inexistente.
type ProductRepository interface {
	GetByID(ctx context.Context, committenteID, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, committenteID, sku string) (*entity.Product, error)
	ListByIDs(ctx context.Context, committenteID string, ids []string) ([]*entity.Product, error)
}
