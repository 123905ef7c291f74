package repository

import (
	"context"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// StockLevelRepository puerto de la giacenza materializada (committente + producto).
// Get y GetForUpdate devuelven un nivel en cero (Version 0) si aún no hay fila.
type StockLevelRepository interface {
	Get(ctx context.Context, committenteID, productID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) dentro de la transacción.
	GetForUpdate(ctx context.Context, committenteID, productID string) (*entity.StockLevel, error)
	// Save escribe el nivel si Version coincide con la almacenada e incrementa Version.
	// Si otra transacción lo modificó devuelve domain.ErrWriteConflict.
	Save(ctx context.Context, level *entity.StockLevel) error
	// ListLowStock productos con mínimo > 0 y cantidad <= mínimo, mayor déficit primero.
	ListLowStock(ctx context.Context, committenteID string) ([]entity.LowStockItem, error)
}
