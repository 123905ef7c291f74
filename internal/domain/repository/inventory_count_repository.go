package repository

import (
	"context"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// InventoryCountRepository puerto de sesiones de inventario y sus líneas.
// Toda escritura de líneas debe ir acompañada de Save de la sesión en la misma
// transacción: la versión de la sesión protege también a sus líneas.
type InventoryCountRepository interface {
	Create(ctx context.Context, session *entity.InventoryCount) error
	GetByID(ctx context.Context, committenteID, id string) (*entity.InventoryCount, error)
	GetForUpdate(ctx context.Context, committenteID, id string) (*entity.InventoryCount, error)
	Save(ctx context.Context, session *entity.InventoryCount) error
	ListLines(ctx context.Context, sessionID string) ([]*entity.CountLine, error)
	SaveLines(ctx context.Context, lines []*entity.CountLine) error
}
