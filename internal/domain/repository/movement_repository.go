package repository

import (
	"context"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// MovementRepository puerto del registro append-only de movimientos.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, committenteID, id string) (*entity.Movement, error)
	GetForUpdate(ctx context.Context, committenteID, id string) (*entity.Movement, error)
	// UpdateDecision persiste la transición pending -> approved | rejected.
	// Devuelve domain.ErrWriteConflict si el movimiento ya no está pendiente.
	UpdateDecision(ctx context.Context, movement *entity.Movement) error
	ListByProduct(ctx context.Context, committenteID, productID string, limit, offset int) ([]*entity.Movement, error)
}
