package repository

import (
	"context"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// CommittenteRepository puerto de lectura de committenti (datos de referencia).
type CommittenteRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Committente, error)
}
