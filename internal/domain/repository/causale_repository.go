package repository

import (
	"context"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// CausaleRepository puerto de lectura de causali.
type CausaleRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Causale, error)
}
