package repository

import (
	"context"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// UDCRepository puerto de las unidades de carga. VolumeMaxCM3 viene del tipo de UDC.
type UDCRepository interface {
	GetByID(ctx context.Context, id string) (*entity.UDC, error)
	GetForUpdate(ctx context.Context, id string) (*entity.UDC, error)
	// Save escribe volumen y estado con control de versión (domain.ErrWriteConflict).
	Save(ctx context.Context, udc *entity.UDC) error
	// ListCandidates UDC en estado libero o in_uso que cumplen los filtros de tipo y ubicación.
	ListCandidates(ctx context.Context, criteria entity.UDCCriteria) ([]*entity.UDC, error)
}
