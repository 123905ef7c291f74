package inventory

import (
	"context"

	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

// Repos agrupa los repositorios que ve una unidad de trabajo.
// Fuera de una transacción se usa con repositorios sobre el pool (solo lecturas).
type Repos struct {
	Committenti repository.CommittenteRepository
	Products    repository.ProductRepository
	Causali     repository.CausaleRepository
	Stock       repository.StockLevelRepository
	Movements   repository.MovementRepository
	UDCs        repository.UDCRepository
	Counts      repository.InventoryCountRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad: si fn devuelve error no queda ningún efecto parcial.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// SessionLocker exclusión mutua por sesión de inventario (start/close no se intercalan).
type SessionLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
