package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CountState estado de una sesión de inventario (conteggio).
type CountState string

const (
	CountStatePlanned    CountState = "planned"
	CountStateInProgress CountState = "in_progress"
	CountStateClosed     CountState = "closed"
)

// CountScope conjunto de productos (y ubicaciones informativas) a contar.
type CountScope struct {
	ProductIDs  []string
	LocationIDs []string
}

// Contains indica si el producto forma parte del alcance.
func (s CountScope) Contains(productID string) bool {
	for _, id := range s.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// InventoryCount sesión de reconciliación de inventario de un committente.
type InventoryCount struct {
	ID            string
	CommittenteID string
	State         CountState
	Scope         CountScope
	Notes         string
	CreatedAt     time.Time
	OpenedAt      *time.Time
	ClosedAt      *time.Time
	ClosedBy      string
	Version       int64
}

// CountLine línea de conteo por producto dentro de una sesión.
type CountLine struct {
	SessionID            string
	ProductID            string
	ExpectedQuantity     decimal.Decimal // foto tomada al iniciar la sesión
	CountedQuantity      *decimal.Decimal
	Variance             decimal.Decimal // contado - esperado
	Resolved             bool
	AdjustmentMovementID string
	UpdatedAt            time.Time
}

// Counted indica si ya se registró un conteo físico.
func (l *CountLine) Counted() bool {
	return l.CountedQuantity != nil
}
