package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// ApplyDelta calcula la nueva giacenza (servicio de dominio, sin persistencia).
// Con allowNegative=false rechaza con ErrInsufficientStock cualquier resultado negativo.
func ApplyDelta(level entity.StockLevel, delta decimal.Decimal, allowNegative bool) (entity.StockLevel, error) {
	if delta.IsZero() {
		return level, domain.ErrInvalidInput
	}
	next := level
	next.Quantity = level.Quantity.Add(delta)
	if !allowNegative && next.Quantity.IsNegative() {
		return level, domain.ErrInsufficientStock
	}
	return next, nil
}

// IsLowStock regla de stock bajo: umbral > 0 y cantidad <= umbral.
func IsLowStock(quantity, minimum decimal.Decimal) bool {
	return minimum.GreaterThan(decimal.Zero) && quantity.LessThanOrEqual(minimum)
}
