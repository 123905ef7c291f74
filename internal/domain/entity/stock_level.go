package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel es la giacenza materializada de un producto por committente.
// Su único escritor es el Stock Ledger; Quantity == suma de los deltas confirmados.
type StockLevel struct {
	CommittenteID string
	ProductID     string
	Quantity      decimal.Decimal
	Version       int64 // se incrementa en cada escritura (control de concurrencia)
	UpdatedAt     time.Time
}

// LowStockItem producto cuyo stock está en o por debajo de su mínimo.
type LowStockItem struct {
	ProductID    string
	SKU          string
	Description  string
	Quantity     decimal.Decimal
	MinimumStock decimal.Decimal
}

// Deficit devuelve cuánto falta para volver al mínimo.
func (i LowStockItem) Deficit() decimal.Decimal {
	return i.MinimumStock.Sub(i.Quantity)
}
