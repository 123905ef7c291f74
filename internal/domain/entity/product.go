package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del catálogo de un committente.
// La identidad (CommittenteID, SKU) es inmutable; los campos descriptivos no.
// El núcleo solo lo lee: lo administra el catálogo externo.
type Product struct {
	ID            string
	CommittenteID string
	SKU           string // único por committente
	Description   string
	MinimumStock  decimal.Decimal // umbral de stock mínimo (0 = sin control)
	UnitCost      decimal.Decimal
	UnitVolumeCM3 int64 // volumen unitario para convertir cantidad en volumen de UDC
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// VolumeFor devuelve el volumen ocupado por qty unidades (valor absoluto, redondeado hacia arriba).
func (p *Product) VolumeFor(qty decimal.Decimal) int64 {
	if p.UnitVolumeCM3 <= 0 {
		return 0
	}
	return qty.Abs().Mul(decimal.NewFromInt(p.UnitVolumeCM3)).Ceil().IntPart()
}
