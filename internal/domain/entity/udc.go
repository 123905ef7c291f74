package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UDCState estado operativo de una unidad de carga.
type UDCState string

const (
	UDCStateFree    UDCState = "libero"
	UDCStateInUse   UDCState = "in_uso"
	UDCStateFull    UDCState = "pieno"
	UDCStateBlocked UDCState = "bloccato"
)

// UDCType define el volumen máximo de una familia de contenedores.
type UDCType struct {
	ID           string
	Name         string
	VolumeMaxCM3 int64
}

// UDC unidad de carga (pallet, caja) identificada por código de barras.
// Invariante: 0 <= VolumeOccupiedCM3 <= VolumeMaxCM3.
type UDC struct {
	ID                string
	Barcode           string
	TypeID            string
	VolumeMaxCM3      int64 // copiado del tipo al leer
	VolumeOccupiedCM3 int64
	State             UDCState
	LocationID        string
	Version           int64
	UpdatedAt         time.Time
}

// FillPercentage devuelve volume_occupato / volume_max * 100 con dos decimales.
func (u *UDC) FillPercentage() decimal.Decimal {
	if u.VolumeMaxCM3 <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(u.VolumeOccupiedCM3).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(u.VolumeMaxCM3)).
		Round(2)
}

// ResidualCM3 volumen todavía libre.
func (u *UDC) ResidualCM3() int64 {
	return u.VolumeMaxCM3 - u.VolumeOccupiedCM3
}

// UDCCriteria filtros para buscar UDC disponibles para ubicar mercancía.
type UDCCriteria struct {
	TypeID         string
	LocationID     string
	MinResidualCM3 int64
	Limit          int
}
