package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuthorizationStatus estado de autorización de un movimiento.
// Variante cerrada: solo existen los cuatro valores declarados abajo.
type AuthorizationStatus string

const (
	StatusAutoApproved AuthorizationStatus = "auto_approved"
	StatusPending      AuthorizationStatus = "pending"
	StatusApproved     AuthorizationStatus = "approved"
	StatusRejected     AuthorizationStatus = "rejected"
)

// Valid indica si el estado es uno de los valores conocidos.
func (s AuthorizationStatus) Valid() bool {
	switch s {
	case StatusAutoApproved, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Effective indica si el movimiento produce efecto sobre stock y UDC.
func (s AuthorizationStatus) Effective() bool {
	return s == StatusAutoApproved || s == StatusApproved
}

// Decided indica si el movimiento ya no admite transiciones.
func (s AuthorizationStatus) Decided() bool {
	return s != StatusPending
}

// Movement es un movimiento de stock inmutable una vez confirmado.
// La única mutación permitida es la decisión pending -> approved | rejected.
type Movement struct {
	ID                  string
	CommittenteID       string
	ProductID           string
	CausaleCode         string
	QuantityDelta       decimal.Decimal // positivo entrada, negativo salida
	VolumeCM3           int64           // volumen físico movido entre UDC (0 = sin efecto de capacidad)
	SourceUDCID         string
	DestinationUDCID    string
	SourceLocation      string
	DestinationLocation string
	Status              AuthorizationStatus
	Reference           string // p. ej. ID de la sesión de inventario que lo originó
	CreatedBy           string
	CreatedAt           time.Time
	DecidedBy           string
	DecidedAt           *time.Time
}

// TouchesUDC indica si el movimiento tiene efecto sobre alguna UDC.
func (m *Movement) TouchesUDC() bool {
	return m.VolumeCM3 > 0 && (m.SourceUDCID != "" || m.DestinationUDCID != "")
}
