// Package authorization decide si un movimiento se aplica de inmediato o queda
// pendiente de aprobación según su causale.
package authorization

import (
	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// Gate consulta la causale antes de confirmar un movimiento.
type Gate struct{}

// NewGate construye el gate.
func NewGate() Gate { return Gate{} }

// Authorize devuelve auto_approved o pending. Una causale inactiva no admite movimientos.
func (Gate) Authorize(causale *entity.Causale, draft *entity.Movement) (entity.AuthorizationStatus, error) {
	if causale == nil || draft == nil {
		return "", domain.ErrInvalidInput
	}
	if !causale.Active {
		return "", domain.ErrInvalidInput
	}
	if causale.RequiresAuthorization {
		return entity.StatusPending, nil
	}
	return entity.StatusAutoApproved, nil
}

// Decide aplica la única transición permitida: pending -> approved | rejected.
func Decide(current entity.AuthorizationStatus, approve bool) (entity.AuthorizationStatus, error) {
	if !current.Valid() {
		return current, domain.ErrInvalidInput
	}
	if current.Decided() {
		return current, domain.ErrAlreadyDecided
	}
	if approve {
		return entity.StatusApproved, nil
	}
	return entity.StatusRejected, nil
}
