package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/magazzino-api/internal/application/dto"
)

// Cabeceras y Locals del contexto de tenant.
const (
	HeaderCommittenteID = "X-Committente-ID"
	HeaderOperatorID    = "X-Operator-ID"

	LocalCommittenteID = "committente_id"
	LocalOperatorID    = "operator_id"
)

// TenantMiddleware exige X-Committente-ID y deja committente y operador en c.Locals.
// No autentica: la identidad la resuelve el proxy delante del servicio.
func TenantMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		committenteID := strings.TrimSpace(c.Get(HeaderCommittenteID))
		if committenteID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_COMMITTENTE", Message: HeaderCommittenteID + " requerido"})
		}
		c.Locals(LocalCommittenteID, committenteID)
		c.Locals(LocalOperatorID, strings.TrimSpace(c.Get(HeaderOperatorID)))
		return c.Next()
	}
}

// GetCommittenteID devuelve el committente del contexto (después del middleware).
func GetCommittenteID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalCommittenteID).(string)
	return s
}

// GetOperatorID devuelve el operador que firma la operación (puede ser vacío).
func GetOperatorID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalOperatorID).(string)
	return s
}
