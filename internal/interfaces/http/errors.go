package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/magazzino-api/internal/application/dto"
	"github.com/jhoicas/magazzino-api/internal/domain"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrCapacityExceeded, fiber.StatusConflict, "CAPACITY_EXCEEDED"},
	{domain.ErrInvalidRelease, fiber.StatusConflict, "INVALID_RELEASE"},
	{domain.ErrUDCBlocked, fiber.StatusConflict, "UDC_BLOCKED"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrSessionNotActive, fiber.StatusConflict, "SESSION_NOT_ACTIVE"},
	{domain.ErrOutOfScope, fiber.StatusUnprocessableEntity, "OUT_OF_SCOPE"},
	{domain.ErrAlreadyDecided, fiber.StatusConflict, "ALREADY_DECIDED"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// respondError traduce un error de dominio a su respuesta HTTP.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: domain.ErrInternal.Error()})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
