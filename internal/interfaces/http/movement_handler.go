package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/magazzino-api/internal/application/dto"
	"github.com/jhoicas/magazzino-api/internal/application/inventory"
)

// MovementHandler registro y decisión de movimientos.
type MovementHandler struct {
	ledger *inventory.StockLedger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(ledger *inventory.StockLedger) *MovementHandler {
	return &MovementHandler{ledger: ledger}
}

// Create POST /movements. 201 si el movimiento se aplicó, 202 si quedó pendiente de autorización.
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	m, err := h.ledger.Commit(c.UserContext(), inventory.MovementDraft{
		CommittenteID:       GetCommittenteID(c),
		ProductID:           in.ProductID,
		CausaleCode:         in.CausaleCode,
		QuantityDelta:       in.QuantityDelta,
		VolumeCM3:           in.VolumeCM3,
		SourceUDCID:         in.SourceUDCID,
		DestinationUDCID:    in.DestinationUDCID,
		SourceLocation:      in.SourceLocation,
		DestinationLocation: in.DestinationLocation,
		Reference:           in.Reference,
		CreatedBy:           GetOperatorID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusCreated
	if !m.Status.Effective() {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(dto.FromMovement(m))
}

// Approve POST /movements/:id/approve.
func (h *MovementHandler) Approve(c *fiber.Ctx) error {
	m, err := h.ledger.Approve(c.UserContext(), GetCommittenteID(c), c.Params("id"), GetOperatorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromMovement(m))
}

// Reject POST /movements/:id/reject.
func (h *MovementHandler) Reject(c *fiber.Ctx) error {
	m, err := h.ledger.Reject(c.UserContext(), GetCommittenteID(c), c.Params("id"), GetOperatorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromMovement(m))
}

// History GET /products/:productID/movements?limit=&offset=.
func (h *MovementHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	page.DefaultPage()
	list, err := h.ledger.Movements(c.UserContext(), GetCommittenteID(c), c.Params("productID"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Returned: len(list)},
		"movements": dto.FromMovements(list),
	})
}
