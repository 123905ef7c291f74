package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/magazzino-api/internal/application/dto"
	"github.com/jhoicas/magazzino-api/internal/application/inventory"
)

// StockHandler lecturas de giacenza.
type StockHandler struct {
	ledger *inventory.StockLedger
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *inventory.StockLedger) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// Get GET /stock/:productID.
func (h *StockHandler) Get(c *fiber.Ctx) error {
	productID := c.Params("productID")
	q, err := h.ledger.CurrentStock(c.UserContext(), GetCommittenteID(c), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StockResponse{ProductID: productID, Quantity: q})
}

// LowStock GET /stock/low.
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.ledger.LowStockProducts(c.UserContext(), GetCommittenteID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total": len(items),
		"items": dto.FromLowStock(items),
	})
}
