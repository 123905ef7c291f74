package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/magazzino-api/internal/application/dto"
	"github.com/jhoicas/magazzino-api/internal/application/inventory"
)

// CountHandler sesiones de inventario (conteggi).
type CountHandler struct {
	counts *inventory.ReconciliationUseCase
	sheet  *inventory.CountSheetUseCase
}

// NewCountHandler construye el handler.
func NewCountHandler(counts *inventory.ReconciliationUseCase, sheet *inventory.CountSheetUseCase) *CountHandler {
	return &CountHandler{counts: counts, sheet: sheet}
}

// Open POST /counts.
func (h *CountHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenCountRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	s, err := h.counts.Open(c.UserContext(), inventory.OpenCountInput{
		CommittenteID: GetCommittenteID(c),
		ProductIDs:    in.ProductIDs,
		LocationIDs:   in.LocationIDs,
		Notes:         in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromCount(s, nil))
}

// Start POST /counts/:id/start.
func (h *CountHandler) Start(c *fiber.Ctx) error {
	view, err := h.counts.Start(c.UserContext(), GetCommittenteID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromCount(view.Session, view.Lines))
}

// RecordCount PUT /counts/:id/lines/:productID.
func (h *CountHandler) RecordCount(c *fiber.Ctx) error {
	var in dto.RecordCountRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	line, err := h.counts.RecordCount(c.UserContext(), GetCommittenteID(c), c.Params("id"), c.Params("productID"), in.CountedQuantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromCountLine(line))
}

// Close POST /counts/:id/close.
func (h *CountHandler) Close(c *fiber.Ctx) error {
	res, err := h.counts.Close(c.UserContext(), GetCommittenteID(c), c.Params("id"), GetOperatorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.CloseCountResponse{
		Count:       dto.FromCount(res.Session, res.Lines),
		Adjustments: dto.FromMovements(res.Adjustments),
	})
}

// Get GET /counts/:id.
func (h *CountHandler) Get(c *fiber.Ctx) error {
	view, err := h.counts.Get(c.UserContext(), GetCommittenteID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromCount(view.Session, view.Lines))
}

// SheetPDF GET /counts/:id/sheet.pdf.
func (h *CountHandler) SheetPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	doc, err := h.sheet.PDF(c.UserContext(), GetCommittenteID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="inventario-`+id+`.pdf"`)
	return c.Send(doc)
}
