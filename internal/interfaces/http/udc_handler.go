package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/magazzino-api/internal/application/dto"
	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// UDCHandler capacidad de las unidades de carga.
type UDCHandler struct {
	udcs *inventory.UDCCapacityManager
}

// NewUDCHandler construye el handler.
func NewUDCHandler(udcs *inventory.UDCCapacityManager) *UDCHandler {
	return &UDCHandler{udcs: udcs}
}

// Available GET /udcs/available?type_id=&location_id=&min_residual_cm3=&limit=.
func (h *UDCHandler) Available(c *fiber.Ctx) error {
	criteria := entity.UDCCriteria{
		TypeID:         c.Query("type_id"),
		LocationID:     c.Query("location_id"),
		MinResidualCM3: int64(c.QueryInt("min_residual_cm3", 0)),
		Limit:          c.QueryInt("limit", 0),
	}
	list, err := h.udcs.AvailableForPlacement(c.UserContext(), criteria)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total": len(list),
		"udcs":  dto.FromUDCs(list),
	})
}

// Get GET /udcs/:id.
func (h *UDCHandler) Get(c *fiber.Ctx) error {
	u, err := h.udcs.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromUDC(u))
}

// Place POST /udcs/:id/place.
func (h *UDCHandler) Place(c *fiber.Ctx) error {
	var in dto.UDCVolumeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	u, err := h.udcs.Place(c.UserContext(), c.Params("id"), in.VolumeCM3)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromUDC(u))
}

// Remove POST /udcs/:id/remove.
func (h *UDCHandler) Remove(c *fiber.Ctx) error {
	var in dto.UDCVolumeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	u, err := h.udcs.Remove(c.UserContext(), c.Params("id"), in.VolumeCM3)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromUDC(u))
}

// Block POST /udcs/:id/block.
func (h *UDCHandler) Block(c *fiber.Ctx) error {
	var in dto.UDCBlockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	u, err := h.udcs.SetBlocked(c.UserContext(), c.Params("id"), in.Blocked)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromUDC(u))
}
