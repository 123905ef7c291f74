package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// MovementRequest body para POST /api/v1/movements.
// quantity_delta positivo = entrada, negativo = salida; 0 solo en reubicación entre UDC.
type MovementRequest struct {
	ProductID           string          `json:"product_id"`
	CausaleCode         string          `json:"causale"`
	QuantityDelta       decimal.Decimal `json:"quantity_delta"`
	VolumeCM3           int64           `json:"volume_cm3,omitempty"`
	SourceUDCID         string          `json:"source_udc_id,omitempty"`
	DestinationUDCID    string          `json:"destination_udc_id,omitempty"`
	SourceLocation      string          `json:"source_location,omitempty"`
	DestinationLocation string          `json:"destination_location,omitempty"`
	Reference           string          `json:"reference,omitempty"`
}

// MovementResponse movimiento registrado.
type MovementResponse struct {
	ID                  string          `json:"id"`
	ProductID           string          `json:"product_id"`
	CausaleCode         string          `json:"causale"`
	QuantityDelta       decimal.Decimal `json:"quantity_delta"`
	VolumeCM3           int64           `json:"volume_cm3"`
	SourceUDCID         string          `json:"source_udc_id,omitempty"`
	DestinationUDCID    string          `json:"destination_udc_id,omitempty"`
	SourceLocation      string          `json:"source_location,omitempty"`
	DestinationLocation string          `json:"destination_location,omitempty"`
	Status              string          `json:"status"`
	Reference           string          `json:"reference,omitempty"`
	CreatedBy           string          `json:"created_by,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	DecidedBy           string          `json:"decided_by,omitempty"`
	DecidedAt           *time.Time      `json:"decided_at,omitempty"`
}

// FromMovement mapea la entidad a la respuesta.
func FromMovement(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:                  m.ID,
		ProductID:           m.ProductID,
		CausaleCode:         m.CausaleCode,
		QuantityDelta:       m.QuantityDelta,
		VolumeCM3:           m.VolumeCM3,
		SourceUDCID:         m.SourceUDCID,
		DestinationUDCID:    m.DestinationUDCID,
		SourceLocation:      m.SourceLocation,
		DestinationLocation: m.DestinationLocation,
		Status:              string(m.Status),
		Reference:           m.Reference,
		CreatedBy:           m.CreatedBy,
		CreatedAt:           m.CreatedAt,
		DecidedBy:           m.DecidedBy,
		DecidedAt:           m.DecidedAt,
	}
}

// FromMovements mapea una lista.
func FromMovements(list []*entity.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromMovement(m))
	}
	return out
}

// StockResponse giacenza actual de un producto.
type StockResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// LowStockItemDTO producto bajo el mínimo.
type LowStockItemDTO struct {
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	Deficit      decimal.Decimal `json:"deficit"`
}

// FromLowStock mapea la lista de bajo stock.
func FromLowStock(items []entity.LowStockItem) []LowStockItemDTO {
	out := make([]LowStockItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, LowStockItemDTO{
			ProductID:    it.ProductID,
			SKU:          it.SKU,
			Description:  it.Description,
			Quantity:     it.Quantity,
			MinimumStock: it.MinimumStock,
			Deficit:      it.Deficit(),
		})
	}
	return out
}
