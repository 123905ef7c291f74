package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// OpenCountRequest body para POST /api/v1/counts.
type OpenCountRequest struct {
	ProductIDs  []string `json:"product_ids"`
	LocationIDs []string `json:"location_ids,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// RecordCountRequest body para PUT /api/v1/counts/:id/lines/:productID.
type RecordCountRequest struct {
	CountedQuantity decimal.Decimal `json:"counted_quantity"`
}

// CountLineDTO línea de conteo.
type CountLineDTO struct {
	ProductID            string           `json:"product_id"`
	ExpectedQuantity     decimal.Decimal  `json:"expected_quantity"`
	CountedQuantity      *decimal.Decimal `json:"counted_quantity"`
	Variance             decimal.Decimal  `json:"variance"`
	Resolved             bool             `json:"resolved"`
	AdjustmentMovementID string           `json:"adjustment_movement_id,omitempty"`
}

// CountResponse sesión de inventario con sus líneas.
type CountResponse struct {
	ID          string         `json:"id"`
	State       string         `json:"state"`
	ProductIDs  []string       `json:"product_ids"`
	LocationIDs []string       `json:"location_ids,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	OpenedAt    *time.Time     `json:"opened_at,omitempty"`
	ClosedAt    *time.Time     `json:"closed_at,omitempty"`
	ClosedBy    string         `json:"closed_by,omitempty"`
	Lines       []CountLineDTO `json:"lines"`
}

// CloseCountResponse sesión cerrada y ajustes emitidos.
type CloseCountResponse struct {
	Count       CountResponse      `json:"count"`
	Adjustments []MovementResponse `json:"adjustments"`
}

// FromCount mapea sesión y líneas.
func FromCount(s *entity.InventoryCount, lines []*entity.CountLine) CountResponse {
	out := CountResponse{
		ID:          s.ID,
		State:       string(s.State),
		ProductIDs:  s.Scope.ProductIDs,
		LocationIDs: s.Scope.LocationIDs,
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt,
		OpenedAt:    s.OpenedAt,
		ClosedAt:    s.ClosedAt,
		ClosedBy:    s.ClosedBy,
		Lines:       make([]CountLineDTO, 0, len(lines)),
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, FromCountLine(l))
	}
	return out
}

// FromCountLine mapea una línea.
func FromCountLine(l *entity.CountLine) CountLineDTO {
	return CountLineDTO{
		ProductID:            l.ProductID,
		ExpectedQuantity:     l.ExpectedQuantity,
		CountedQuantity:      l.CountedQuantity,
		Variance:             l.Variance,
		Resolved:             l.Resolved,
		AdjustmentMovementID: l.AdjustmentMovementID,
	}
}
