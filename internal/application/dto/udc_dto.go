package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// UDCVolumeRequest body para place / remove.
type UDCVolumeRequest struct {
	VolumeCM3 int64 `json:"volume_cm3"`
}

// UDCBlockRequest body para bloquear / desbloquear.
type UDCBlockRequest struct {
	Blocked bool `json:"blocked"`
}

// UDCResponse unidad de carga con su llenado.
type UDCResponse struct {
	ID                string          `json:"id"`
	Barcode           string          `json:"barcode"`
	TypeID            string          `json:"type_id"`
	LocationID        string          `json:"location_id,omitempty"`
	VolumeMaxCM3      int64           `json:"volume_max_cm3"`
	VolumeOccupiedCM3 int64           `json:"volume_occupied_cm3"`
	ResidualCM3       int64           `json:"residual_cm3"`
	FillPercentage    decimal.Decimal `json:"fill_percentage"`
	State             string          `json:"state"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// FromUDC mapea la entidad.
func FromUDC(u *entity.UDC) UDCResponse {
	return UDCResponse{
		ID:                u.ID,
		Barcode:           u.Barcode,
		TypeID:            u.TypeID,
		LocationID:        u.LocationID,
		VolumeMaxCM3:      u.VolumeMaxCM3,
		VolumeOccupiedCM3: u.VolumeOccupiedCM3,
		ResidualCM3:       u.ResidualCM3(),
		FillPercentage:    u.FillPercentage(),
		State:             string(u.State),
		UpdatedAt:         u.UpdatedAt,
	}
}

// FromUDCs mapea una lista.
func FromUDCs(list []*entity.UDC) []UDCResponse {
	out := make([]UDCResponse, 0, len(list))
	for _, u := range list {
		out = append(out, FromUDC(u))
	}
	return out
}
