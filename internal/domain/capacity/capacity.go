// Package capacity implementa el modelo de capacidad de las UDC: contabilidad
// de volumen y clasificación del estado de llenado. No persiste nada; quien lo
// usa (UDC Capacity Manager) guarda el resultado en la misma transacción del
// movimiento que lo originó.
package capacity

import (
	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// Umbrales de llenado en porcentaje.
const (
	FullThresholdPct      = 100 // estado pieno
	PlacementThresholdPct = 95  // margen de seguridad para nuevas ubicaciones
)

// Snapshot estado de volumen de una UDC.
type Snapshot struct {
	VolumeMaxCM3      int64
	VolumeOccupiedCM3 int64
	State             entity.UDCState
}

// FromUDC toma la foto de volumen de una UDC.
func FromUDC(u *entity.UDC) Snapshot {
	return Snapshot{
		VolumeMaxCM3:      u.VolumeMaxCM3,
		VolumeOccupiedCM3: u.VolumeOccupiedCM3,
		State:             u.State,
	}
}

// ApplyTo copia la foto sobre la UDC (sin persistir).
func (s Snapshot) ApplyTo(u *entity.UDC) {
	u.VolumeOccupiedCM3 = s.VolumeOccupiedCM3
	u.State = s.State
}

// Reserve suma deltaCM3 al volumen ocupado.
// Falla con ErrCapacityExceeded si se supera el máximo y con ErrUDCBlocked si la UDC está bloqueada.
func Reserve(s Snapshot, deltaCM3 int64) (Snapshot, error) {
	if deltaCM3 <= 0 || s.VolumeMaxCM3 <= 0 {
		return s, domain.ErrInvalidInput
	}
	if s.State == entity.UDCStateBlocked {
		return s, domain.ErrUDCBlocked
	}
	if s.VolumeOccupiedCM3+deltaCM3 > s.VolumeMaxCM3 {
		return s, domain.ErrCapacityExceeded
	}
	next := s
	next.VolumeOccupiedCM3 += deltaCM3
	next.State = Classify(next.VolumeOccupiedCM3, next.VolumeMaxCM3, s.State)
	return next, nil
}

// Release resta deltaCM3 del volumen ocupado. Falla con ErrInvalidRelease si quedaría negativo.
func Release(s Snapshot, deltaCM3 int64) (Snapshot, error) {
	if deltaCM3 <= 0 || s.VolumeMaxCM3 <= 0 {
		return s, domain.ErrInvalidInput
	}
	if s.VolumeOccupiedCM3-deltaCM3 < 0 {
		return s, domain.ErrInvalidRelease
	}
	next := s
	next.VolumeOccupiedCM3 -= deltaCM3
	next.State = Classify(next.VolumeOccupiedCM3, next.VolumeMaxCM3, s.State)
	return next, nil
}

// Classify calcula el estado a partir del volumen. bloccato se conserva:
// solo un desbloqueo explícito lo cambia.
func Classify(occupied, max int64, current entity.UDCState) entity.UDCState {
	if current == entity.UDCStateBlocked {
		return current
	}
	switch {
	case atLeastPct(occupied, max, FullThresholdPct):
		return entity.UDCStateFull
	case occupied == 0:
		return entity.UDCStateFree
	default:
		return entity.UDCStateInUse
	}
}

// HasResidualSpace indica si la UDC es candidata para nuevas ubicaciones:
// estado libero o in_uso y llenado por debajo del 95 %.
func HasResidualSpace(s Snapshot) bool {
	if s.State != entity.UDCStateFree && s.State != entity.UDCStateInUse {
		return false
	}
	return !atLeastPct(s.VolumeOccupiedCM3, s.VolumeMaxCM3, PlacementThresholdPct)
}

// atLeastPct compara occupied/max >= pct/100 en aritmética entera.
func atLeastPct(occupied, max int64, pct int64) bool {
	if max <= 0 {
		return true
	}
	return occupied*100 >= max*pct
}
