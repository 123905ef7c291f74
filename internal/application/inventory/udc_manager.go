package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/capacity"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/pkg/logger"
	"github.com/jhoicas/magazzino-api/pkg/metrics"
)

const defaultPlacementLimit = 20

// UDCCapacityManager es el único escritor de volumen y estado de las UDC.
type UDCCapacityManager struct {
	tx         TxRunner
	reads      Repos
	maxRetries int
	log        *logger.Logger
	now        func() time.Time
}

// NewUDCCapacityManager construye el gestor de capacidad.
func NewUDCCapacityManager(tx TxRunner, reads Repos, maxRetries int, log *logger.Logger) *UDCCapacityManager {
	return &UDCCapacityManager{
		tx:         tx,
		reads:      reads,
		maxRetries: maxRetries,
		log:        log.Component("udc_manager"),
		now:        time.Now,
	}
}

// Place reserva volumen en la UDC. Con ErrCapacityExceeded la UDC queda sin cambios.
func (m *UDCCapacityManager) Place(ctx context.Context, udcID string, volumeCM3 int64) (*entity.UDC, error) {
	return m.adjust(ctx, "place", udcID, func(s capacity.Snapshot) (capacity.Snapshot, error) {
		return capacity.Reserve(s, volumeCM3)
	})
}

// Remove libera volumen de la UDC. Con ErrInvalidRelease la UDC queda sin cambios.
func (m *UDCCapacityManager) Remove(ctx context.Context, udcID string, volumeCM3 int64) (*entity.UDC, error) {
	return m.adjust(ctx, "remove", udcID, func(s capacity.Snapshot) (capacity.Snapshot, error) {
		return capacity.Release(s, volumeCM3)
	})
}

// SetBlocked bloquea o desbloquea una UDC. Al desbloquear el estado se recalcula desde el volumen.
func (m *UDCCapacityManager) SetBlocked(ctx context.Context, udcID string, blocked bool) (*entity.UDC, error) {
	return m.adjust(ctx, "block", udcID, func(s capacity.Snapshot) (capacity.Snapshot, error) {
		if blocked {
			s.State = entity.UDCStateBlocked
			return s, nil
		}
		s.State = capacity.Classify(s.VolumeOccupiedCM3, s.VolumeMaxCM3, "")
		return s, nil
	})
}

func (m *UDCCapacityManager) adjust(ctx context.Context, op, udcID string, fn func(capacity.Snapshot) (capacity.Snapshot, error)) (*entity.UDC, error) {
	if udcID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.UDC
	err := withRetry(ctx, "udc_"+op, m.maxRetries, m.log, func() error {
		return m.tx.Run(ctx, func(r Repos) error {
			u, err := r.UDCs.GetForUpdate(ctx, udcID)
			if err != nil {
				return err
			}
			if u == nil {
				return domain.ErrNotFound
			}
			next, err := fn(capacity.FromUDC(u))
			if err != nil {
				return err
			}
			next.ApplyTo(u)
			u.UpdatedAt = m.now()
			if err := r.UDCs.Save(ctx, u); err != nil {
				return err
			}
			out = u
			return nil
		})
	})
	if err != nil {
		metrics.UDCOperationsTotal.WithLabelValues(op, "error").Inc()
		return nil, surface(m.log, "udc_"+op, err)
	}
	metrics.UDCOperationsTotal.WithLabelValues(op, "ok").Inc()
	m.log.Debug().
		Str("udc_id", out.ID).
		Str("op", op).
		Int64("occupied_cm3", out.VolumeOccupiedCM3).
		Str("state", string(out.State)).
		Msg("UDC actualizada")
	return out, nil
}

// planMovement calcula (sin persistir) el nuevo estado de las UDC afectadas por un movimiento:
// libera volumen en origen y lo reserva en destino. Las filas quedan bloqueadas en la tx.
func (m *UDCCapacityManager) planMovement(ctx context.Context, r Repos, mov *entity.Movement) ([]*entity.UDC, error) {
	if !mov.TouchesUDC() {
		return nil, nil
	}
	var out []*entity.UDC
	if mov.SourceUDCID != "" {
		u, err := m.planOne(ctx, r, mov.SourceUDCID, func(s capacity.Snapshot) (capacity.Snapshot, error) {
			return capacity.Release(s, mov.VolumeCM3)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if mov.DestinationUDCID != "" {
		u, err := m.planOne(ctx, r, mov.DestinationUDCID, func(s capacity.Snapshot) (capacity.Snapshot, error) {
			return capacity.Reserve(s, mov.VolumeCM3)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *UDCCapacityManager) planOne(ctx context.Context, r Repos, udcID string, fn func(capacity.Snapshot) (capacity.Snapshot, error)) (*entity.UDC, error) {
	u, err := r.UDCs.GetForUpdate(ctx, udcID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	next, err := fn(capacity.FromUDC(u))
	if err != nil {
		return nil, err
	}
	next.ApplyTo(u)
	return u, nil
}

// checkReferenced verifica que las UDC nombradas por un movimiento existan (sin bloquearlas).
func (m *UDCCapacityManager) checkReferenced(ctx context.Context, r Repos, mov *entity.Movement) error {
	for _, id := range []string{mov.SourceUDCID, mov.DestinationUDCID} {
		if id == "" {
			continue
		}
		u, err := r.UDCs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

// Get devuelve una UDC.
func (m *UDCCapacityManager) Get(ctx context.Context, udcID string) (*entity.UDC, error) {
	u, err := m.reads.UDCs.GetByID(ctx, udcID)
	if err != nil {
		return nil, surface(m.log, "udc_get", err)
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// AvailableForPlacement UDC con estado libero/in_uso y llenado < 95 %, ordenadas de la más
// llena a la más vacía: se consolidan las UDC parcialmente ocupadas antes de abrir nuevas.
func (m *UDCCapacityManager) AvailableForPlacement(ctx context.Context, criteria entity.UDCCriteria) ([]*entity.UDC, error) {
	if criteria.MinResidualCM3 < 0 {
		return nil, domain.ErrInvalidInput
	}
	list, err := m.reads.UDCs.ListCandidates(ctx, criteria)
	if err != nil {
		return nil, surface(m.log, "udc_available", err)
	}
	out := make([]*entity.UDC, 0, len(list))
	for _, u := range list {
		if !capacity.HasResidualSpace(capacity.FromUDC(u)) {
			continue
		}
		if criteria.MinResidualCM3 > 0 && u.ResidualCM3() < criteria.MinResidualCM3 {
			continue
		}
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		// occupied_i/max_i > occupied_j/max_j sin división
		a := out[i].VolumeOccupiedCM3 * out[j].VolumeMaxCM3
		b := out[j].VolumeOccupiedCM3 * out[i].VolumeMaxCM3
		if a != b {
			return a > b
		}
		return out[i].Barcode < out[j].Barcode
	})
	limit := criteria.Limit
	if limit <= 0 {
		limit = defaultPlacementLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
