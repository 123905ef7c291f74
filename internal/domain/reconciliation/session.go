// Package reconciliation contiene la máquina de estados de las sesiones de
// inventario: planned --start--> in_progress --close--> closed.
package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// Start pasa la sesión a in_progress y devuelve una línea por producto del alcance
// con la cantidad esperada tomada de expected (producto sin giacenza = 0).
func Start(s *entity.InventoryCount, expected map[string]decimal.Decimal, now time.Time) ([]*entity.CountLine, error) {
	if s.State != entity.CountStatePlanned {
		return nil, domain.ErrInvalidTransition
	}
	lines := make([]*entity.CountLine, 0, len(s.Scope.ProductIDs))
	for _, productID := range s.Scope.ProductIDs {
		qty, ok := expected[productID]
		if !ok {
			qty = decimal.Zero
		}
		lines = append(lines, &entity.CountLine{
			SessionID:        s.ID,
			ProductID:        productID,
			ExpectedQuantity: qty,
			Variance:         decimal.Zero,
			UpdatedAt:        now,
		})
	}
	s.State = entity.CountStateInProgress
	s.OpenedAt = &now
	return lines, nil
}

// RecordCount registra el conteo físico y recalcula la varianza.
func RecordCount(s *entity.InventoryCount, line *entity.CountLine, counted decimal.Decimal, now time.Time) error {
	if s.State != entity.CountStateInProgress {
		return domain.ErrSessionNotActive
	}
	if line == nil || !s.Scope.Contains(line.ProductID) {
		return domain.ErrOutOfScope
	}
	if counted.IsNegative() {
		return domain.ErrInvalidInput
	}
	c := counted
	line.CountedQuantity = &c
	line.Variance = counted.Sub(line.ExpectedQuantity)
	line.UpdatedAt = now
	return nil
}

// PendingAdjustments devuelve las líneas contadas, no resueltas y con varianza distinta de cero.
func PendingAdjustments(lines []*entity.CountLine) []*entity.CountLine {
	var out []*entity.CountLine
	for _, l := range lines {
		if l.Resolved || !l.Counted() || l.Variance.IsZero() {
			continue
		}
		out = append(out, l)
	}
	return out
}

// CanClose valida la transición in_progress -> closed.
func CanClose(s *entity.InventoryCount) error {
	if s.State != entity.CountStateInProgress {
		return domain.ErrInvalidTransition
	}
	return nil
}

// Close marca todas las líneas como resueltas y cierra la sesión (irreversible).
func Close(s *entity.InventoryCount, lines []*entity.CountLine, closedBy string, now time.Time) error {
	if err := CanClose(s); err != nil {
		return err
	}
	for _, l := range lines {
		l.Resolved = true
		l.UpdatedAt = now
	}
	s.State = entity.CountStateClosed
	s.ClosedAt = &now
	s.ClosedBy = closedBy
	return nil
}
