package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/authorization"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/inventory"
	"github.com/jhoicas/magazzino-api/pkg/logger"
	"github.com/jhoicas/magazzino-api/pkg/metrics"
)

// normalizeCode limpia y pasa a mayúsculas códigos de causale.
// cases.Caser no es seguro entre goroutines: uno por llamada.
func normalizeCode(code string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(code))
}

const maxHistoryLimit = 100

// LedgerConfig parámetros del Stock Ledger.
type LedgerConfig struct {
	MaxRetries           int
	DefaultAllowNegative bool // para committenti sin política explícita
}

// MovementDraft entrada para registrar un movimiento.
// QuantityDelta puede ser 0 solo en una reubicación entre dos UDC (VolumeCM3 obligatorio).
// Si VolumeCM3 es 0 y hay UDC, se deriva del volumen unitario del producto.
type MovementDraft struct {
	CommittenteID       string
	ProductID           string
	CausaleCode         string
	QuantityDelta       decimal.Decimal
	VolumeCM3           int64
	SourceUDCID         string
	DestinationUDCID    string
	SourceLocation      string
	DestinationLocation string
	Reference           string
	CreatedBy           string
}

func (d MovementDraft) validate() error {
	if d.CommittenteID == "" || d.ProductID == "" || strings.TrimSpace(d.CausaleCode) == "" {
		return domain.ErrInvalidInput
	}
	if d.VolumeCM3 < 0 {
		return domain.ErrInvalidInput
	}
	if d.SourceUDCID != "" && d.SourceUDCID == d.DestinationUDCID {
		return domain.ErrInvalidInput
	}
	if d.QuantityDelta.IsZero() {
		relocation := d.SourceUDCID != "" && d.DestinationUDCID != "" && d.VolumeCM3 > 0
		if !relocation {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// StockLedger es el único punto por el que pasa cualquier cambio de cantidad:
// registro append-only de movimientos + proyección materializada de la giacenza.
type StockLedger struct {
	tx    TxRunner
	reads Repos
	gate  authorization.Gate
	udcs  *UDCCapacityManager
	cfg   LedgerConfig
	log   *logger.Logger
	now   func() time.Time
}

// NewStockLedger construye el caso de uso. reads son repositorios sobre el pool (lecturas).
func NewStockLedger(tx TxRunner, reads Repos, udcs *UDCCapacityManager, cfg LedgerConfig, log *logger.Logger) *StockLedger {
	return &StockLedger{
		tx:    tx,
		reads: reads,
		gate:  authorization.NewGate(),
		udcs:  udcs,
		cfg:   cfg,
		log:   log.Component("stock_ledger"),
		now:   time.Now,
	}
}

// Commit valida el borrador, consulta el gate de autorización y, si el movimiento
// es efectivo, aplica stock y UDC en la misma unidad de trabajo que el alta del movimiento.
// Un movimiento pendiente se guarda sin ningún efecto.
func (l *StockLedger) Commit(ctx context.Context, draft MovementDraft) (*entity.Movement, error) {
	start := time.Now()
	defer func() { metrics.OperationLatency.WithLabelValues("commit").Observe(time.Since(start).Seconds()) }()

	if err := draft.validate(); err != nil {
		return nil, err
	}
	var out *entity.Movement
	err := withRetry(ctx, "commit", l.cfg.MaxRetries, l.log, func() error {
		return l.tx.Run(ctx, func(r Repos) error {
			m, err := l.commitInTx(ctx, r, draft)
			if err != nil {
				return err
			}
			out = m
			return nil
		})
	})
	if err != nil {
		metrics.MovementsRejectedTotal.WithLabelValues(reasonOf(err)).Inc()
		return nil, surface(l.log, "commit", err)
	}

	metrics.MovementsCommittedTotal.WithLabelValues(string(out.Status)).Inc()
	l.log.ForCommittente(out.CommittenteID).Info().
		Str("movement_id", out.ID).
		Str("product_id", out.ProductID).
		Str("causale", out.CausaleCode).
		Str("delta", out.QuantityDelta.String()).
		Str("status", string(out.Status)).
		Msg("movimiento registrado")
	return out, nil
}

// commitInTx ejecuta el commit usando los repositorios de una transacción abierta por el llamador.
// La reconciliación lo usa para que todos sus ajustes compartan una sola unidad de trabajo.
func (l *StockLedger) commitInTx(ctx context.Context, r Repos, draft MovementDraft) (*entity.Movement, error) {
	if err := draft.validate(); err != nil {
		return nil, err
	}
	committente, err := r.Committenti.GetByID(ctx, draft.CommittenteID)
	if err != nil {
		return nil, err
	}
	if committente == nil {
		return nil, domain.ErrNotFound
	}
	product, err := r.Products.GetByID(ctx, draft.CommittenteID, draft.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	causale, err := r.Causali.GetByCode(ctx, normalizeCode(draft.CausaleCode))
	if err != nil {
		return nil, err
	}
	if causale == nil {
		return nil, domain.ErrNotFound
	}

	now := l.now()
	m := &entity.Movement{
		ID:                  uuid.New().String(),
		CommittenteID:       draft.CommittenteID,
		ProductID:           draft.ProductID,
		CausaleCode:         causale.Code,
		QuantityDelta:       draft.QuantityDelta,
		VolumeCM3:           draft.VolumeCM3,
		SourceUDCID:         draft.SourceUDCID,
		DestinationUDCID:    draft.DestinationUDCID,
		SourceLocation:      draft.SourceLocation,
		DestinationLocation: draft.DestinationLocation,
		Reference:           draft.Reference,
		CreatedBy:           draft.CreatedBy,
		CreatedAt:           now,
	}
	if m.VolumeCM3 == 0 && (m.SourceUDCID != "" || m.DestinationUDCID != "") {
		m.VolumeCM3 = product.VolumeFor(m.QuantityDelta)
	}

	// Las UDC nombradas deben existir aunque el movimiento no mueva volumen.
	if err := l.udcs.checkReferenced(ctx, r, m); err != nil {
		return nil, err
	}

	status, err := l.gate.Authorize(causale, m)
	if err != nil {
		return nil, err
	}
	m.Status = status

	if status.Effective() {
		if err := l.applyEffects(ctx, r, committente, m, now); err != nil {
			return nil, err
		}
	}
	if err := r.Movements.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// applyEffects: fase 1 calcula stock y UDC con funciones puras (sin persistir);
// fase 2 persiste ambos. Un fallo de capacidad nunca deja un cambio de stock huérfano.
func (l *StockLedger) applyEffects(ctx context.Context, r Repos, committente *entity.Committente, m *entity.Movement, now time.Time) error {
	var nextLevel *entity.StockLevel
	if !m.QuantityDelta.IsZero() {
		// Bloquea la fila de giacenza (SELECT FOR UPDATE) para serializar por (committente, producto)
		level, err := r.Stock.GetForUpdate(ctx, m.CommittenteID, m.ProductID)
		if err != nil {
			return err
		}
		next, err := inventory.ApplyDelta(*level, m.QuantityDelta, l.allowNegative(committente))
		if err != nil {
			return err
		}
		next.UpdatedAt = now
		nextLevel = &next
	}

	udcs, err := l.udcs.planMovement(ctx, r, m)
	if err != nil {
		return err
	}

	if nextLevel != nil {
		if err := r.Stock.Save(ctx, nextLevel); err != nil {
			return err
		}
	}
	for _, u := range udcs {
		u.UpdatedAt = now
		if err := r.UDCs.Save(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (l *StockLedger) allowNegative(c *entity.Committente) bool {
	if c == nil || c.AllowNegativeStock == nil {
		return l.cfg.DefaultAllowNegative
	}
	return *c.AllowNegativeStock
}

// Approve aprueba un movimiento pendiente y aplica sus efectos en la misma unidad de trabajo.
func (l *StockLedger) Approve(ctx context.Context, committenteID, movementID, decidedBy string) (*entity.Movement, error) {
	return l.decide(ctx, committenteID, movementID, decidedBy, true)
}

// Reject rechaza un movimiento pendiente (terminal, sin efecto, se conserva para auditoría).
func (l *StockLedger) Reject(ctx context.Context, committenteID, movementID, decidedBy string) (*entity.Movement, error) {
	return l.decide(ctx, committenteID, movementID, decidedBy, false)
}

func (l *StockLedger) decide(ctx context.Context, committenteID, movementID, decidedBy string, approve bool) (*entity.Movement, error) {
	if committenteID == "" || movementID == "" {
		return nil, domain.ErrInvalidInput
	}
	op := "reject"
	if approve {
		op = "approve"
	}
	var out *entity.Movement
	err := withRetry(ctx, op, l.cfg.MaxRetries, l.log, func() error {
		return l.tx.Run(ctx, func(r Repos) error {
			m, err := r.Movements.GetForUpdate(ctx, committenteID, movementID)
			if err != nil {
				return err
			}
			if m == nil {
				return domain.ErrNotFound
			}
			next, err := authorization.Decide(m.Status, approve)
			if err != nil {
				return err
			}
			now := l.now()
			m.Status = next
			m.DecidedBy = decidedBy
			m.DecidedAt = &now

			if next.Effective() {
				committente, err := r.Committenti.GetByID(ctx, committenteID)
				if err != nil {
					return err
				}
				if err := l.applyEffects(ctx, r, committente, m, now); err != nil {
					return err
				}
			}
			if err := r.Movements.UpdateDecision(ctx, m); err != nil {
				return err
			}
			out = m
			return nil
		})
	})
	if err != nil {
		return nil, surface(l.log, op, err)
	}
	metrics.MovementsDecidedTotal.WithLabelValues(string(out.Status)).Inc()
	l.log.ForCommittente(committenteID).Info().
		Str("movement_id", out.ID).
		Str("status", string(out.Status)).
		Str("decided_by", decidedBy).
		Msg("movimiento decidido")
	return out, nil
}

// CurrentStock lectura puntual de la proyección materializada (nunca se recalcula desde el log).
func (l *StockLedger) CurrentStock(ctx context.Context, committenteID, productID string) (decimal.Decimal, error) {
	if committenteID == "" || productID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	product, err := l.reads.Products.GetByID(ctx, committenteID, productID)
	if err != nil {
		return decimal.Zero, surface(l.log, "current_stock", err)
	}
	if product == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	level, err := l.reads.Stock.Get(ctx, committenteID, productID)
	if err != nil {
		return decimal.Zero, surface(l.log, "current_stock", err)
	}
	return level.Quantity, nil
}

// LowStockProducts productos con cantidad <= mínimo (mínimo > 0), mayor déficit primero.
func (l *StockLedger) LowStockProducts(ctx context.Context, committenteID string) ([]entity.LowStockItem, error) {
	if committenteID == "" {
		return nil, domain.ErrInvalidInput
	}
	items, err := l.reads.Stock.ListLowStock(ctx, committenteID)
	if err != nil {
		return nil, surface(l.log, "low_stock", err)
	}
	out := make([]entity.LowStockItem, 0, len(items))
	for _, it := range items {
		if inventory.IsLowStock(it.Quantity, it.MinimumStock) {
			out = append(out, it)
		}
	}
	return out, nil
}

// Movements historial de movimientos de un producto, más recientes primero.
func (l *StockLedger) Movements(ctx context.Context, committenteID, productID string, limit, offset int) ([]*entity.Movement, error) {
	if committenteID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	switch {
	case limit <= 0:
		limit = 50
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	list, err := l.reads.Movements.ListByProduct(ctx, committenteID, productID, limit, offset)
	if err != nil {
		return nil, surface(l.log, "movements", err)
	}
	return list, nil
}

// reasonOf etiqueta de métrica para un error de commit.
func reasonOf(err error) string {
	switch surface(logger.Nop(), "", err) {
	case domain.ErrInsufficientStock:
		return "insufficient_stock"
	case domain.ErrCapacityExceeded:
		return "capacity_exceeded"
	case domain.ErrInvalidRelease:
		return "invalid_release"
	case domain.ErrUDCBlocked:
		return "udc_blocked"
	case domain.ErrNotFound:
		return "not_found"
	case domain.ErrInvalidInput:
		return "validation"
	case domain.ErrConflict:
		return "conflict"
	default:
		return "internal"
	}
}
