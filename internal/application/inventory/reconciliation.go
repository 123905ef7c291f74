package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/reconciliation"
	"github.com/jhoicas/magazzino-api/pkg/logger"
	"github.com/jhoicas/magazzino-api/pkg/metrics"
)

// ReconciliationConfig parámetros del flujo de inventario.
type ReconciliationConfig struct {
	MaxRetries        int
	AdjustmentCausale string
}

// OpenCountInput entrada para planificar una sesión de inventario.
type OpenCountInput struct {
	CommittenteID string
	ProductIDs    []string
	LocationIDs   []string
	Notes         string
}

// CountView sesión con sus líneas.
type CountView struct {
	Session *entity.InventoryCount
	Lines   []*entity.CountLine
}

// CloseResult resultado del cierre: sesión cerrada y ajustes generados.
type CloseResult struct {
	Session     *entity.InventoryCount
	Lines       []*entity.CountLine
	Adjustments []*entity.Movement
}

// ReconciliationUseCase flujo de conteo por committente: congela las cantidades esperadas,
// recoge los conteos físicos y al cerrar emite los ajustes a través del Stock Ledger.
// Nunca escribe la giacenza directamente.
type ReconciliationUseCase struct {
	tx     TxRunner
	reads  Repos
	ledger *StockLedger
	locker SessionLocker
	cfg    ReconciliationConfig
	log    *logger.Logger
	now    func() time.Time
}

// NewReconciliationUseCase construye el caso de uso.
func NewReconciliationUseCase(tx TxRunner, reads Repos, ledger *StockLedger, locker SessionLocker, cfg ReconciliationConfig, log *logger.Logger) *ReconciliationUseCase {
	if cfg.AdjustmentCausale == "" {
		cfg.AdjustmentCausale = entity.CausaleAdjustment
	}
	return &ReconciliationUseCase{
		tx:     tx,
		reads:  reads,
		ledger: ledger,
		locker: locker,
		cfg:    cfg,
		log:    log.Component("reconciliation"),
		now:    time.Now,
	}
}

// Open crea una sesión en estado planned. El alcance no puede estar vacío y
// todos los productos deben pertenecer al committente.
func (uc *ReconciliationUseCase) Open(ctx context.Context, in OpenCountInput) (*entity.InventoryCount, error) {
	if in.CommittenteID == "" {
		return nil, domain.ErrInvalidInput
	}
	productIDs := dedupe(in.ProductIDs)
	if len(productIDs) == 0 {
		return nil, domain.ErrInvalidInput
	}

	committente, err := uc.reads.Committenti.GetByID(ctx, in.CommittenteID)
	if err != nil {
		return nil, surface(uc.log, "count_open", err)
	}
	if committente == nil {
		return nil, domain.ErrNotFound
	}
	products, err := uc.reads.Products.ListByIDs(ctx, in.CommittenteID, productIDs)
	if err != nil {
		return nil, surface(uc.log, "count_open", err)
	}
	if len(products) != len(productIDs) {
		return nil, domain.ErrNotFound
	}

	s := &entity.InventoryCount{
		ID:            uuid.New().String(),
		CommittenteID: in.CommittenteID,
		State:         entity.CountStatePlanned,
		Scope:         entity.CountScope{ProductIDs: productIDs, LocationIDs: dedupe(in.LocationIDs)},
		Notes:         in.Notes,
		CreatedAt:     uc.now(),
	}
	err = uc.tx.Run(ctx, func(r Repos) error {
		return r.Counts.Create(ctx, s)
	})
	if err != nil {
		return nil, surface(uc.log, "count_open", err)
	}
	uc.log.ForCommittente(in.CommittenteID).Info().
		Str("session_id", s.ID).
		Int("products", len(productIDs)).
		Msg("sesión de inventario planificada")
	return s, nil
}

// Start pasa la sesión a in_progress tomando la foto de la giacenza de cada producto del alcance.
func (uc *ReconciliationUseCase) Start(ctx context.Context, committenteID, sessionID string) (*CountView, error) {
	if committenteID == "" || sessionID == "" {
		return nil, domain.ErrInvalidInput
	}
	unlock, err := uc.locker.Lock(ctx, sessionLockKey(sessionID))
	if err != nil {
		return nil, surface(uc.log, "count_start", err)
	}
	defer unlock()

	var view *CountView
	err = withRetry(ctx, "count_start", uc.cfg.MaxRetries, uc.log, func() error {
		return uc.tx.Run(ctx, func(r Repos) error {
			s, err := r.Counts.GetForUpdate(ctx, committenteID, sessionID)
			if err != nil {
				return err
			}
			if s == nil {
				return domain.ErrNotFound
			}
			if s.State != entity.CountStatePlanned {
				return domain.ErrInvalidTransition
			}
			expected := make(map[string]decimal.Decimal, len(s.Scope.ProductIDs))
			for _, productID := range s.Scope.ProductIDs {
				level, err := r.Stock.Get(ctx, committenteID, productID)
				if err != nil {
					return err
				}
				expected[productID] = level.Quantity
			}
			lines, err := reconciliation.Start(s, expected, uc.now())
			if err != nil {
				return err
			}
			if err := r.Counts.SaveLines(ctx, lines); err != nil {
				return err
			}
			if err := r.Counts.Save(ctx, s); err != nil {
				return err
			}
			view = &CountView{Session: s, Lines: lines}
			return nil
		})
	})
	if err != nil {
		return nil, surface(uc.log, "count_start", err)
	}
	uc.log.ForCommittente(committenteID).Info().Str("session_id", sessionID).Msg("conteo iniciado")
	return view, nil
}

// RecordCount registra (o corrige) el conteo físico de un producto mientras la sesión está in_progress.
func (uc *ReconciliationUseCase) RecordCount(ctx context.Context, committenteID, sessionID, productID string, counted decimal.Decimal) (*entity.CountLine, error) {
	if committenteID == "" || sessionID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.CountLine
	err := withRetry(ctx, "count_record", uc.cfg.MaxRetries, uc.log, func() error {
		return uc.tx.Run(ctx, func(r Repos) error {
			s, err := r.Counts.GetForUpdate(ctx, committenteID, sessionID)
			if err != nil {
				return err
			}
			if s == nil {
				return domain.ErrNotFound
			}
			if s.State != entity.CountStateInProgress {
				return domain.ErrSessionNotActive
			}
			if !s.Scope.Contains(productID) {
				return domain.ErrOutOfScope
			}
			lines, err := r.Counts.ListLines(ctx, sessionID)
			if err != nil {
				return err
			}
			line := findLine(lines, productID)
			if line == nil {
				return domain.ErrOutOfScope
			}
			if err := reconciliation.RecordCount(s, line, counted, uc.now()); err != nil {
				return err
			}
			if err := r.Counts.SaveLines(ctx, []*entity.CountLine{line}); err != nil {
				return err
			}
			// La versión de la sesión protege sus líneas frente a un cierre concurrente.
			if err := r.Counts.Save(ctx, s); err != nil {
				return err
			}
			out = line
			return nil
		})
	})
	if err != nil {
		return nil, surface(uc.log, "count_record", err)
	}
	return out, nil
}

// Close genera un ajuste por cada línea con varianza, los aplica vía Stock Ledger y cierra la sesión.
// Todo o nada: si un ajuste falla (p. ej. ErrInsufficientStock) la sesión sigue in_progress
// y ninguna línea queda resuelta.
func (uc *ReconciliationUseCase) Close(ctx context.Context, committenteID, sessionID, closedBy string) (*CloseResult, error) {
	if committenteID == "" || sessionID == "" {
		return nil, domain.ErrInvalidInput
	}
	unlock, err := uc.locker.Lock(ctx, sessionLockKey(sessionID))
	if err != nil {
		return nil, surface(uc.log, "count_close", err)
	}
	defer unlock()

	var res *CloseResult
	err = withRetry(ctx, "count_close", uc.cfg.MaxRetries, uc.log, func() error {
		return uc.tx.Run(ctx, func(r Repos) error {
			s, err := r.Counts.GetForUpdate(ctx, committenteID, sessionID)
			if err != nil {
				return err
			}
			if s == nil {
				return domain.ErrNotFound
			}
			if err := reconciliation.CanClose(s); err != nil {
				return err
			}
			lines, err := r.Counts.ListLines(ctx, sessionID)
			if err != nil {
				return err
			}

			var adjustments []*entity.Movement
			for _, line := range reconciliation.PendingAdjustments(lines) {
				m, err := uc.ledger.commitInTx(ctx, r, MovementDraft{
					CommittenteID: committenteID,
					ProductID:     line.ProductID,
					CausaleCode:   uc.cfg.AdjustmentCausale,
					QuantityDelta: line.Variance,
					Reference:     sessionID,
					CreatedBy:     closedBy,
				})
				if err != nil {
					return err
				}
				line.AdjustmentMovementID = m.ID
				adjustments = append(adjustments, m)
			}

			if err := reconciliation.Close(s, lines, closedBy, uc.now()); err != nil {
				return err
			}
			if err := r.Counts.SaveLines(ctx, lines); err != nil {
				return err
			}
			if err := r.Counts.Save(ctx, s); err != nil {
				return err
			}
			res = &CloseResult{Session: s, Lines: lines, Adjustments: adjustments}
			return nil
		})
	})
	if err != nil {
		uc.log.ForCommittente(committenteID).Warn().Err(err).Str("session_id", sessionID).Msg("cierre de inventario abortado")
		return nil, surface(uc.log, "count_close", err)
	}

	metrics.ReconciliationsClosedTotal.Inc()
	metrics.AdjustmentMovementsTotal.Add(float64(len(res.Adjustments)))
	uc.log.ForCommittente(committenteID).Info().
		Str("session_id", sessionID).
		Int("adjustments", len(res.Adjustments)).
		Msg("inventario cerrado")
	return res, nil
}

// Get devuelve la sesión y sus líneas.
func (uc *ReconciliationUseCase) Get(ctx context.Context, committenteID, sessionID string) (*CountView, error) {
	if committenteID == "" || sessionID == "" {
		return nil, domain.ErrInvalidInput
	}
	s, err := uc.reads.Counts.GetByID(ctx, committenteID, sessionID)
	if err != nil {
		return nil, surface(uc.log, "count_get", err)
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.reads.Counts.ListLines(ctx, sessionID)
	if err != nil {
		return nil, surface(uc.log, "count_get", err)
	}
	return &CountView{Session: s, Lines: lines}, nil
}

func sessionLockKey(sessionID string) string {
	return "inventory_count:" + sessionID
}

func findLine(lines []*entity.CountLine, productID string) *entity.CountLine {
	for _, l := range lines {
		if l.ProductID == productID {
			return l
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
