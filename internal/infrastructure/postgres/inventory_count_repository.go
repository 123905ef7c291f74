package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

var _ repository.InventoryCountRepository = (*InventoryCountRepo)(nil)

// InventoryCountRepo sesiones de inventario y líneas de conteo.
type InventoryCountRepo struct {
	q Querier
}

// NewInventoryCountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryCountRepository(q Querier) *InventoryCountRepo {
	return &InventoryCountRepo{q: q}
}

// Create inserta una sesión nueva.
func (r *InventoryCountRepo) Create(ctx context.Context, s *entity.InventoryCount) error {
	query := `
		INSERT INTO inventory_counts (id, committente_id, state, product_ids, location_ids, notes,
			created_at, opened_at, closed_at, closed_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query, s.ID, s.CommittenteID, string(s.State), nonNil(s.Scope.ProductIDs),
		nonNil(s.Scope.LocationIDs), s.Notes, s.CreatedAt, s.OpenedAt, s.ClosedAt, s.ClosedBy, s.Version)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert inventory count", err)
	}
	return nil
}

// GetByID obtiene una sesión del committente.
func (r *InventoryCountRepo) GetByID(ctx context.Context, committenteID, id string) (*entity.InventoryCount, error) {
	return r.get(ctx, committenteID, id, "")
}

// GetForUpdate obtiene la sesión bloqueando su fila.
func (r *InventoryCountRepo) GetForUpdate(ctx context.Context, committenteID, id string) (*entity.InventoryCount, error) {
	return r.get(ctx, committenteID, id, " FOR UPDATE")
}

func (r *InventoryCountRepo) get(ctx context.Context, committenteID, id, suffix string) (*entity.InventoryCount, error) {
	query := `
		SELECT id, committente_id, state, product_ids, location_ids, notes,
		       created_at, opened_at, closed_at, closed_by, version
		FROM inventory_counts WHERE committente_id = $1 AND id = $2` + suffix
	var s entity.InventoryCount
	err := r.q.QueryRow(ctx, query, committenteID, id).Scan(
		&s.ID, &s.CommittenteID, &s.State, &s.Scope.ProductIDs, &s.Scope.LocationIDs, &s.Notes,
		&s.CreatedAt, &s.OpenedAt, &s.ClosedAt, &s.ClosedBy, &s.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get inventory count", err)
	}
	return &s, nil
}

// Save actualiza estado y fechas con control de versión.
func (r *InventoryCountRepo) Save(ctx context.Context, s *entity.InventoryCount) error {
	query := `
		UPDATE inventory_counts
		SET state = $2, notes = $3, opened_at = $4, closed_at = $5, closed_by = $6, version = version + 1
		WHERE id = $1 AND version = $7`
	tag, err := r.q.Exec(ctx, query, s.ID, string(s.State), s.Notes, s.OpenedAt, s.ClosedAt, s.ClosedBy, s.Version)
	if err != nil {
		return wrap("save inventory count", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWriteConflict
	}
	s.Version++
	return nil
}

// ListLines líneas de la sesión en orden de alta.
func (r *InventoryCountRepo) ListLines(ctx context.Context, sessionID string) ([]*entity.CountLine, error) {
	query := `
		SELECT session_id, product_id, expected_quantity, counted_quantity, variance, resolved,
		       COALESCE(adjustment_movement_id, ''), updated_at
		FROM count_lines WHERE session_id = $1
		ORDER BY position`
	rows, err := r.q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, wrap("list count lines", err)
	}
	defer rows.Close()

	var list []*entity.CountLine
	for rows.Next() {
		var l entity.CountLine
		if err := rows.Scan(&l.SessionID, &l.ProductID, &l.ExpectedQuantity, &l.CountedQuantity,
			&l.Variance, &l.Resolved, &l.AdjustmentMovementID, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan count line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// SaveLines inserta o actualiza las líneas en un solo batch.
func (r *InventoryCountRepo) SaveLines(ctx context.Context, lines []*entity.CountLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `
		INSERT INTO count_lines (session_id, product_id, expected_quantity, counted_quantity, variance,
			resolved, adjustment_movement_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
		ON CONFLICT (session_id, product_id) DO UPDATE SET
			counted_quantity = EXCLUDED.counted_quantity,
			variance = EXCLUDED.variance,
			resolved = EXCLUDED.resolved,
			adjustment_movement_id = EXCLUDED.adjustment_movement_id,
			updated_at = EXCLUDED.updated_at`
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(query, l.SessionID, l.ProductID, l.ExpectedQuantity, l.CountedQuantity, l.Variance,
			l.Resolved, l.AdjustmentMovementID, l.UpdatedAt)
	}
	br := r.q.SendBatch(ctx, batch)
	for range lines {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return wrap("save count line", err)
		}
	}
	return wrap("save count lines", br.Close())
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
