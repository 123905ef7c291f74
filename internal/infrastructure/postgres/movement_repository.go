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

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo registro append-only de movimientos. Solo se actualiza la decisión de un pendiente.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, committente_id, product_id, causale_code, quantity_delta, volume_cm3,
	COALESCE(source_udc_id, ''), COALESCE(destination_udc_id, ''), source_location, destination_location,
	status, reference, created_by, created_at, decided_by, decided_at`

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(&m.ID, &m.CommittenteID, &m.ProductID, &m.CausaleCode, &m.QuantityDelta, &m.VolumeCM3,
		&m.SourceUDCID, &m.DestinationUDCID, &m.SourceLocation, &m.DestinationLocation,
		&m.Status, &m.Reference, &m.CreatedBy, &m.CreatedAt, &m.DecidedBy, &m.DecidedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create registra un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (id, committente_id, product_id, causale_code, quantity_delta, volume_cm3,
			source_udc_id, destination_udc_id, source_location, destination_location,
			status, reference, created_by, created_at, decided_by, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CommittenteID, m.ProductID, m.CausaleCode, m.QuantityDelta, m.VolumeCM3,
		m.SourceUDCID, m.DestinationUDCID, m.SourceLocation, m.DestinationLocation,
		string(m.Status), m.Reference, m.CreatedBy, m.CreatedAt, m.DecidedBy, m.DecidedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento del committente.
func (r *MovementRepo) GetByID(ctx context.Context, committenteID, id string) (*entity.Movement, error) {
	return r.get(ctx, committenteID, id, "")
}

// GetForUpdate obtiene el movimiento bloqueando la fila.
func (r *MovementRepo) GetForUpdate(ctx context.Context, committenteID, id string) (*entity.Movement, error) {
	return r.get(ctx, committenteID, id, " FOR UPDATE")
}

func (r *MovementRepo) get(ctx context.Context, committenteID, id, suffix string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE committente_id = $1 AND id = $2` + suffix
	m, err := scanMovement(r.q.QueryRow(ctx, query, committenteID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get movement", err)
	}
	return m, nil
}

// UpdateDecision persiste pending -> approved | rejected; si ya no estaba pendiente devuelve ErrWriteConflict.
func (r *MovementRepo) UpdateDecision(ctx context.Context, m *entity.Movement) error {
	query := `
		UPDATE movements SET status = $3, decided_by = $4, decided_at = $5
		WHERE committente_id = $1 AND id = $2 AND status = 'pending'`
	tag, err := r.q.Exec(ctx, query, m.CommittenteID, m.ID, string(m.Status), m.DecidedBy, m.DecidedAt)
	if err != nil {
		return wrap("update movement decision", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWriteConflict
	}
	return nil
}

// ListByProduct historial paginado, más recientes primero.
func (r *MovementRepo) ListByProduct(ctx context.Context, committenteID, productID string, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM movements
		WHERE committente_id = $1 AND product_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, committenteID, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
