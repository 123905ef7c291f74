package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

var _ repository.UDCRepository = (*UDCRepo)(nil)

// UDCRepo unidades de carga; el volumen máximo se lee del tipo.
type UDCRepo struct {
	q Querier
}

// NewUDCRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUDCRepository(q Querier) *UDCRepo {
	return &UDCRepo{q: q}
}

const udcSelect = `
	SELECT u.id, u.barcode, u.type_id, t.volume_max_cm3, u.volume_occupied_cm3, u.state,
	       u.location_id, u.version, u.updated_at
	FROM udcs u
	JOIN udc_types t ON t.id = u.type_id`

func scanUDC(row pgx.Row) (*entity.UDC, error) {
	var u entity.UDC
	err := row.Scan(&u.ID, &u.Barcode, &u.TypeID, &u.VolumeMaxCM3, &u.VolumeOccupiedCM3, &u.State,
		&u.LocationID, &u.Version, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID obtiene una UDC.
func (r *UDCRepo) GetByID(ctx context.Context, id string) (*entity.UDC, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene la UDC bloqueando su fila (no la del tipo).
func (r *UDCRepo) GetForUpdate(ctx context.Context, id string) (*entity.UDC, error) {
	return r.get(ctx, id, " FOR UPDATE OF u")
}

func (r *UDCRepo) get(ctx context.Context, id, suffix string) (*entity.UDC, error) {
	u, err := scanUDC(r.q.QueryRow(ctx, udcSelect+` WHERE u.id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get udc", err)
	}
	return u, nil
}

// Save escribe volumen y estado si la versión coincide.
func (r *UDCRepo) Save(ctx context.Context, u *entity.UDC) error {
	query := `
		UPDATE udcs SET volume_occupied_cm3 = $2, state = $3, updated_at = $4, version = version + 1
		WHERE id = $1 AND version = $5`
	tag, err := r.q.Exec(ctx, query, u.ID, u.VolumeOccupiedCM3, string(u.State), u.UpdatedAt, u.Version)
	if err != nil {
		return wrap("save udc", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWriteConflict
	}
	u.Version++
	return nil
}

// ListCandidates UDC libero / in_uso filtradas por tipo y ubicación. El umbral y el orden los aplica el gestor.
func (r *UDCRepo) ListCandidates(ctx context.Context, c entity.UDCCriteria) ([]*entity.UDC, error) {
	var (
		where = []string{`u.state IN ('libero', 'in_uso')`}
		args  []any
	)
	if c.TypeID != "" {
		args = append(args, c.TypeID)
		where = append(where, fmt.Sprintf("u.type_id = $%d", len(args)))
	}
	if c.LocationID != "" {
		args = append(args, c.LocationID)
		where = append(where, fmt.Sprintf("u.location_id = $%d", len(args)))
	}
	query := udcSelect + ` WHERE ` + strings.Join(where, " AND ")

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list udc candidates: %w", err)
	}
	defer rows.Close()

	var list []*entity.UDC
	for rows.Next() {
		u, err := scanUDC(rows)
		if err != nil {
			return nil, fmt.Errorf("scan udc: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
