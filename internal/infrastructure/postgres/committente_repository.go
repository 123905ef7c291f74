package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

var _ repository.CommittenteRepository = (*CommittenteRepo)(nil)

// CommittenteRepo lectura de committenti sobre PostgreSQL.
type CommittenteRepo struct {
	q Querier
}

// NewCommittenteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCommittenteRepository(q Querier) *CommittenteRepo {
	return &CommittenteRepo{q: q}
}

// GetByID obtiene un committente; nil, nil si no existe.
func (r *CommittenteRepo) GetByID(ctx context.Context, id string) (*entity.Committente, error) {
	query := `
		SELECT id, name, allow_negative_stock, created_at, updated_at
		FROM committenti WHERE id = $1`
	var c entity.Committente
	err := r.q.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.AllowNegativeStock, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get committente: %w", err)
	}
	return &c, nil
}
