package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

var _ repository.CausaleRepository = (*CausaleRepo)(nil)

// CausaleRepo lectura de causali.
type CausaleRepo struct {
	q Querier
}

// NewCausaleRepository construye el adaptador.
func NewCausaleRepository(q Querier) *CausaleRepo {
	return &CausaleRepo{q: q}
}

// GetByCode obtiene una causale por código.
func (r *CausaleRepo) GetByCode(ctx context.Context, code string) (*entity.Causale, error) {
	query := `SELECT code, description, requires_authorization, active FROM causali WHERE code = $1`
	var c entity.Causale
	err := r.q.QueryRow(ctx, query, code).Scan(&c.Code, &c.Description, &c.RequiresAuthorization, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get causale: %w", err)
	}
	return &c, nil
}
