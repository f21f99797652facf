package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
	"github.com/tu-usuario/granja-pro/internal/domain/repository"
)

var _ repository.FarmRepository = (*FarmRepo)(nil)

// FarmRepo implementación de FarmRepository sobre PostgreSQL.
type FarmRepo struct {
	q Querier
}

// NewFarmRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFarmRepository(q Querier) *FarmRepo {
	return &FarmRepo{q: q}
}

// GetByID devuelve la granja; nil si no existe.
func (r *FarmRepo) GetByID(ctx context.Context, id string) (*entity.Farm, error) {
	query := `SELECT id, name, COALESCE(address, ''), created_at FROM farms WHERE id = $1`
	var f entity.Farm
	err := r.q.QueryRow(ctx, query, id).Scan(&f.ID, &f.Name, &f.Address, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get farm: %w", err)
	}
	return &f, nil
}
