package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
	"github.com/tu-usuario/granja-pro/internal/domain/repository"
)

var _ repository.FlockRepository = (*FlockRepo)(nil)

// FlockRepo implementación de FlockRepository sobre PostgreSQL. La proyección
// de estado se guarda en flock_states con los metadatos de auditoría en JSONB.
type FlockRepo struct {
	q Querier
}

// NewFlockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFlockRepository(q Querier) *FlockRepo {
	return &FlockRepo{q: q}
}

const flockColumns = `
	id, farm_id, name, initial_quantity, quantity_depletion, quantity_sales,
	quantity_mutated, entry_date, created_at`

func scanFlock(row pgx.Row) (*entity.Flock, error) {
	var f entity.Flock
	err := row.Scan(
		&f.ID, &f.FarmID, &f.Name, &f.InitialQuantity, &f.QuantityDepletion,
		&f.QuantitySales, &f.QuantityMutated, &f.EntryDate, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByID devuelve la parvada; nil si no existe.
func (r *FlockRepo) GetByID(ctx context.Context, id string) (*entity.Flock, error) {
	query := `SELECT ` + flockColumns + ` FROM flocks WHERE id = $1`
	f, err := scanFlock(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get flock: %w", err)
	}
	return f, nil
}

// GetForUpdate bloquea la fila de la parvada (SELECT FOR UPDATE) para la sincronización.
func (r *FlockRepo) GetForUpdate(ctx context.Context, id string) (*entity.Flock, error) {
	query := `SELECT ` + flockColumns + ` FROM flocks WHERE id = $1 FOR UPDATE`
	f, err := scanFlock(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapLockError("flocks", fmt.Errorf("get flock for update: %w", err))
	}
	return f, nil
}

// UpdateAggregates persiste los contadores recalculados de la parvada.
func (r *FlockRepo) UpdateAggregates(ctx context.Context, flock *entity.Flock) error {
	query := `
		UPDATE flocks
		SET quantity_depletion = $2, quantity_sales = $3, quantity_mutated = $4
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		flock.ID, flock.QuantityDepletion, flock.QuantitySales, flock.QuantityMutated,
	)
	if err != nil {
		return fmt.Errorf("update flock aggregates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update flock %s: no existe", flock.ID)
	}
	return nil
}

// SumSales suma completa de aves vendidas (tabla livestock_sales).
func (r *FlockRepo) SumSales(ctx context.Context, flockID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(quantity), 0) FROM livestock_sales WHERE flock_id = $1`
	if err := r.q.QueryRow(ctx, query, flockID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum livestock sales: %w", err)
	}
	return sum, nil
}

// SumMutated suma completa de aves trasladadas (tabla livestock_mutations).
func (r *FlockRepo) SumMutated(ctx context.Context, flockID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(quantity), 0) FROM livestock_mutations WHERE from_flock_id = $1`
	if err := r.q.QueryRow(ctx, query, flockID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum livestock mutations: %w", err)
	}
	return sum, nil
}

// GetState devuelve la proyección actual; nil si aún no existe.
func (r *FlockRepo) GetState(ctx context.Context, flockID string) (*entity.FlockState, error) {
	query := `SELECT flock_id, quantity, metadata, updated_at FROM flock_states WHERE flock_id = $1`
	var s entity.FlockState
	var metadata []byte
	err := r.q.QueryRow(ctx, query, flockID).Scan(&s.FlockID, &s.Quantity, &metadata, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get flock state: %w", err)
	}
	if err := json.Unmarshal(metadata, &s.Metadata); err != nil {
		return nil, fmt.Errorf("decode flock state metadata: %w", err)
	}
	return &s, nil
}

// SaveState sobreescribe la proyección completa (upsert).
func (r *FlockRepo) SaveState(ctx context.Context, state *entity.FlockState) error {
	metadata, err := json.Marshal(state.Metadata)
	if err != nil {
		return fmt.Errorf("encode flock state metadata: %w", err)
	}
	query := `
		INSERT INTO flock_states (flock_id, quantity, metadata, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (flock_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at`
	_, err = r.q.Exec(ctx, query, state.FlockID, state.Quantity, metadata, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save flock state: %w", err)
	}
	return nil
}
