package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
	"github.com/tu-usuario/granja-pro/internal/domain/repository"
)

var _ repository.MutationRepository = (*MutationRepo)(nil)

// MutationRepo implementación de MutationRepository sobre PostgreSQL.
// El encabezado y sus ítems se escriben en la transacción del caller, junto con
// los cambios de lotes que el traslado provoca.
type MutationRepo struct {
	q Querier
}

// NewMutationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMutationRepository(q Querier) *MutationRepo {
	return &MutationRepo{q: q}
}

// Create inserta el encabezado y todos los ítems.
func (r *MutationRepo) Create(ctx context.Context, mutation *entity.Mutation) error {
	query := `
		INSERT INTO mutations (id, date, from_farm_id, to_farm_id, notes, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		mutation.ID, mutation.Date, mutation.FromFarmID, mutation.ToFarmID,
		mutation.Notes, mutation.CreatedAt, mutation.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create mutation: %w", err)
	}

	itemQuery := `
		INSERT INTO mutation_items (id, mutation_id, item_id, source_batch_id, dest_batch_id, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, it := range mutation.Items {
		_, err := r.q.Exec(ctx, itemQuery,
			it.ID, it.MutationID, it.ItemID, it.SourceBatchID, it.DestBatchID, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("create mutation item: %w", err)
		}
	}
	return nil
}

// GetByID devuelve el encabezado con sus ítems; nil si no existe.
func (r *MutationRepo) GetByID(ctx context.Context, id string) (*entity.Mutation, error) {
	query := `
		SELECT id, date, from_farm_id, to_farm_id, notes, created_at, created_by
		FROM mutations WHERE id = $1`
	var m entity.Mutation
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Date, &m.FromFarmID, &m.ToFarmID, &m.Notes, &m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get mutation: %w", err)
	}

	itemQuery := `
		SELECT id, mutation_id, item_id, source_batch_id, dest_batch_id, quantity
		FROM mutation_items WHERE mutation_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, itemQuery, id)
	if err != nil {
		return nil, fmt.Errorf("list mutation items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.MutationItem
		if err := rows.Scan(&it.ID, &it.MutationID, &it.ItemID, &it.SourceBatchID, &it.DestBatchID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan mutation item: %w", err)
		}
		m.Items = append(m.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list mutation items: %w", err)
	}
	return &m, nil
}

// Delete elimina encabezado e ítems (reversa de mutación).
func (r *MutationRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM mutation_items WHERE mutation_id = $1`, id); err != nil {
		return fmt.Errorf("delete mutation items: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM mutations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete mutation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete mutation %s: no existe", id)
	}
	return nil
}
