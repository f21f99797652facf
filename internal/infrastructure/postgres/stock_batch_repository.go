package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
	"github.com/tu-usuario/granja-pro/internal/domain/repository"
)

var _ repository.StockBatchRepository = (*StockBatchRepo)(nil)

// StockBatchRepo implementación de StockBatchRepository sobre PostgreSQL
// (usable con pool o tx). El orden FIFO lo garantiza el ORDER BY del selector;
// la exclusión entre operaciones concurrentes, el FOR UPDATE.
type StockBatchRepo struct {
	q Querier
}

// NewStockBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockBatchRepository(q Querier) *StockBatchRepo {
	return &StockBatchRepo{q: q}
}

const stockBatchColumns = `
	id, farm_id, item_id, COALESCE(origin_batch_id, ''), entry_date, created_order,
	quantity_in, quantity_used, quantity_mutated, unit_cost, created_at, created_by`

func scanStockBatch(row pgx.Row) (*entity.StockBatch, error) {
	var b entity.StockBatch
	err := row.Scan(
		&b.ID, &b.FarmID, &b.ItemID, &b.OriginBatchID, &b.EntryDate, &b.CreatedOrder,
		&b.QuantityIn, &b.QuantityUsed, &b.QuantityMutated, &b.UnitCost, &b.CreatedAt, &b.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserta el lote; created_order lo asigna la secuencia de la tabla.
func (r *StockBatchRepo) Create(ctx context.Context, batch *entity.StockBatch) error {
	query := `
		INSERT INTO stock_batches
			(id, farm_id, item_id, origin_batch_id, entry_date,
			 quantity_in, quantity_used, quantity_mutated, unit_cost, created_at, created_by)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_order`
	err := r.q.QueryRow(ctx, query,
		batch.ID, batch.FarmID, batch.ItemID, batch.OriginBatchID, batch.EntryDate,
		batch.QuantityIn, batch.QuantityUsed, batch.QuantityMutated, batch.UnitCost,
		batch.CreatedAt, batch.CreatedBy,
	).Scan(&batch.CreatedOrder)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create stock batch %s: duplicado", batch.ID)
		}
		return fmt.Errorf("create stock batch: %w", err)
	}
	return nil
}

// GetByID obtiene el lote sin bloqueo; nil si no existe.
func (r *StockBatchRepo) GetByID(ctx context.Context, id string) (*entity.StockBatch, error) {
	query := `SELECT ` + stockBatchColumns + ` FROM stock_batches WHERE id = $1`
	b, err := scanStockBatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock batch: %w", err)
	}
	return b, nil
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *StockBatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockBatch, error) {
	query := `SELECT ` + stockBatchColumns + ` FROM stock_batches WHERE id = $1 FOR UPDATE`
	b, err := scanStockBatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapLockError("stock_batches", fmt.Errorf("get stock batch for update: %w", err))
	}
	return b, nil
}

// ListAvailable lotes con disponible > 0 en orden FIFO, sin bloqueo (previsualización).
func (r *StockBatchRepo) ListAvailable(ctx context.Context, farmID, itemID string) ([]*entity.StockBatch, error) {
	query := `
		SELECT ` + stockBatchColumns + `
		FROM stock_batches
		WHERE farm_id = $1 AND item_id = $2
		  AND quantity_in - quantity_used - quantity_mutated > 0
		ORDER BY entry_date ASC, created_order ASC`
	return r.listBatches(ctx, query, farmID, itemID)
}

// ListAvailableForUpdate es el selector de lotes del motor: candidatos con
// disponible > 0, ordenados por (entry_date ASC, created_order ASC), bloqueados
// con FOR UPDATE hasta el fin de la transacción del caller. Dos operaciones
// concurrentes sobre el mismo (granja, ítem) quedan serializadas aquí.
func (r *StockBatchRepo) ListAvailableForUpdate(ctx context.Context, farmID, itemID string) ([]*entity.StockBatch, error) {
	query := `
		SELECT ` + stockBatchColumns + `
		FROM stock_batches
		WHERE farm_id = $1 AND item_id = $2
		  AND quantity_in - quantity_used - quantity_mutated > 0
		ORDER BY entry_date ASC, created_order ASC
		FOR UPDATE`
	batches, err := r.listBatches(ctx, query, farmID, itemID)
	if err != nil {
		return nil, mapLockError("stock_batches", err)
	}
	return batches, nil
}

func (r *StockBatchRepo) listBatches(ctx context.Context, query, farmID, itemID string) ([]*entity.StockBatch, error) {
	rows, err := r.q.Query(ctx, query, farmID, itemID)
	if err != nil {
		return nil, fmt.Errorf("list stock batches: %w", err)
	}
	defer rows.Close()

	var batches []*entity.StockBatch
	for rows.Next() {
		b, err := scanStockBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stock batches: %w", err)
	}
	return batches, nil
}

// UpdateQuantities persiste los contadores used/mutated. El CHECK de la tabla
// respalda el invariante used + mutated <= in ante cualquier bug del caller.
func (r *StockBatchRepo) UpdateQuantities(ctx context.Context, batch *entity.StockBatch) error {
	query := `
		UPDATE stock_batches
		SET quantity_used = $2, quantity_mutated = $3
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, batch.ID, batch.QuantityUsed, batch.QuantityMutated)
	if err != nil {
		return fmt.Errorf("update stock batch quantities: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock batch %s: no existe", batch.ID)
	}
	return nil
}

// Delete elimina el lote (solo reversa de mutación con destino intacto).
func (r *StockBatchRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stock batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete stock batch %s: no existe", id)
	}
	return nil
}
