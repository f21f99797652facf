package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
	"github.com/tu-usuario/granja-pro/internal/domain/repository"
)

var _ repository.DepletionEventRepository = (*DepletionEventRepo)(nil)

// DepletionEventRepo implementación de DepletionEventRepository sobre PostgreSQL.
type DepletionEventRepo struct {
	q Querier
}

// NewDepletionEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDepletionEventRepository(q Querier) *DepletionEventRepo {
	return &DepletionEventRepo{q: q}
}

const depletionEventColumns = `
	id, flock_id, type, quantity, date, COALESCE(recording_id, ''), created_at, created_by`

func scanDepletionEvent(row pgx.Row) (*entity.DepletionEvent, error) {
	var e entity.DepletionEvent
	err := row.Scan(
		&e.ID, &e.FlockID, &e.Type, &e.Quantity, &e.Date, &e.RecordingID,
		&e.CreatedAt, &e.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserta el evento de baja.
func (r *DepletionEventRepo) Create(ctx context.Context, event *entity.DepletionEvent) error {
	query := `
		INSERT INTO depletion_events
			(id, flock_id, type, quantity, date, recording_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)`
	_, err := r.q.Exec(ctx, query,
		event.ID, event.FlockID, event.Type, event.Quantity, event.Date,
		event.RecordingID, event.CreatedAt, event.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create depletion event: %w", err)
	}
	return nil
}

// GetByID devuelve el evento; nil si no existe.
func (r *DepletionEventRepo) GetByID(ctx context.Context, id string) (*entity.DepletionEvent, error) {
	query := `SELECT ` + depletionEventColumns + ` FROM depletion_events WHERE id = $1`
	e, err := scanDepletionEvent(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get depletion event: %w", err)
	}
	return e, nil
}

// Update persiste tipo, cantidad y fecha del evento.
func (r *DepletionEventRepo) Update(ctx context.Context, event *entity.DepletionEvent) error {
	query := `UPDATE depletion_events SET type = $2, quantity = $3, date = $4 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, event.ID, event.Type, event.Quantity, event.Date)
	if err != nil {
		return fmt.Errorf("update depletion event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update depletion event %s: no existe", event.ID)
	}
	return nil
}

// Delete elimina el evento.
func (r *DepletionEventRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM depletion_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete depletion event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete depletion event %s: no existe", id)
	}
	return nil
}

// ListByFlock eventos de la parvada, más recientes primero.
func (r *DepletionEventRepo) ListByFlock(ctx context.Context, flockID string) ([]*entity.DepletionEvent, error) {
	query := `
		SELECT ` + depletionEventColumns + `
		FROM depletion_events WHERE flock_id = $1
		ORDER BY date DESC, created_at DESC`
	rows, err := r.q.Query(ctx, query, flockID)
	if err != nil {
		return nil, fmt.Errorf("list depletion events: %w", err)
	}
	defer rows.Close()

	var events []*entity.DepletionEvent
	for rows.Next() {
		e, err := scanDepletionEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan depletion event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list depletion events: %w", err)
	}
	return events, nil
}

// SumByFlock suma completa de bajas de la parvada (la sincronización nunca usa deltas).
func (r *DepletionEventRepo) SumByFlock(ctx context.Context, flockID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(quantity), 0) FROM depletion_events WHERE flock_id = $1`
	if err := r.q.QueryRow(ctx, query, flockID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum depletion events: %w", err)
	}
	return sum, nil
}

// DeleteByRecording elimina los eventos generados por un registro diario.
func (r *DepletionEventRepo) DeleteByRecording(ctx context.Context, recordingID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM depletion_events WHERE recording_id = $1`, recordingID)
	if err != nil {
		return fmt.Errorf("delete depletion events by recording: %w", err)
	}
	return nil
}
