package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
	"github.com/tu-usuario/granja-pro/internal/domain/repository"
)

var _ repository.RecordingRepository = (*RecordingRepo)(nil)

// RecordingRepo implementación de RecordingRepository sobre PostgreSQL.
// Las líneas del registro se guardan como JSONB; el detalle de consumo por lote
// vive en resource_usages, que es lo que la reversa recorre.
type RecordingRepo struct {
	q Querier
}

// NewRecordingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecordingRepository(q Querier) *RecordingRepo {
	return &RecordingRepo{q: q}
}

type recordingLines struct {
	Feed   []entity.UsageLine `json:"feed"`
	Supply []entity.UsageLine `json:"supply"`
}

// Create inserta el registro diario.
func (r *RecordingRepo) Create(ctx context.Context, rec *entity.DailyRecording) error {
	lines, err := json.Marshal(recordingLines{Feed: rec.FeedLines, Supply: rec.SupplyLines})
	if err != nil {
		return fmt.Errorf("encode recording lines: %w", err)
	}
	query := `
		INSERT INTO daily_recordings
			(id, flock_id, farm_id, date, mortality, culling, lines, notes, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.q.Exec(ctx, query,
		rec.ID, rec.FlockID, rec.FarmID, rec.Date, rec.Mortality, rec.Culling,
		lines, rec.Notes, rec.CreatedAt, rec.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create daily recording: %w", err)
	}
	return nil
}

// GetByID devuelve el registro; nil si no existe.
func (r *RecordingRepo) GetByID(ctx context.Context, id string) (*entity.DailyRecording, error) {
	query := `
		SELECT id, flock_id, farm_id, date, mortality, culling, lines, notes, created_at, created_by
		FROM daily_recordings WHERE id = $1`
	var rec entity.DailyRecording
	var lines []byte
	err := r.q.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.FlockID, &rec.FarmID, &rec.Date, &rec.Mortality, &rec.Culling,
		&lines, &rec.Notes, &rec.CreatedAt, &rec.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get daily recording: %w", err)
	}
	var rl recordingLines
	if err := json.Unmarshal(lines, &rl); err != nil {
		return nil, fmt.Errorf("decode recording lines: %w", err)
	}
	rec.FeedLines = rl.Feed
	rec.SupplyLines = rl.Supply
	return &rec, nil
}

// Delete elimina el registro.
func (r *RecordingRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM daily_recordings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete daily recording: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete daily recording %s: no existe", id)
	}
	return nil
}

// CreateUsage inserta la fila de auditoría de consumo por lote.
func (r *RecordingRepo) CreateUsage(ctx context.Context, usage *entity.ResourceUsage) error {
	query := `
		INSERT INTO resource_usages
			(id, recording_id, batch_id, item_id, category, quantity, unit_cost, date, created_at, created_by)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		usage.ID, usage.RecordingID, usage.BatchID, usage.ItemID, usage.Category,
		usage.Quantity, usage.UnitCost, usage.Date, usage.CreatedAt, usage.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create resource usage: %w", err)
	}
	return nil
}

// ListUsagesByRecording devuelve el consumo por lote de un registro, en orden de inserción.
func (r *RecordingRepo) ListUsagesByRecording(ctx context.Context, recordingID string) ([]*entity.ResourceUsage, error) {
	query := `
		SELECT id, COALESCE(recording_id, ''), batch_id, item_id, category,
		       quantity, unit_cost, date, created_at, created_by
		FROM resource_usages WHERE recording_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, recordingID)
	if err != nil {
		return nil, fmt.Errorf("list resource usages: %w", err)
	}
	defer rows.Close()

	var usages []*entity.ResourceUsage
	for rows.Next() {
		var u entity.ResourceUsage
		err := rows.Scan(
			&u.ID, &u.RecordingID, &u.BatchID, &u.ItemID, &u.Category,
			&u.Quantity, &u.UnitCost, &u.Date, &u.CreatedAt, &u.CreatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("scan resource usage: %w", err)
		}
		usages = append(usages, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list resource usages: %w", err)
	}
	return usages, nil
}

// DeleteUsagesByRecording elimina las filas de consumo de un registro (reversa).
func (r *RecordingRepo) DeleteUsagesByRecording(ctx context.Context, recordingID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM resource_usages WHERE recording_id = $1`, recordingID)
	if err != nil {
		return fmt.Errorf("delete resource usages: %w", err)
	}
	return nil
}
