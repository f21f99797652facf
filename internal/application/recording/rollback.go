package recording

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/granja-pro/internal/application/ports"
	"github.com/tu-usuario/granja-pro/internal/domain"
	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// RollbackRecording revierte un registro diario ya confirmado: devuelve a cada
// lote la cantidad consumida (inversa del asignador, fila por fila de
// auditoría), elimina las filas de consumo y los eventos de baja del registro,
// borra el registro y re-sincroniza la parvada. Todo en una transacción.
func (p *Processor) RollbackRecording(ctx context.Context, actor entity.Actor, recordingID string) *ProcessingResult {
	started := time.Now()
	if recordingID == "" {
		return failure(started, "recording_id requerido")
	}

	err := p.txRunner.Run(ctx, func(r ports.Repos) error {
		rec, err := r.Recordings.GetByID(ctx, recordingID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}

		usages, err := r.Recordings.ListUsagesByRecording(ctx, recordingID)
		if err != nil {
			return err
		}
		for _, usage := range usages {
			batch, err := r.Batches.GetForUpdate(ctx, usage.BatchID)
			if err != nil {
				return err
			}
			if batch == nil {
				return fmt.Errorf("lote %s del consumo %s: %w", usage.BatchID, usage.ID, domain.ErrNotFound)
			}
			if err := batch.ReleaseUsed(usage.Quantity); err != nil {
				return err
			}
			if err := r.Batches.UpdateQuantities(ctx, batch); err != nil {
				return err
			}
		}

		if err := r.Recordings.DeleteUsagesByRecording(ctx, recordingID); err != nil {
			return err
		}
		if err := r.Events.DeleteByRecording(ctx, recordingID); err != nil {
			return err
		}
		if err := r.Recordings.Delete(ctx, recordingID); err != nil {
			return err
		}
		return p.sync.SyncInTx(ctx, r, actor, rec.FlockID)
	})
	if err != nil {
		p.log.Error().Err(err).Str("recording_id", recordingID).Msg("reversa de registro diario")
		return failure(started, classify(err))
	}

	p.log.Info().Str("recording_id", recordingID).Msg("registro diario revertido")
	return &ProcessingResult{
		Success:    true,
		DurationMS: time.Since(started).Milliseconds(),
	}
}
