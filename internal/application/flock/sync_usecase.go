// Package flock contiene la sincronización reactiva de agregados de parvada y
// el mantenimiento de sus eventos de baja. Toda escritura que afecte el libro
// mayor dispara la recomputación completa dentro de la misma transacción.
package flock

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/granja-pro/internal/application/ports"
	"github.com/tu-usuario/granja-pro/internal/domain"
	"github.com/tu-usuario/granja-pro/internal/domain/entity"
	"github.com/tu-usuario/granja-pro/internal/domain/stock"
)

// SyncUseCase reconstruye los agregados de la parvada y su proyección de estado
// desde primeros principios: suma completa de eventos, nunca delta incremental.
// Repetir la sincronización con el mismo conjunto de eventos es idempotente.
type SyncUseCase struct {
	txRunner ports.TxRunner
}

// NewSyncUseCase construye el caso de uso.
func NewSyncUseCase(txRunner ports.TxRunner) *SyncUseCase {
	return &SyncUseCase{txRunner: txRunner}
}

// SyncFlock recomputa los agregados de la parvada en una transacción propia.
// Para uso dentro de otra transacción, ver SyncInTx.
func (uc *SyncUseCase) SyncFlock(ctx context.Context, actor entity.Actor, flockID string) error {
	if flockID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(r ports.Repos) error {
		return uc.SyncInTx(ctx, r, actor, flockID)
	})
}

// SyncInTx ejecuta la sincronización con los repositorios de la transacción del
// caller: bloquea la parvada, recalcula las tres sumas completas (bajas, ventas,
// traslados), sobreescribe los agregados y reconstruye la proyección con
// metadatos de auditoría.
func (uc *SyncUseCase) SyncInTx(ctx context.Context, r ports.Repos, actor entity.Actor, flockID string) error {
	flock, err := r.Flocks.GetForUpdate(ctx, flockID)
	if err != nil {
		return err
	}
	if flock == nil {
		return domain.ErrNotFound
	}

	depletion, err := r.Events.SumByFlock(ctx, flockID)
	if err != nil {
		return err
	}
	sales, err := r.Flocks.SumSales(ctx, flockID)
	if err != nil {
		return err
	}
	mutated, err := r.Flocks.SumMutated(ctx, flockID)
	if err != nil {
		return err
	}

	previous := decimal.Zero
	if prior, err := r.Flocks.GetState(ctx, flockID); err != nil {
		return err
	} else if prior != nil {
		previous = prior.Quantity
	} else {
		// Sin proyección previa: la referencia es la población inicial
		previous = flock.InitialQuantity
	}

	state := stock.RecomputeState(flock, stock.FlockTotals{
		Depletion: depletion,
		Sales:     sales,
		Mutated:   mutated,
	}, previous, actor)

	if err := r.Flocks.UpdateAggregates(ctx, flock); err != nil {
		return err
	}
	return r.Flocks.SaveState(ctx, state)
}
