package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/granja-pro/internal/application/ports"
	"github.com/tu-usuario/granja-pro/internal/domain"
	"github.com/tu-usuario/granja-pro/internal/domain/entity"
	"github.com/tu-usuario/granja-pro/internal/domain/repository"
	"github.com/tu-usuario/granja-pro/internal/domain/stock"
)

// MutateUseCase traslada stock entre granjas: consume lotes origen en orden
// FIFO (incrementando quantity_mutated, no quantity_used) y crea un lote
// destino por cada lote origen tocado, con el costo unitario del origen.
// Todo el traslado multi-ítem es una sola transacción.
type MutateUseCase struct {
	txRunner ports.TxRunner
	itemRepo repository.ItemRepository
	farmRepo repository.FarmRepository
}

// NewMutateUseCase construye el caso de uso.
func NewMutateUseCase(
	txRunner ports.TxRunner,
	itemRepo repository.ItemRepository,
	farmRepo repository.FarmRepository,
) *MutateUseCase {
	return &MutateUseCase{txRunner: txRunner, itemRepo: itemRepo, farmRepo: farmRepo}
}

// MutateItemInput un ítem y la cantidad a trasladar.
type MutateItemInput struct {
	ItemID   string
	Quantity decimal.Decimal
}

// MutateInput entrada para un traslado entre granjas. Todos los ítems deben
// pertenecer a la misma familia (feed o supply); una solicitud mezclada se
// rechaza antes de tocar lote alguno.
type MutateInput struct {
	FromFarmID string
	ToFarmID   string
	Items      []MutateItemInput
	Date       time.Time
	Notes      string
}

// Mutate valida la solicitud completa (familia única, granjas existentes,
// disponibilidad de TODOS los ítems) y aplica el traslado. Si cualquier ítem
// queda corto, la solicitud entera se aborta sin mutación parcial.
func (uc *MutateUseCase) Mutate(ctx context.Context, actor entity.Actor, input MutateInput) (*entity.Mutation, error) {
	if input.FromFarmID == "" || input.ToFarmID == "" || len(input.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if input.FromFarmID == input.ToFarmID {
		return nil, domain.ErrInvalidInput
	}
	seen := make(map[string]bool, len(input.Items))
	for _, it := range input.Items {
		if it.ItemID == "" || !it.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		// Un ítem repetido duplicaría el bloqueo y la validación de disponibilidad
		if seen[it.ItemID] {
			return nil, domain.ErrInvalidInput
		}
		seen[it.ItemID] = true
	}

	items, err := uc.loadItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	// Verificación de familia única antes de cualquier escritura
	if err := sameCategory(items); err != nil {
		return nil, err
	}

	if farm, err := uc.farmRepo.GetByID(ctx, input.FromFarmID); err != nil || farm == nil {
		return nil, domain.ErrNotFound
	}
	if farm, err := uc.farmRepo.GetByID(ctx, input.ToFarmID); err != nil || farm == nil {
		return nil, domain.ErrNotFound
	}

	date := input.Date
	if date.IsZero() {
		date = actor.RequestTime
	}

	mutation := &entity.Mutation{
		ID:         uuid.New().String(),
		Date:       date,
		FromFarmID: input.FromFarmID,
		ToFarmID:   input.ToFarmID,
		Notes:      input.Notes,
		CreatedAt:  actor.RequestTime,
		CreatedBy:  actor.UserID,
	}

	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		// Fase 1: bloquear candidatos de todos los ítems y validar disponibilidad
		// completa por adelantado. Nada se escribe hasta que todos alcanzan.
		locked := make(map[string][]*entity.StockBatch, len(input.Items))
		for _, it := range input.Items {
			batches, err := r.Batches.ListAvailableForUpdate(ctx, input.FromFarmID, it.ItemID)
			if err != nil {
				return err
			}
			available := stock.TotalAvailable(batches)
			if available.LessThan(it.Quantity) {
				return &domain.InsufficientStockError{
					FarmID:    input.FromFarmID,
					ItemID:    it.ItemID,
					Requested: it.Quantity,
					Available: available,
					Shortfall: it.Quantity.Sub(available),
				}
			}
			locked[it.ItemID] = batches
		}

		// Fase 2: asignar y aplicar ítem por ítem
		for _, it := range input.Items {
			if err := uc.mutateItem(ctx, r, actor, mutation, locked[it.ItemID], it, date); err != nil {
				return err
			}
		}

		return r.Mutations.Create(ctx, mutation)
	})
	if err != nil {
		return nil, err
	}
	return mutation, nil
}

// mutateItem asigna la cantidad sobre los lotes origen ya bloqueados y crea un
// lote destino por cada consumo, enlazados por un MutationItem.
func (uc *MutateUseCase) mutateItem(
	ctx context.Context,
	r ports.Repos,
	actor entity.Actor,
	mutation *entity.Mutation,
	batches []*entity.StockBatch,
	item MutateItemInput,
	date time.Time,
) error {
	alloc, err := stock.Allocate(batches, item.Quantity)
	if err != nil {
		return err
	}

	byID := make(map[string]*entity.StockBatch, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}

	for _, c := range alloc.Consumptions {
		source := byID[c.BatchID]
		if err := source.ConsumeMutated(c.Quantity); err != nil {
			return err
		}
		if err := r.Batches.UpdateQuantities(ctx, source); err != nil {
			return err
		}

		// Lote destino: misma cantidad tomada, costo unitario del origen,
		// contadores en cero.
		dest := &entity.StockBatch{
			ID:              uuid.New().String(),
			FarmID:          mutation.ToFarmID,
			ItemID:          c.ItemID,
			OriginBatchID:   source.ID,
			EntryDate:       date,
			QuantityIn:      c.Quantity,
			QuantityUsed:    decimal.Zero,
			QuantityMutated: decimal.Zero,
			UnitCost:        source.UnitCost,
			CreatedAt:       actor.RequestTime,
			CreatedBy:       actor.UserID,
		}
		if err := r.Batches.Create(ctx, dest); err != nil {
			return err
		}

		mutation.Items = append(mutation.Items, entity.MutationItem{
			ID:            uuid.New().String(),
			MutationID:    mutation.ID,
			ItemID:        c.ItemID,
			SourceBatchID: source.ID,
			DestBatchID:   dest.ID,
			Quantity:      c.Quantity,
		})
	}
	return nil
}

// ReverseMutation deshace un traslado completo: elimina cada lote destino
// (solo si sigue intacto), devuelve la cantidad mutada a cada lote origen y
// borra el registro de mutación. Si algún lote destino ya fue consumido o
// re-mutado, la reversa entera se rechaza con ErrConflict.
func (uc *MutateUseCase) ReverseMutation(ctx context.Context, actor entity.Actor, mutationID string) error {
	if mutationID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(r ports.Repos) error {
		mutation, err := r.Mutations.GetByID(ctx, mutationID)
		if err != nil {
			return err
		}
		if mutation == nil {
			return domain.ErrNotFound
		}

		// Validar todos los destinos antes de tocar nada
		dests := make([]*entity.StockBatch, 0, len(mutation.Items))
		for _, it := range mutation.Items {
			dest, err := r.Batches.GetForUpdate(ctx, it.DestBatchID)
			if err != nil {
				return err
			}
			if dest == nil {
				return domain.ErrNotFound
			}
			if !dest.Untouched() {
				return fmt.Errorf("lote destino %s ya consumido: %w", dest.ID, domain.ErrConflict)
			}
			dests = append(dests, dest)
		}

		for i, it := range mutation.Items {
			source, err := r.Batches.GetForUpdate(ctx, it.SourceBatchID)
			if err != nil {
				return err
			}
			if source == nil {
				return domain.ErrNotFound
			}
			if err := source.ReleaseMutated(it.Quantity); err != nil {
				return err
			}
			if err := r.Batches.UpdateQuantities(ctx, source); err != nil {
				return err
			}
			if err := r.Batches.Delete(ctx, dests[i].ID); err != nil {
				return err
			}
		}

		return r.Mutations.Delete(ctx, mutationID)
	})
}

// loadItems carga el catálogo de los ítems solicitados y valida que existan todos.
func (uc *MutateUseCase) loadItems(ctx context.Context, inputs []MutateItemInput) ([]*entity.Item, error) {
	ids := make([]string, 0, len(inputs))
	for _, it := range inputs {
		ids = append(ids, it.ItemID)
	}
	items, err := uc.itemRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(items) != len(ids) {
		return nil, domain.ErrNotFound
	}
	return items, nil
}

// sameCategory verifica que todos los ítems pertenezcan a la misma familia.
func sameCategory(items []*entity.Item) error {
	seen := make(map[string]bool)
	for _, it := range items {
		seen[it.Category] = true
	}
	if len(seen) > 1 {
		categories := make([]string, 0, len(seen))
		for c := range seen {
			categories = append(categories, c)
		}
		return &domain.MixedCategoryError{Categories: categories}
	}
	return nil
}
