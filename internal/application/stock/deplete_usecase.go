package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/granja-pro/internal/application/ports"
	"github.com/tu-usuario/granja-pro/internal/domain"
	"github.com/tu-usuario/granja-pro/internal/domain/entity"
	"github.com/tu-usuario/granja-pro/internal/domain/repository"
	"github.com/tu-usuario/granja-pro/internal/domain/stock"
)

// DepleteUseCase consume stock en orden FIFO estricto: selecciona lotes
// candidatos con bloqueo de filas, asigna la cantidad solicitada sobre ellos y
// aplica el plan dentro de una transacción con Commit/Rollback completo.
type DepleteUseCase struct {
	txRunner  ports.TxRunner
	itemRepo  repository.ItemRepository
	farmRepo  repository.FarmRepository
	batchRepo repository.StockBatchRepository // atado al pool; solo lecturas de previsualización
}

// NewDepleteUseCase construye el caso de uso.
func NewDepleteUseCase(
	txRunner ports.TxRunner,
	itemRepo repository.ItemRepository,
	farmRepo repository.FarmRepository,
	batchRepo repository.StockBatchRepository,
) *DepleteUseCase {
	return &DepleteUseCase{
		txRunner:  txRunner,
		itemRepo:  itemRepo,
		farmRepo:  farmRepo,
		batchRepo: batchRepo,
	}
}

// DepleteInput entrada para consumir stock de un (granja, ítem).
type DepleteInput struct {
	FarmID      string
	ItemID      string
	Quantity    decimal.Decimal
	Date        time.Time
	RecordingID string // registro diario que origina el consumo; vacío si es directo
}

// DepletionResult detalle de consumo por lote más el total consumido.
type DepletionResult struct {
	Consumed      []stock.Consumption
	TotalConsumed decimal.Decimal
}

// Deplete valida la entrada, abre una transacción y ejecuta el ciclo
// selector → asignador → actualización del libro mayor → auditoría.
// Si el disponible no alcanza retorna *domain.InsufficientStockError y la
// transacción se revierte sin dejar escritura alguna.
func (uc *DepleteUseCase) Deplete(ctx context.Context, actor entity.Actor, input DepleteInput) (*DepletionResult, error) {
	if input.FarmID == "" || input.ItemID == "" || !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if farm, err := uc.farmRepo.GetByID(ctx, input.FarmID); err != nil || farm == nil {
		return nil, domain.ErrNotFound
	}

	var result *DepletionResult
	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var txErr error
		result, txErr = uc.DepleteInTx(ctx, r, actor, item, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DepleteInTx ejecuta el consumo usando los repositorios de la transacción del
// caller (mismo patrón que el procesador de registros diarios, que consume
// varios recursos en una sola transacción).
//
// Pasos: bloquear y listar lotes candidatos en orden FIFO, calcular el plan de
// asignación, incrementar quantity_used de cada lote tocado y dejar una fila
// de auditoría por lote consumido.
func (uc *DepleteUseCase) DepleteInTx(
	ctx context.Context,
	r ports.Repos,
	actor entity.Actor,
	item *entity.Item,
	input DepleteInput,
) (*DepletionResult, error) {
	batches, err := r.Batches.ListAvailableForUpdate(ctx, input.FarmID, input.ItemID)
	if err != nil {
		return nil, err
	}

	alloc, err := stock.Allocate(batches, input.Quantity)
	if err != nil {
		if insufficient, ok := err.(*domain.InsufficientStockError); ok {
			insufficient.FarmID = input.FarmID
			insufficient.ItemID = input.ItemID
		}
		return nil, err
	}

	byID := make(map[string]*entity.StockBatch, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}

	date := input.Date
	if date.IsZero() {
		date = actor.RequestTime
	}

	for _, c := range alloc.Consumptions {
		batch := byID[c.BatchID]
		if err := batch.ConsumeUsed(c.Quantity); err != nil {
			return nil, err
		}
		if err := r.Batches.UpdateQuantities(ctx, batch); err != nil {
			return nil, err
		}
		usage := &entity.ResourceUsage{
			ID:          uuid.New().String(),
			RecordingID: input.RecordingID,
			BatchID:     c.BatchID,
			ItemID:      item.ID,
			Category:    item.Category,
			Quantity:    c.Quantity,
			UnitCost:    c.UnitCost,
			Date:        date,
			CreatedAt:   actor.RequestTime,
			CreatedBy:   actor.UserID,
		}
		if err := r.Recordings.CreateUsage(ctx, usage); err != nil {
			return nil, err
		}
	}

	return &DepletionResult{
		Consumed:      alloc.Consumptions,
		TotalConsumed: alloc.TotalConsumed,
	}, nil
}

// BatchPreview es la vista de un lote candidato en la previsualización.
type BatchPreview struct {
	BatchID   string
	EntryDate time.Time
	Available decimal.Decimal
	Take      decimal.Decimal
}

// DepletePreview resultado de la previsualización: alcanza o no, y cuánto
// tomaría de cada lote si se ejecutara ahora.
type DepletePreview struct {
	CanProcess     bool
	TotalAvailable decimal.Decimal
	Shortfall      decimal.Decimal // cero si alcanza
	Batches        []BatchPreview
}

// PreviewDeplete simula el consumo sin bloquear ni escribir nada. El resultado
// es informativo: otra transacción puede consumir stock entre la vista previa y
// la ejecución real.
func (uc *DepleteUseCase) PreviewDeplete(ctx context.Context, farmID, itemID string, quantity decimal.Decimal) (*DepletePreview, error) {
	if farmID == "" || itemID == "" || !quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	batches, err := uc.batchRepo.ListAvailable(ctx, farmID, itemID)
	if err != nil {
		return nil, err
	}

	preview := &DepletePreview{
		TotalAvailable: stock.TotalAvailable(batches),
		Shortfall:      decimal.Zero,
	}

	remaining := quantity
	for _, b := range batches {
		available := b.Available()
		if available.LessThanOrEqual(decimal.Zero) || remaining.IsZero() {
			continue
		}
		take := decimal.Min(available, remaining)
		preview.Batches = append(preview.Batches, BatchPreview{
			BatchID:   b.ID,
			EntryDate: b.EntryDate,
			Available: available,
			Take:      take,
		})
		remaining = remaining.Sub(take)
	}

	if remaining.GreaterThan(decimal.Zero) {
		preview.CanProcess = false
		preview.Shortfall = remaining
	} else {
		preview.CanProcess = true
	}
	return preview, nil
}
