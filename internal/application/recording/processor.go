// Package recording orquesta el evento de negocio diario de una parvada
// (mortalidad, descarte, consumo de alimento e insumos) como una transacción
// atómica: validar → persistir → consumir recursos vía asignador FIFO →
// sincronizar parvada → commit. Cualquier falla en cualquier etapa revierte
// todo lo anterior.
package recording

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/granja-pro/internal/application/flock"
	"github.com/tu-usuario/granja-pro/internal/application/ports"
	appstock "github.com/tu-usuario/granja-pro/internal/application/stock"
	"github.com/tu-usuario/granja-pro/internal/domain"
	"github.com/tu-usuario/granja-pro/internal/domain/entity"
	"github.com/tu-usuario/granja-pro/internal/domain/repository"
	"github.com/tu-usuario/granja-pro/pkg/logger"
)

// Processor procesa registros diarios en modo único, por lotes, asíncrono y
// reversa. El modo único y la reversa son totalmente atómicos; el modo por
// lotes aísla fallas por entrada.
type Processor struct {
	txRunner  ports.TxRunner
	itemRepo  repository.ItemRepository
	farmRepo  repository.FarmRepository
	flockRepo repository.FlockRepository
	deplete   *appstock.DepleteUseCase
	sync      *flock.SyncUseCase
	queue     ports.TaskQueue
	log       *logger.Logger
}

// NewProcessor construye el procesador.
func NewProcessor(
	txRunner ports.TxRunner,
	itemRepo repository.ItemRepository,
	farmRepo repository.FarmRepository,
	flockRepo repository.FlockRepository,
	deplete *appstock.DepleteUseCase,
	sync *flock.SyncUseCase,
	queue ports.TaskQueue,
	log *logger.Logger,
) *Processor {
	return &Processor{
		txRunner:  txRunner,
		itemRepo:  itemRepo,
		farmRepo:  farmRepo,
		flockRepo: flockRepo,
		deplete:   deplete,
		sync:      sync,
		queue:     queue,
		log:       log,
	}
}

// UsageLineInput línea de consumo del payload, ya separada por familia.
type UsageLineInput struct {
	ItemID   string
	Quantity decimal.Decimal
}

// RecordingInput el registro diario completo a procesar.
type RecordingInput struct {
	FlockID     string
	FarmID      string
	Date        time.Time
	Mortality   decimal.Decimal
	Culling     decimal.Decimal
	FeedLines   []UsageLineInput
	SupplyLines []UsageLineInput
	Notes       string
}

// ProcessingResult resultado estructurado de un procesamiento.
type ProcessingResult struct {
	Success             bool            `json:"success"`
	Queued              bool            `json:"queued,omitempty"`
	RecordingID         string          `json:"recording_id,omitempty"`
	TotalFeedConsumed   decimal.Decimal `json:"total_feed_consumed"`
	TotalSupplyConsumed decimal.Decimal `json:"total_supply_consumed"`
	Errors              []string        `json:"errors,omitempty"`
	Warnings            []string        `json:"warnings,omitempty"`
	DurationMS          int64           `json:"duration_ms"`
}

func failure(started time.Time, errs ...string) *ProcessingResult {
	return &ProcessingResult{
		Success:             false,
		TotalFeedConsumed:   decimal.Zero,
		TotalSupplyConsumed: decimal.Zero,
		Errors:              errs,
		DurationMS:          time.Since(started).Milliseconds(),
	}
}

// ProcessRecording ejecuta el ciclo completo para un registro:
// Validate → Begin → PersistRecording → DepletionEvents → FeedUsages →
// SupplyUsages → SyncFlock → Commit. Ninguna etapa sobrevive a la falla de una
// etapa posterior.
func (p *Processor) ProcessRecording(ctx context.Context, actor entity.Actor, input RecordingInput) *ProcessingResult {
	started := time.Now()

	valErrs, warnings, err := p.validate(ctx, input)
	if err != nil {
		p.log.Error().Err(err).Str("flock_id", input.FlockID).Msg("validación de registro diario")
		return failure(started, err.Error())
	}
	if len(valErrs) > 0 {
		return failure(started, valErrs...)
	}

	rec := &entity.DailyRecording{
		ID:          uuid.New().String(),
		FlockID:     input.FlockID,
		FarmID:      input.FarmID,
		Date:        input.Date,
		Mortality:   input.Mortality,
		Culling:     input.Culling,
		FeedLines:   toUsageLines(input.FeedLines),
		SupplyLines: toUsageLines(input.SupplyLines),
		Notes:       input.Notes,
		CreatedAt:   actor.RequestTime,
		CreatedBy:   actor.UserID,
	}

	totalFeed := decimal.Zero
	totalSupply := decimal.Zero

	err = p.txRunner.Run(ctx, func(r ports.Repos) error {
		if err := r.Recordings.Create(ctx, rec); err != nil {
			return fmt.Errorf("persistir registro: %w", err)
		}
		if err := p.createDepletionEvents(ctx, r, actor, rec); err != nil {
			return err
		}

		feed, err := p.processUsages(ctx, r, actor, rec, entity.CategoryFeed, input.FeedLines)
		if err != nil {
			return err
		}
		totalFeed = feed

		supply, err := p.processUsages(ctx, r, actor, rec, entity.CategorySupply, input.SupplyLines)
		if err != nil {
			return err
		}
		totalSupply = supply

		return p.sync.SyncInTx(ctx, r, actor, input.FlockID)
	})
	if err != nil {
		p.log.Error().Err(err).
			Str("flock_id", input.FlockID).
			Str("farm_id", input.FarmID).
			Msg("procesamiento de registro diario revertido")
		return failure(started, classify(err))
	}

	p.log.Info().
		Str("recording_id", rec.ID).
		Str("flock_id", input.FlockID).
		Str("total_feed", totalFeed.String()).
		Str("total_supply", totalSupply.String()).
		Msg("registro diario procesado")

	return &ProcessingResult{
		Success:             true,
		RecordingID:         rec.ID,
		TotalFeedConsumed:   totalFeed,
		TotalSupplyConsumed: totalSupply,
		Warnings:            warnings,
		DurationMS:          time.Since(started).Milliseconds(),
	}
}

// createDepletionEvents persiste los eventos de mortalidad y descarte del
// registro, ligados por RecordingID para poder revertirlos.
func (p *Processor) createDepletionEvents(ctx context.Context, r ports.Repos, actor entity.Actor, rec *entity.DailyRecording) error {
	events := []struct {
		kind string
		qty  decimal.Decimal
	}{
		{entity.DepletionMortality, rec.Mortality},
		{entity.DepletionCulling, rec.Culling},
	}
	for _, e := range events {
		if !e.qty.GreaterThan(decimal.Zero) {
			continue
		}
		event := &entity.DepletionEvent{
			ID:          uuid.New().String(),
			FlockID:     rec.FlockID,
			Type:        e.kind,
			Quantity:    e.qty,
			Date:        rec.Date,
			RecordingID: rec.ID,
			CreatedAt:   actor.RequestTime,
			CreatedBy:   actor.UserID,
		}
		if err := r.Events.Create(ctx, event); err != nil {
			return fmt.Errorf("evento de baja %s: %w", e.kind, err)
		}
	}
	return nil
}

// processUsages consume cada línea de la familia dada vía el asignador FIFO,
// dentro de la transacción del registro.
func (p *Processor) processUsages(
	ctx context.Context,
	r ports.Repos,
	actor entity.Actor,
	rec *entity.DailyRecording,
	category string,
	lines []UsageLineInput,
) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range lines {
		item, err := p.itemRepo.GetByID(ctx, line.ItemID)
		if err != nil {
			return decimal.Zero, err
		}
		if item == nil || item.Category != category {
			// La validación previa ya descartó esto; si aparece aquí es una
			// carrera con el catálogo y debe revertir todo.
			return decimal.Zero, fmt.Errorf("ítem %s no es de la familia %s: %w", line.ItemID, category, domain.ErrInvalidInput)
		}
		result, err := p.deplete.DepleteInTx(ctx, r, actor, item, appstock.DepleteInput{
			FarmID:      rec.FarmID,
			ItemID:      line.ItemID,
			Quantity:    line.Quantity,
			Date:        rec.Date,
			RecordingID: rec.ID,
		})
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(result.TotalConsumed)
	}
	return total, nil
}

// validate revisa el registro completo antes de abrir la transacción: cero
// efectos secundarios si algo está mal. Devuelve errores de validación de
// negocio, warnings no bloqueantes, o un error de infraestructura.
func (p *Processor) validate(ctx context.Context, input RecordingInput) (errs, warnings []string, err error) {
	if input.FlockID == "" {
		errs = append(errs, "flock_id requerido")
	}
	if input.FarmID == "" {
		errs = append(errs, "farm_id requerido")
	}
	if input.Date.IsZero() {
		errs = append(errs, "date requerida")
	}
	if input.Mortality.LessThan(decimal.Zero) {
		errs = append(errs, "mortality no puede ser negativa")
	}
	if input.Culling.LessThan(decimal.Zero) {
		errs = append(errs, "culling no puede ser negativa")
	}
	if len(errs) > 0 {
		return errs, nil, nil
	}

	fl, err := p.flockRepo.GetByID(ctx, input.FlockID)
	if err != nil {
		return nil, nil, err
	}
	if fl == nil {
		return []string{"parvada no encontrada"}, nil, nil
	}
	if fl.FarmID != input.FarmID {
		errs = append(errs, "la parvada no pertenece a la granja indicada")
	}
	farm, err := p.farmRepo.GetByID(ctx, input.FarmID)
	if err != nil {
		return nil, nil, err
	}
	if farm == nil {
		errs = append(errs, "granja no encontrada")
	}

	lineErrs, err := p.validateLines(ctx, entity.CategoryFeed, input.FeedLines)
	if err != nil {
		return nil, nil, err
	}
	errs = append(errs, lineErrs...)

	lineErrs, err = p.validateLines(ctx, entity.CategorySupply, input.SupplyLines)
	if err != nil {
		return nil, nil, err
	}
	errs = append(errs, lineErrs...)

	if input.Mortality.IsZero() && input.Culling.IsZero() &&
		len(input.FeedLines) == 0 && len(input.SupplyLines) == 0 {
		warnings = append(warnings, "registro sin bajas ni consumos")
	}

	return errs, warnings, nil
}

// validateLines valida cada línea de una familia contra el catálogo: el payload
// dinámico entra al motor solo después de resolverse a ítems tipados de la
// familia correcta.
func (p *Processor) validateLines(ctx context.Context, category string, lines []UsageLineInput) ([]string, error) {
	var errs []string
	for i, line := range lines {
		if line.ItemID == "" {
			errs = append(errs, fmt.Sprintf("%s[%d]: item_id requerido", category, i))
			continue
		}
		if !line.Quantity.GreaterThan(decimal.Zero) {
			errs = append(errs, fmt.Sprintf("%s[%d]: cantidad debe ser positiva", category, i))
			continue
		}
		item, err := p.itemRepo.GetByID(ctx, line.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			errs = append(errs, fmt.Sprintf("%s[%d]: ítem %s no existe", category, i, line.ItemID))
			continue
		}
		if item.Category != category {
			errs = append(errs, fmt.Sprintf("%s[%d]: ítem %s es de la familia %s", category, i, line.ItemID, item.Category))
		}
	}
	return errs, nil
}

// classify traduce un error de transacción al mensaje del resultado.
func classify(err error) string {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return fmt.Sprintf("stock insuficiente para %s: faltan %s",
			insufficient.ItemID, insufficient.Shortfall.String())
	}
	if errors.Is(err, domain.ErrLockTimeout) {
		return "stock bloqueado por otra operación, reintente"
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return err.Error()
	}
	return fmt.Sprintf("error de procesamiento: %v", err)
}

func toUsageLines(lines []UsageLineInput) []entity.UsageLine {
	out := make([]entity.UsageLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, entity.UsageLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return out
}
