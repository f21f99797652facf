package flock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/granja-pro/internal/application/ports"
	"github.com/tu-usuario/granja-pro/internal/domain"
	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// EventUseCase mantiene los eventos de baja (mortalidad/descarte) creados o
// corregidos manualmente, fuera de un registro diario. Cada escritura dispara
// la sincronización de la parvada dentro de la misma transacción.
type EventUseCase struct {
	txRunner ports.TxRunner
	sync     *SyncUseCase
}

// NewEventUseCase construye el caso de uso.
func NewEventUseCase(txRunner ports.TxRunner, sync *SyncUseCase) *EventUseCase {
	return &EventUseCase{txRunner: txRunner, sync: sync}
}

// DepletionEventInput entrada para crear o actualizar un evento de baja.
type DepletionEventInput struct {
	FlockID  string
	Type     string // mortality | culling
	Quantity decimal.Decimal
	Date     time.Time
}

func (in DepletionEventInput) validate() error {
	if in.FlockID == "" || !entity.ValidDepletionType(in.Type) {
		return domain.ErrInvalidInput
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	return nil
}

// RegisterEvent crea el evento y sincroniza la parvada atómicamente.
func (uc *EventUseCase) RegisterEvent(ctx context.Context, actor entity.Actor, input DepletionEventInput) (*entity.DepletionEvent, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	date := input.Date
	if date.IsZero() {
		date = actor.RequestTime
	}
	event := &entity.DepletionEvent{
		ID:        uuid.New().String(),
		FlockID:   input.FlockID,
		Type:      input.Type,
		Quantity:  input.Quantity,
		Date:      date,
		CreatedAt: actor.RequestTime,
		CreatedBy: actor.UserID,
	}
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if err := r.Events.Create(ctx, event); err != nil {
			return err
		}
		return uc.sync.SyncInTx(ctx, r, actor, input.FlockID)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateEvent corrige cantidad/tipo/fecha de un evento y re-sincroniza.
func (uc *EventUseCase) UpdateEvent(ctx context.Context, actor entity.Actor, eventID string, input DepletionEventInput) error {
	if eventID == "" {
		return domain.ErrInvalidInput
	}
	if err := input.validate(); err != nil {
		return err
	}
	return uc.txRunner.Run(ctx, func(r ports.Repos) error {
		event, err := r.Events.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrNotFound
		}
		event.Type = input.Type
		event.Quantity = input.Quantity
		if !input.Date.IsZero() {
			event.Date = input.Date
		}
		if err := r.Events.Update(ctx, event); err != nil {
			return err
		}
		return uc.sync.SyncInTx(ctx, r, actor, event.FlockID)
	})
}

// DeleteEvent elimina el evento y re-sincroniza la parvada.
func (uc *EventUseCase) DeleteEvent(ctx context.Context, actor entity.Actor, eventID string) error {
	if eventID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(r ports.Repos) error {
		event, err := r.Events.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrNotFound
		}
		if err := r.Events.Delete(ctx, eventID); err != nil {
			return err
		}
		return uc.sync.SyncInTx(ctx, r, actor, event.FlockID)
	})
}
