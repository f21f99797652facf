package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// DepletionEventRepository define el puerto de eventos de baja de aves.
// Toda escritura debe ir seguida de la sincronización de la parvada dentro de
// la misma transacción.
type DepletionEventRepository interface {
	Create(ctx context.Context, event *entity.DepletionEvent) error
	GetByID(ctx context.Context, id string) (*entity.DepletionEvent, error)
	Update(ctx context.Context, event *entity.DepletionEvent) error
	Delete(ctx context.Context, id string) error
	ListByFlock(ctx context.Context, flockID string) ([]*entity.DepletionEvent, error)
	// SumByFlock devuelve la suma completa de bajas de la parvada. La
	// sincronización usa siempre esta suma, nunca un delta.
	SumByFlock(ctx context.Context, flockID string) (decimal.Decimal, error)
	// DeleteByRecording elimina los eventos generados por un registro diario
	// (reversa de registro).
	DeleteByRecording(ctx context.Context, recordingID string) error
}
