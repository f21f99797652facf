package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// FlockRepository define el puerto de parvadas y su proyección de estado.
type FlockRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Flock, error)
	// GetForUpdate bloquea la fila de la parvada para la sincronización.
	GetForUpdate(ctx context.Context, id string) (*entity.Flock, error)
	// UpdateAggregates persiste los contadores recalculados
	// (quantity_depletion, quantity_sales, quantity_mutated).
	UpdateAggregates(ctx context.Context, flock *entity.Flock) error
	// SumSales suma completa de aves vendidas de la parvada (tabla livestock_sales).
	SumSales(ctx context.Context, flockID string) (decimal.Decimal, error)
	// SumMutated suma completa de aves trasladadas a otras granjas
	// (tabla livestock_mutations).
	SumMutated(ctx context.Context, flockID string) (decimal.Decimal, error)
	// GetState devuelve la proyección actual; nil si aún no existe.
	GetState(ctx context.Context, flockID string) (*entity.FlockState, error)
	// SaveState sobreescribe la proyección completa (upsert, nunca parche incremental).
	SaveState(ctx context.Context, state *entity.FlockState) error
}
