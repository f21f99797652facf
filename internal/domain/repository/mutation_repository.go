package repository

import (
	"context"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// MutationRepository define el puerto de traslados de stock entre granjas.
type MutationRepository interface {
	// Create inserta el encabezado y todos sus ítems en la transacción actual.
	Create(ctx context.Context, mutation *entity.Mutation) error
	// GetByID devuelve el encabezado con sus ítems.
	GetByID(ctx context.Context, id string) (*entity.Mutation, error)
	// Delete elimina encabezado e ítems (reversa de mutación).
	Delete(ctx context.Context, id string) error
}
