package repository

import (
	"context"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// ItemRepository define el puerto del catálogo de ítems (alimento e insumos).
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	// ListByIDs devuelve los ítems existentes entre los ids dados; la validación
	// de faltantes es responsabilidad del caller.
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Item, error)
}
