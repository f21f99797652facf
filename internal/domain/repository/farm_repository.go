package repository

import (
	"context"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// FarmRepository define el puerto del catálogo de granjas.
type FarmRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Farm, error)
}
