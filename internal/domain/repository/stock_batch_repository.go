package repository

import (
	"context"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// StockBatchRepository define el puerto del libro mayor de lotes por (granja, ítem).
// El selector de lotes es ListAvailableForUpdate: entrega los candidatos en orden
// FIFO estricto con bloqueo exclusivo por la duración de la transacción.
type StockBatchRepository interface {
	// Create inserta el lote. El repositorio asigna CreatedOrder (secuencia).
	Create(ctx context.Context, batch *entity.StockBatch) error
	GetByID(ctx context.Context, id string) (*entity.StockBatch, error)
	// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.StockBatch, error)
	// ListAvailable devuelve lotes con disponible > 0 en orden FIFO, sin bloqueo.
	// Solo para previsualización; no usar dentro de una asignación real.
	ListAvailable(ctx context.Context, farmID, itemID string) ([]*entity.StockBatch, error)
	// ListAvailableForUpdate devuelve lotes con disponible > 0 ordenados por
	// (entry_date ASC, created_order ASC) con SELECT FOR UPDATE. El bloqueo se
	// mantiene hasta el Commit/Rollback de la transacción del caller.
	// Lista vacía si no hay candidatos (el caller decide si es error).
	ListAvailableForUpdate(ctx context.Context, farmID, itemID string) ([]*entity.StockBatch, error)
	// UpdateQuantities persiste los contadores used/mutated del lote.
	UpdateQuantities(ctx context.Context, batch *entity.StockBatch) error
	// Delete elimina el lote. Solo válido en la reversa de una mutación cuyo
	// lote destino sigue intacto.
	Delete(ctx context.Context, id string) error
}
