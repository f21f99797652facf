package ports

import (
	"context"

	"github.com/tu-usuario/granja-pro/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Batches    repository.StockBatchRepository
	Events     repository.DepletionEventRepository
	Flocks     repository.FlockRepository
	Mutations  repository.MutationRepository
	Recordings repository.RecordingRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Commit si fn retorna nil; Rollback completo en
// cualquier otro caso. Garantiza la atomicidad todo-o-nada del motor de stock.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
