// Package queue provee la cola de tareas en proceso para el envío asíncrono de
// registros diarios. Implementa ports.TaskQueue con un buffer acotado y workers
// dedicados; una tarea fallida se reintenta una vez (entrega al-menos-una-vez).
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/tu-usuario/granja-pro/internal/application/ports"
	"github.com/tu-usuario/granja-pro/pkg/logger"
)

var _ ports.TaskQueue = (*InProcessQueue)(nil)

// InProcessQueue cola respaldada por un canal con workers en goroutines.
type InProcessQueue struct {
	tasks   chan ports.Task
	workers int
	log     *logger.Logger

	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

// New construye la cola con el tamaño de buffer y número de workers dados.
func New(size, workers int, log *logger.Logger) *InProcessQueue {
	if size <= 0 {
		size = 256
	}
	if workers <= 0 {
		workers = 1
	}
	return &InProcessQueue{
		tasks:   make(chan ports.Task, size),
		workers: workers,
		log:     log,
	}
}

// Start lanza los workers. Llamar una sola vez.
func (q *InProcessQueue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

// Enqueue encola la tarea. Falla si la cola está detenida o el buffer lleno
// (backpressure explícito en lugar de bloquear al caller HTTP).
func (q *InProcessQueue) Enqueue(ctx context.Context, task ports.Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		return fmt.Errorf("cola detenida")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("cola llena")
	}
}

// Stop cierra la cola y espera a que los workers drenen las tareas pendientes.
func (q *InProcessQueue) Stop() {
	q.mu.Lock()
	if !q.stopped {
		q.stopped = true
		close(q.tasks)
	}
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *InProcessQueue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	for task := range q.tasks {
		q.run(ctx, id, task)
	}
}

// run ejecuta la tarea con un único reintento inmediato. El procesamiento de
// registros es idempotente a nivel de negocio solo si la primera corrida
// revirtió, que es exactamente el caso en que Run retorna error.
func (q *InProcessQueue) run(ctx context.Context, workerID int, task ports.Task) {
	err := task.Run(ctx)
	if err == nil {
		q.log.Debug().Int("worker", workerID).Str("task", task.Name).Msg("tarea completada")
		return
	}
	q.log.Warn().Err(err).Int("worker", workerID).Str("task", task.Name).Msg("tarea fallida, reintentando")

	if err := task.Run(ctx); err != nil {
		q.log.Error().Err(err).Int("worker", workerID).Str("task", task.Name).Msg("tarea fallida tras reintento")
	}
}
