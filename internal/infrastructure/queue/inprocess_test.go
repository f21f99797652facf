package queue_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/granja-pro/internal/application/ports"
	"github.com/tu-usuario/granja-pro/internal/infrastructure/queue"
	"github.com/tu-usuario/granja-pro/pkg/logger"
)

// Las tareas encoladas se ejecutan todas; Stop espera el drenado completo.
func TestInProcessQueue_EjecutaYDrena(t *testing.T) {
	q := queue.New(16, 2, logger.Nop())
	q.Start(context.Background())

	var done int32
	for i := 0; i < 10; i++ {
		err := q.Enqueue(context.Background(), ports.Task{
			Name: "t",
			Run: func(ctx context.Context) error {
				atomic.AddInt32(&done, 1)
				return nil
			},
		})
		require.NoError(t, err)
	}

	q.Stop()
	assert.Equal(t, int32(10), atomic.LoadInt32(&done))
}

// Una tarea fallida se reintenta exactamente una vez.
func TestInProcessQueue_ReintentaUnaVez(t *testing.T) {
	q := queue.New(4, 1, logger.Nop())
	q.Start(context.Background())

	var attempts int32
	err := q.Enqueue(context.Background(), ports.Task{
		Name: "fallida",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&attempts, 1)
			return fmt.Errorf("boom")
		},
	})
	require.NoError(t, err)

	q.Stop()
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts), "original + un reintento")
}

// Buffer lleno: Enqueue falla de inmediato en lugar de bloquear al caller.
func TestInProcessQueue_BufferLlenoRechaza(t *testing.T) {
	q := queue.New(1, 1, logger.Nop())
	// Sin Start: nadie consume, el buffer de 1 se llena con la primera tarea.

	ok := q.Enqueue(context.Background(), ports.Task{Name: "a", Run: func(ctx context.Context) error { return nil }})
	require.NoError(t, ok)

	err := q.Enqueue(context.Background(), ports.Task{Name: "b", Run: func(ctx context.Context) error { return nil }})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cola llena")

	q.Start(context.Background())
	q.Stop()
}

// Después de Stop, Enqueue se rechaza en vez de provocar un panic por canal cerrado.
func TestInProcessQueue_EnqueueTrasStop(t *testing.T) {
	q := queue.New(4, 1, logger.Nop())
	q.Start(context.Background())
	q.Stop()

	err := q.Enqueue(context.Background(), ports.Task{Name: "tarde", Run: func(ctx context.Context) error { return nil }})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detenida")
}

// Enqueue y Stop concurrentes no deben provocar panics ni dejar goroutines colgadas.
func TestInProcessQueue_StopConcurrenteConEnqueue(t *testing.T) {
	q := queue.New(64, 4, logger.Nop())
	q.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				// Ignoramos el error: tras Stop el rechazo es el comportamiento esperado
				_ = q.Enqueue(context.Background(), ports.Task{
					Name: "concurrente",
					Run:  func(ctx context.Context) error { return nil },
				})
			}
		}()
	}

	time.Sleep(5 * time.Millisecond)
	q.Stop()
	wg.Wait()
}
