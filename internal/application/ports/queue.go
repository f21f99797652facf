package ports

import "context"

// Task es una unidad de trabajo diferida con nombre para trazabilidad.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// TaskQueue encola trabajo para ejecución en segundo plano (fire-and-forget,
// entrega al-menos-una-vez). El envío asíncrono de registros diarios valida en
// línea y delega aquí el procesamiento real.
type TaskQueue interface {
	Enqueue(ctx context.Context, task Task) error
}
