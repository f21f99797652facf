package recording

import (
	"context"
	"time"

	"github.com/tu-usuario/granja-pro/internal/application/ports"
	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// ProcessRecordingAsync valida el registro de forma síncrona y encola el
// procesamiento real para ejecución en segundo plano (al-menos-una-vez).
// Responde de inmediato con queued=true; el resultado final queda en los logs
// y en el estado de la base.
func (p *Processor) ProcessRecordingAsync(ctx context.Context, actor entity.Actor, input RecordingInput) *ProcessingResult {
	started := time.Now()

	valErrs, warnings, err := p.validate(ctx, input)
	if err != nil {
		return failure(started, err.Error())
	}
	if len(valErrs) > 0 {
		return failure(started, valErrs...)
	}

	task := ports.Task{
		Name: "process_recording",
		Run: func(taskCtx context.Context) error {
			result := p.ProcessRecording(taskCtx, actor, input)
			if !result.Success {
				return asyncProcessingError{errors: result.Errors}
			}
			return nil
		},
	}
	if err := p.queue.Enqueue(ctx, task); err != nil {
		p.log.Error().Err(err).Str("flock_id", input.FlockID).Msg("encolar registro diario")
		return failure(started, "no se pudo encolar el registro: "+err.Error())
	}

	return &ProcessingResult{
		Success:    true,
		Queued:     true,
		Warnings:   warnings,
		DurationMS: time.Since(started).Milliseconds(),
	}
}

// asyncProcessingError agrupa los errores de un procesamiento diferido para que
// la cola pueda decidir el reintento.
type asyncProcessingError struct {
	errors []string
}

func (e asyncProcessingError) Error() string {
	if len(e.errors) == 0 {
		return "procesamiento diferido fallido"
	}
	return e.errors[0]
}
