package recording

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// BatchResult resultado agregado de un envío por lotes: cuántas entradas se
// procesaron y el resultado individual de cada una.
type BatchResult struct {
	Processed  int                 `json:"processed"`
	Failed     int                 `json:"failed"`
	Results    []*ProcessingResult `json:"results"`
	Errors     []string            `json:"errors,omitempty"`
	DurationMS int64               `json:"duration_ms"`
}

// ProcessBatchRecordings procesa N registros de forma independiente: cada
// entrada corre en su propia transacción y la falla de una no revierte a sus
// hermanas. El resultado agrega los conteos y los errores por entrada.
func (p *Processor) ProcessBatchRecordings(ctx context.Context, actor entity.Actor, inputs []RecordingInput) *BatchResult {
	started := time.Now()
	out := &BatchResult{Results: make([]*ProcessingResult, 0, len(inputs))}

	for i, input := range inputs {
		result := p.ProcessRecording(ctx, actor, input)
		out.Results = append(out.Results, result)
		if result.Success {
			out.Processed++
			continue
		}
		out.Failed++
		for _, msg := range result.Errors {
			// Índice 1-based: es el que ve el usuario en su planilla
			out.Errors = append(out.Errors, fmt.Sprintf("entrada %d: %s", i+1, msg))
		}
	}

	out.DurationMS = time.Since(started).Milliseconds()
	p.log.Info().
		Int("processed", out.Processed).
		Int("failed", out.Failed).
		Msg("lote de registros diarios procesado")
	return out
}
