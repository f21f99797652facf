package repository

import (
	"context"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// RecordingRepository define el puerto de registros diarios y sus filas de
// consumo por lote (auditoría del asignador).
type RecordingRepository interface {
	Create(ctx context.Context, rec *entity.DailyRecording) error
	GetByID(ctx context.Context, id string) (*entity.DailyRecording, error)
	Delete(ctx context.Context, id string) error

	CreateUsage(ctx context.Context, usage *entity.ResourceUsage) error
	ListUsagesByRecording(ctx context.Context, recordingID string) ([]*entity.ResourceUsage, error)
	DeleteUsagesByRecording(ctx context.Context, recordingID string) error
}
