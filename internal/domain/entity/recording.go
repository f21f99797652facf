package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageLine es una línea tipada de consumo dentro de un registro diario.
// El boundary HTTP valida el payload dinámico hacia esta estructura antes de
// entrar al asignador FIFO.
type UsageLine struct {
	ItemID   string
	Quantity decimal.Decimal
}

// DailyRecording es el evento de negocio diario de una parvada: mortalidad,
// descarte, consumo de alimento y consumo de insumos. Se procesa como una sola
// transacción atómica.
type DailyRecording struct {
	ID          string
	FlockID     string
	FarmID      string
	Date        time.Time
	Mortality   decimal.Decimal
	Culling     decimal.Decimal
	FeedLines   []UsageLine
	SupplyLines []UsageLine
	Notes       string
	CreatedAt   time.Time
	CreatedBy   string
}

// ResourceUsage es la fila de auditoría de consumo por lote que deja el
// asignador: qué lote, cuánto y a qué costo. La reversa de un registro elimina
// estas filas y devuelve la cantidad a los lotes.
type ResourceUsage struct {
	ID          string
	RecordingID string // vacío para consumos directos fuera de un registro diario
	BatchID     string
	ItemID      string
	Category    string // feed | supply
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Date        time.Time
	CreatedAt   time.Time
	CreatedBy   string
}
