package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageLineRequest línea de consumo dentro de un registro diario. El handler la
// valida hacia la estructura tipada de la familia correspondiente.
type UsageLineRequest struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// RecordingRequest body para POST /api/recordings: el reporte diario completo
// de una parvada.
type RecordingRequest struct {
	FlockID     string             `json:"flock_id"`
	FarmID      string             `json:"farm_id"`
	Date        time.Time          `json:"date"`
	Mortality   decimal.Decimal    `json:"mortality"`
	Culling     decimal.Decimal    `json:"culling"`
	FeedLines   []UsageLineRequest `json:"feed_lines,omitempty"`
	SupplyLines []UsageLineRequest `json:"supply_lines,omitempty"`
	Notes       string             `json:"notes,omitempty"`
}

// BatchRecordingRequest body para POST /api/recordings/batch.
type BatchRecordingRequest struct {
	Recordings []RecordingRequest `json:"recordings"`
}
