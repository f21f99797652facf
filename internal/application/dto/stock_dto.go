package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepleteRequest body para POST /api/stock/deplete.
type DepleteRequest struct {
	FarmID   string          `json:"farm_id"`
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Date     time.Time       `json:"date,omitempty"`
}

// PreviewDepleteRequest body para POST /api/stock/deplete/preview.
type PreviewDepleteRequest struct {
	FarmID   string          `json:"farm_id"`
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ConsumptionDTO consumo aplicado (o previsto) sobre un lote.
type ConsumptionDTO struct {
	BatchID  string          `json:"batch_id"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// DepleteResponse detalle del consumo FIFO ejecutado.
type DepleteResponse struct {
	TotalConsumed decimal.Decimal  `json:"total_consumed"`
	Consumed      []ConsumptionDTO `json:"consumed"`
}

// BatchPreviewDTO vista de un lote candidato en la previsualización.
type BatchPreviewDTO struct {
	BatchID   string          `json:"batch_id"`
	EntryDate time.Time       `json:"entry_date"`
	Available decimal.Decimal `json:"available"`
	Take      decimal.Decimal `json:"take"`
}

// PreviewDepleteResponse respuesta de la previsualización (solo lectura).
type PreviewDepleteResponse struct {
	CanProcess     bool              `json:"can_process"`
	TotalAvailable decimal.Decimal   `json:"total_available"`
	Shortfall      decimal.Decimal   `json:"shortfall"`
	Batches        []BatchPreviewDTO `json:"batches"`
}

// MutateItemRequest un ítem dentro del traslado.
type MutateItemRequest struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// MutateRequest body para POST /api/stock/mutations. Todos los ítems deben ser
// de la misma familia (feed o supply).
type MutateRequest struct {
	FromFarmID string              `json:"from_farm_id"`
	ToFarmID   string              `json:"to_farm_id"`
	Items      []MutateItemRequest `json:"items"`
	Date       time.Time           `json:"date,omitempty"`
	Notes      string              `json:"notes,omitempty"`
}

// MutationItemDTO par lote origen → lote destino del traslado.
type MutationItemDTO struct {
	ItemID        string          `json:"item_id"`
	SourceBatchID string          `json:"source_batch_id"`
	DestBatchID   string          `json:"dest_batch_id"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// MutationResponse traslado confirmado.
type MutationResponse struct {
	ID         string            `json:"id"`
	FromFarmID string            `json:"from_farm_id"`
	ToFarmID   string            `json:"to_farm_id"`
	Date       time.Time         `json:"date"`
	Notes      string            `json:"notes,omitempty"`
	Items      []MutationItemDTO `json:"items"`
}

// DepletionEventRequest body para crear/actualizar un evento de baja manual.
type DepletionEventRequest struct {
	FlockID  string          `json:"flock_id"`
	Type     string          `json:"type"` // mortality | culling
	Quantity decimal.Decimal `json:"quantity"`
	Date     time.Time       `json:"date,omitempty"`
}
