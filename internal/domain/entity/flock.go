package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Flock es la parvada (población de aves) dueña de los contadores agregados.
// Los agregados nunca se ajustan con deltas: la sincronización los recalcula
// completos a partir de los eventos subyacentes.
type Flock struct {
	ID                string
	FarmID            string
	Name              string
	InitialQuantity   decimal.Decimal
	QuantityDepletion decimal.Decimal // suma de eventos de mortalidad y descarte
	QuantitySales     decimal.Decimal // suma de ventas de aves
	QuantityMutated   decimal.Decimal // suma de traslados de aves a otras granjas
	EntryDate         time.Time
	CreatedAt         time.Time
}

// CurrentQuantity devuelve la población viva actual:
// max(0, inicial - bajas - ventas - traslados).
func (f *Flock) CurrentQuantity() decimal.Decimal {
	current := f.InitialQuantity.
		Sub(f.QuantityDepletion).
		Sub(f.QuantitySales).
		Sub(f.QuantityMutated)
	if current.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return current
}

// FlockState es la proyección desnormalizada del estado actual de la parvada.
// Nunca es autoritativa: se reconstruye completa en cada sincronización.
type FlockState struct {
	FlockID   string
	Quantity  decimal.Decimal
	Metadata  StateMetadata
	UpdatedAt time.Time
}

// StateMetadata detalle de auditoría de la última reconstrucción de la proyección.
type StateMetadata struct {
	LastUpdated      time.Time       `json:"last_updated"`
	UpdatedBy        string          `json:"updated_by"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	Breakdown        StateBreakdown  `json:"breakdown"`
	Percentages      StatePercent    `json:"percentages"`
}

// StateBreakdown desglose de la fórmula current = initial - depletion - sales - mutated.
type StateBreakdown struct {
	Initial   decimal.Decimal `json:"initial"`
	Depletion decimal.Decimal `json:"depletion"`
	Sales     decimal.Decimal `json:"sales"`
	Mutated   decimal.Decimal `json:"mutated"`
	Current   decimal.Decimal `json:"current"`
}

// StatePercent porcentajes de cada categoría sobre la cantidad inicial.
type StatePercent struct {
	Depletion decimal.Decimal `json:"depletion"`
	Sales     decimal.Decimal `json:"sales"`
	Mutated   decimal.Decimal `json:"mutated"`
	Remaining decimal.Decimal `json:"remaining"`
}
