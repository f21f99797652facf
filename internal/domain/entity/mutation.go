package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mutation es el encabezado de un traslado de stock entre granjas. Se persiste
// atómicamente junto con los cambios de lotes que provoca.
type Mutation struct {
	ID         string
	Date       time.Time
	FromFarmID string
	ToFarmID   string
	Notes      string
	Items      []MutationItem
	CreatedAt  time.Time
	CreatedBy  string
}

// MutationItem vincula un lote origen consumido con el lote destino creado.
// Hay exactamente un ítem por cada lote origen del que se tomó cantidad.
type MutationItem struct {
	ID            string
	MutationID    string
	ItemID        string
	SourceBatchID string
	DestBatchID   string
	Quantity      decimal.Decimal
}

// TotalQuantity suma las cantidades trasladadas de todos los ítems.
func (m *Mutation) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, it := range m.Items {
		total = total.Add(it.Quantity)
	}
	return total
}
