// Package stock contiene la lógica pura del motor FIFO: asignación de consumo
// sobre lotes ordenados y recomputación de agregados de parvada. Sin I/O; los
// casos de uso aplican el resultado dentro de una transacción.
package stock

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/granja-pro/internal/domain"
	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// Consumption es lo tomado de un lote concreto por el asignador.
type Consumption struct {
	BatchID  string
	ItemID   string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// TotalCost devuelve Quantity * UnitCost.
func (c Consumption) TotalCost() decimal.Decimal {
	return c.Quantity.Mul(c.UnitCost)
}

// Allocation es el plan de consumo resultante: cuánto tomar de cada lote, en
// orden FIFO, hasta cubrir la cantidad solicitada.
type Allocation struct {
	Consumptions  []Consumption
	TotalConsumed decimal.Decimal
}

// Allocate recorre los lotes en el orden recibido (el selector ya los entrega
// ordenados por fecha de entrada y secuencia de creación) y toma de cada uno
// min(disponible, restante) hasta cubrir required.
//
// No modifica los lotes: devuelve el plan para que el caller lo aplique dentro
// de su transacción. Si los lotes se agotan con cantidad pendiente, retorna
// *domain.InsufficientStockError con el faltante y ningún plan parcial.
func Allocate(batches []*entity.StockBatch, required decimal.Decimal) (*Allocation, error) {
	if required.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	remaining := required
	alloc := &Allocation{TotalConsumed: decimal.Zero}

	for _, b := range batches {
		if remaining.IsZero() {
			break
		}
		available := b.Available()
		if available.LessThanOrEqual(decimal.Zero) {
			continue
		}
		take := decimal.Min(available, remaining)
		alloc.Consumptions = append(alloc.Consumptions, Consumption{
			BatchID:  b.ID,
			ItemID:   b.ItemID,
			Quantity: take,
			UnitCost: b.UnitCost,
		})
		alloc.TotalConsumed = alloc.TotalConsumed.Add(take)
		remaining = remaining.Sub(take)
	}

	if remaining.GreaterThan(decimal.Zero) {
		return nil, &domain.InsufficientStockError{
			Requested: required,
			Available: alloc.TotalConsumed,
			Shortfall: remaining,
		}
	}
	return alloc, nil
}

// TotalAvailable suma el disponible de todos los lotes.
func TotalAvailable(batches []*entity.StockBatch) decimal.Decimal {
	total := decimal.Zero
	for _, b := range batches {
		available := b.Available()
		if available.GreaterThan(decimal.Zero) {
			total = total.Add(available)
		}
	}
	return total
}
