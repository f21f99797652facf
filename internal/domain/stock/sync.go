package stock

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// FlockTotals son las sumas completas de eventos de la parvada, recalculadas
// desde cero en cada sincronización (nunca deltas incrementales).
type FlockTotals struct {
	Depletion decimal.Decimal
	Sales     decimal.Decimal
	Mutated   decimal.Decimal
}

// RecomputeState sobreescribe los agregados del Flock con los totales y
// reconstruye la proyección completa con metadatos de auditoría.
// previousQuantity es la cantidad que tenía la proyección antes de esta corrida.
// Al recalcular siempre desde el conjunto completo de eventos, repetir la
// sincronización con los mismos eventos produce exactamente el mismo resultado.
func RecomputeState(flock *entity.Flock, totals FlockTotals, previousQuantity decimal.Decimal, actor entity.Actor) *entity.FlockState {
	flock.QuantityDepletion = totals.Depletion
	flock.QuantitySales = totals.Sales
	flock.QuantityMutated = totals.Mutated

	current := flock.CurrentQuantity()

	return &entity.FlockState{
		FlockID:  flock.ID,
		Quantity: current,
		Metadata: entity.StateMetadata{
			LastUpdated:      actor.RequestTime,
			UpdatedBy:        actor.UserID,
			PreviousQuantity: previousQuantity,
			Breakdown: entity.StateBreakdown{
				Initial:   flock.InitialQuantity,
				Depletion: totals.Depletion,
				Sales:     totals.Sales,
				Mutated:   totals.Mutated,
				Current:   current,
			},
			Percentages: percentages(flock.InitialQuantity, totals, current),
		},
		UpdatedAt: actor.RequestTime,
	}
}

// percentages calcula el porcentaje de cada categoría sobre la cantidad inicial,
// redondeado a dos decimales. Con inicial cero todos los porcentajes son cero.
func percentages(initial decimal.Decimal, totals FlockTotals, current decimal.Decimal) entity.StatePercent {
	if initial.LessThanOrEqual(decimal.Zero) {
		return entity.StatePercent{
			Depletion: decimal.Zero,
			Sales:     decimal.Zero,
			Mutated:   decimal.Zero,
			Remaining: decimal.Zero,
		}
	}
	hundred := decimal.NewFromInt(100)
	pct := func(part decimal.Decimal) decimal.Decimal {
		return part.Div(initial).Mul(hundred).Round(2)
	}
	return entity.StatePercent{
		Depletion: pct(totals.Depletion),
		Sales:     pct(totals.Sales),
		Mutated:   pct(totals.Mutated),
		Remaining: pct(current),
	}
}
