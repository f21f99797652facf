package stock_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/granja-pro/internal/domain/entity"
	"github.com/tu-usuario/granja-pro/internal/domain/stock"
)

func testFlock(initial float64) *entity.Flock {
	return &entity.Flock{
		ID:              "flock-1",
		FarmID:          "farm-1",
		Name:            "Parvada A",
		InitialQuantity: decimal.NewFromFloat(initial),
	}
}

func testActor() entity.Actor {
	return entity.NewActor("user-1", time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
}

// ──────────────────────────────────────────────────────────────────────────────
// RecomputeState
// ──────────────────────────────────────────────────────────────────────────────

// 1000 iniciales, 50 bajas, 100 ventas, 200 trasladadas → 650 vivas; los
// agregados del flock quedan sobreescritos con los totales completos.
func TestRecomputeState_ReconstruyeProyeccionCompleta(t *testing.T) {
	flock := testFlock(1000)
	totals := stock.FlockTotals{
		Depletion: dec(50),
		Sales:     dec(100),
		Mutated:   dec(200),
	}

	state := stock.RecomputeState(flock, totals, dec(700), testActor())

	assert.True(t, state.Quantity.Equal(dec(650)))
	assert.True(t, flock.QuantityDepletion.Equal(dec(50)), "los agregados se sobreescriben, no se suman")
	assert.True(t, flock.QuantitySales.Equal(dec(100)))
	assert.True(t, flock.QuantityMutated.Equal(dec(200)))

	assert.Equal(t, "user-1", state.Metadata.UpdatedBy)
	assert.True(t, state.Metadata.PreviousQuantity.Equal(dec(700)))
	assert.True(t, state.Metadata.Breakdown.Initial.Equal(dec(1000)))
	assert.True(t, state.Metadata.Breakdown.Current.Equal(dec(650)))
}

// Repetir la sincronización con los mismos eventos produce el mismo resultado:
// los agregados se recalculan desde cero, nunca con deltas.
func TestRecomputeState_EsIdempotente(t *testing.T) {
	flock := testFlock(1000)
	totals := stock.FlockTotals{Depletion: dec(30), Sales: dec(20), Mutated: dec(10)}
	actor := testActor()

	first := stock.RecomputeState(flock, totals, flock.InitialQuantity, actor)
	second := stock.RecomputeState(flock, totals, first.Quantity, actor)

	assert.True(t, first.Quantity.Equal(second.Quantity))
	assert.True(t, flock.QuantityDepletion.Equal(dec(30)), "doble corrida no duplica bajas")
	assert.True(t, second.Metadata.PreviousQuantity.Equal(first.Quantity))
}

// Los eventos superan a la población inicial: la cantidad viva se fija en cero,
// nunca negativa.
func TestRecomputeState_NuncaNegativa(t *testing.T) {
	flock := testFlock(100)
	totals := stock.FlockTotals{Depletion: dec(80), Sales: dec(50)}

	state := stock.RecomputeState(flock, totals, dec(100), testActor())

	assert.True(t, state.Quantity.IsZero())
	assert.True(t, state.Metadata.Breakdown.Current.IsZero())
}

// Porcentajes sobre la cantidad inicial, redondeados a dos decimales.
func TestRecomputeState_Porcentajes(t *testing.T) {
	flock := testFlock(300)
	totals := stock.FlockTotals{Depletion: dec(100)} // 33.33%

	state := stock.RecomputeState(flock, totals, dec(300), testActor())

	require.True(t, state.Metadata.Percentages.Depletion.Equal(decimal.NewFromFloat(33.33)))
	assert.True(t, state.Metadata.Percentages.Remaining.Equal(decimal.NewFromFloat(66.67)))
	assert.True(t, state.Metadata.Percentages.Sales.IsZero())
}

// Parvada con inicial cero: división por cero evitada, todos los porcentajes cero.
func TestRecomputeState_InicialCero_PorcentajesCero(t *testing.T) {
	flock := testFlock(0)

	state := stock.RecomputeState(flock, stock.FlockTotals{}, decimal.Zero, testActor())

	assert.True(t, state.Quantity.IsZero())
	assert.True(t, state.Metadata.Percentages.Depletion.IsZero())
	assert.True(t, state.Metadata.Percentages.Remaining.IsZero())
}
