package flock_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/granja-pro/internal/application/apptest"
	appflock "github.com/tu-usuario/granja-pro/internal/application/flock"
	"github.com/tu-usuario/granja-pro/internal/domain"
	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func testActor() entity.Actor {
	return entity.NewActor("user-1", time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC))
}

func newEventFixture() (*apptest.Store, *appflock.EventUseCase, *appflock.SyncUseCase) {
	store := apptest.NewStore()
	store.AddFarm("farm-1", "Granja Norte")
	store.AddFlock("flock-1", "farm-1", dec(1000))
	sync := appflock.NewSyncUseCase(apptest.NewTxRunner(store))
	events := appflock.NewEventUseCase(apptest.NewTxRunner(store), sync)
	return store, events, sync
}

// ──────────────────────────────────────────────────────────────────────────────
// RegisterEvent
// ──────────────────────────────────────────────────────────────────────────────

// Crear un evento de mortalidad sincroniza los agregados y la proyección en la
// misma operación.
func TestRegisterEvent_CreaYSincroniza(t *testing.T) {
	store, events, _ := newEventFixture()

	event, err := events.RegisterEvent(context.Background(), testActor(), appflock.DepletionEventInput{
		FlockID:  "flock-1",
		Type:     entity.DepletionMortality,
		Quantity: dec(25),
	})
	require.NoError(t, err)
	require.NotEmpty(t, event.ID)

	assert.True(t, store.Flocks["flock-1"].QuantityDepletion.Equal(dec(25)))

	state := store.States["flock-1"]
	require.NotNil(t, state, "la proyección se reconstruye en la misma transacción")
	assert.True(t, state.Quantity.Equal(dec(975)))
	assert.True(t, state.Metadata.PreviousQuantity.Equal(dec(1000)),
		"sin proyección previa, la cantidad anterior es la inicial")
}

func TestRegisterEvent_Validaciones(t *testing.T) {
	_, events, _ := newEventFixture()
	ctx := context.Background()
	actor := testActor()

	_, err := events.RegisterEvent(ctx, actor, appflock.DepletionEventInput{
		FlockID: "flock-1", Type: "sacrificio", Quantity: dec(1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo de baja desconocido")

	_, err = events.RegisterEvent(ctx, actor, appflock.DepletionEventInput{
		FlockID: "flock-1", Type: entity.DepletionMortality, Quantity: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = events.RegisterEvent(ctx, actor, appflock.DepletionEventInput{
		FlockID: "fantasma", Type: entity.DepletionMortality, Quantity: dec(1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "la sincronización no encuentra la parvada")
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateEvent / DeleteEvent
// ──────────────────────────────────────────────────────────────────────────────

// Corregir la cantidad de un evento recalcula el agregado completo, sin deltas.
func TestUpdateEvent_RecalculaDesdeModeloCompleto(t *testing.T) {
	store, events, _ := newEventFixture()
	actor := testActor()
	ctx := context.Background()

	event, err := events.RegisterEvent(ctx, actor, appflock.DepletionEventInput{
		FlockID: "flock-1", Type: entity.DepletionMortality, Quantity: dec(25),
	})
	require.NoError(t, err)

	require.NoError(t, events.UpdateEvent(ctx, actor, event.ID, appflock.DepletionEventInput{
		FlockID: "flock-1", Type: entity.DepletionCulling, Quantity: dec(10),
	}))

	assert.True(t, store.Flocks["flock-1"].QuantityDepletion.Equal(dec(10)),
		"la corrección reemplaza, no acumula")
	assert.Equal(t, entity.DepletionCulling, store.Events[event.ID].Type)
	assert.True(t, store.States["flock-1"].Quantity.Equal(dec(990)))
}

func TestDeleteEvent_RestauraLaPoblacion(t *testing.T) {
	store, events, _ := newEventFixture()
	actor := testActor()
	ctx := context.Background()

	event, err := events.RegisterEvent(ctx, actor, appflock.DepletionEventInput{
		FlockID: "flock-1", Type: entity.DepletionMortality, Quantity: dec(25),
	})
	require.NoError(t, err)

	require.NoError(t, events.DeleteEvent(ctx, actor, event.ID))

	assert.True(t, store.Flocks["flock-1"].QuantityDepletion.IsZero())
	assert.True(t, store.States["flock-1"].Quantity.Equal(dec(1000)))
	assert.Empty(t, store.Events)
}

func TestUpdateEvent_Inexistente(t *testing.T) {
	_, events, _ := newEventFixture()
	err := events.UpdateEvent(context.Background(), testActor(), "fantasma", appflock.DepletionEventInput{
		FlockID: "flock-1", Type: entity.DepletionMortality, Quantity: dec(1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// SyncFlock
// ──────────────────────────────────────────────────────────────────────────────

// La sincronización integra las tres fuentes: bajas, ventas y traslados.
func TestSyncFlock_IntegraBajasVentasYTraslados(t *testing.T) {
	store, events, sync := newEventFixture()
	actor := testActor()
	ctx := context.Background()

	_, err := events.RegisterEvent(ctx, actor, appflock.DepletionEventInput{
		FlockID: "flock-1", Type: entity.DepletionMortality, Quantity: dec(50),
	})
	require.NoError(t, err)

	store.Sales["flock-1"] = dec(100)
	store.MutatedBirds["flock-1"] = dec(200)

	require.NoError(t, sync.SyncFlock(ctx, actor, "flock-1"))

	fl := store.Flocks["flock-1"]
	assert.True(t, fl.QuantitySales.Equal(dec(100)))
	assert.True(t, fl.QuantityMutated.Equal(dec(200)))
	assert.True(t, store.States["flock-1"].Quantity.Equal(dec(650)))
}

// Sincronizar dos veces seguidas no cambia el resultado.
func TestSyncFlock_Idempotente(t *testing.T) {
	store, events, sync := newEventFixture()
	actor := testActor()
	ctx := context.Background()

	_, err := events.RegisterEvent(ctx, actor, appflock.DepletionEventInput{
		FlockID: "flock-1", Type: entity.DepletionMortality, Quantity: dec(30),
	})
	require.NoError(t, err)

	require.NoError(t, sync.SyncFlock(ctx, actor, "flock-1"))
	first := store.States["flock-1"].Quantity
	require.NoError(t, sync.SyncFlock(ctx, actor, "flock-1"))

	assert.True(t, store.States["flock-1"].Quantity.Equal(first))
	assert.True(t, store.Flocks["flock-1"].QuantityDepletion.Equal(dec(30)))
}
