package recording_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/granja-pro/internal/application/apptest"
	appflock "github.com/tu-usuario/granja-pro/internal/application/flock"
	"github.com/tu-usuario/granja-pro/internal/application/recording"
	appstock "github.com/tu-usuario/granja-pro/internal/application/stock"
	"github.com/tu-usuario/granja-pro/internal/domain/entity"
	"github.com/tu-usuario/granja-pro/pkg/logger"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func testActor() entity.Actor {
	return entity.NewActor("user-1", time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC))
}

// fixture arma el procesador completo sobre el backend en memoria, con una
// granja, una parvada de 1000 aves, un alimento y un insumo con stock.
func fixture() (*apptest.Store, *recording.Processor, *apptest.QueueSpy) {
	store := apptest.NewStore()
	store.AddFarm("farm-1", "Granja Norte")
	store.AddFlock("flock-1", "farm-1", dec(1000))
	store.AddItem("feed-1", "Alimento iniciador", entity.CategoryFeed)
	store.AddItem("supply-1", "Vacuna Newcastle", entity.CategorySupply)
	store.AddBatch("fb1", "farm-1", "feed-1", day(1), dec(100), dec(2))
	store.AddBatch("fb2", "farm-1", "feed-1", day(5), dec(50), dec(3))
	store.AddBatch("sb1", "farm-1", "supply-1", day(1), dec(30), dec(10))

	txRunner := apptest.NewTxRunner(store)
	itemRepo := apptest.NewItemRepo(store)
	farmRepo := apptest.NewFarmRepo(store)
	deplete := appstock.NewDepleteUseCase(txRunner, itemRepo, farmRepo, apptest.NewBatchRepo(store))
	sync := appflock.NewSyncUseCase(txRunner)
	queue := &apptest.QueueSpy{}

	p := recording.NewProcessor(
		txRunner, itemRepo, farmRepo, apptest.NewFlockRepo(store),
		deplete, sync, queue, logger.Nop(),
	)
	return store, p, queue
}

func validInput() recording.RecordingInput {
	return recording.RecordingInput{
		FlockID:   "flock-1",
		FarmID:    "farm-1",
		Date:      day(10),
		Mortality: dec(5),
		Culling:   dec(2),
		FeedLines: []recording.UsageLineInput{
			{ItemID: "feed-1", Quantity: dec(120)},
		},
		SupplyLines: []recording.UsageLineInput{
			{ItemID: "supply-1", Quantity: dec(3)},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ProcessRecording
// ──────────────────────────────────────────────────────────────────────────────

// Flujo completo: registro + eventos de baja + consumos FIFO + sincronización,
// todo confirmado en una sola transacción.
func TestProcessRecording_FlujoCompleto(t *testing.T) {
	store, p, _ := fixture()

	result := p.ProcessRecording(context.Background(), testActor(), validInput())

	require.True(t, result.Success, "errores: %v", result.Errors)
	assert.NotEmpty(t, result.RecordingID)
	assert.True(t, result.TotalFeedConsumed.Equal(dec(120)))
	assert.True(t, result.TotalSupplyConsumed.Equal(dec(3)))

	// Consumo FIFO: fb1 agotado, fb2 con 30 restantes
	assert.True(t, store.Batch("fb1").Available().IsZero())
	assert.True(t, store.Batch("fb2").Available().Equal(dec(30)))
	assert.True(t, store.Batch("sb1").Available().Equal(dec(27)))

	// Eventos de baja ligados al registro
	require.Len(t, store.Events, 2)
	for _, e := range store.Events {
		assert.Equal(t, result.RecordingID, e.RecordingID)
	}

	// Parvada sincronizada: 1000 - 5 - 2 = 993
	assert.True(t, store.Flocks["flock-1"].QuantityDepletion.Equal(dec(7)))
	require.NotNil(t, store.States["flock-1"])
	assert.True(t, store.States["flock-1"].Quantity.Equal(dec(993)))

	// Auditoría: dos lotes de alimento + uno de insumo
	assert.Len(t, store.Usages, 3)
}

// Mortalidad cero no genera evento.
func TestProcessRecording_SinMortalidadNoHayEvento(t *testing.T) {
	store, p, _ := fixture()
	input := validInput()
	input.Mortality = decimal.Zero

	result := p.ProcessRecording(context.Background(), testActor(), input)

	require.True(t, result.Success)
	require.Len(t, store.Events, 1)
	for _, e := range store.Events {
		assert.Equal(t, entity.DepletionCulling, e.Type)
	}
}

// Errores de validación se reportan completos, sin abrir transacción.
func TestProcessRecording_ValidacionAcumulaErrores(t *testing.T) {
	store, p, _ := fixture()
	input := recording.RecordingInput{
		FlockID:   "flock-1",
		FarmID:    "farm-1",
		Date:      day(10),
		Mortality: dec(1),
		FeedLines: []recording.UsageLineInput{
			{ItemID: "", Quantity: dec(5)},            // sin ítem
			{ItemID: "feed-1", Quantity: dec(-2)},     // cantidad inválida
			{ItemID: "supply-1", Quantity: dec(3)},    // familia equivocada
			{ItemID: "inexistente", Quantity: dec(1)}, // fuera de catálogo
		},
	}

	result := p.ProcessRecording(context.Background(), testActor(), input)

	assert.False(t, result.Success)
	assert.Len(t, result.Errors, 4)
	assert.Empty(t, store.Recordings, "la validación no abre transacción")
	assert.Empty(t, store.Events)
}

// La parvada debe pertenecer a la granja del registro.
func TestProcessRecording_ParvadaDeOtraGranja(t *testing.T) {
	store, p, _ := fixture()
	store.AddFarm("farm-2", "Granja Sur")
	input := validInput()
	input.FarmID = "farm-2"

	result := p.ProcessRecording(context.Background(), testActor(), input)

	assert.False(t, result.Success)
	assert.Contains(t, result.Errors[0], "no pertenece")
}

// Registro vacío: se procesa con warning, no con error.
func TestProcessRecording_VacioGeneraWarning(t *testing.T) {
	_, p, _ := fixture()
	input := recording.RecordingInput{
		FlockID: "flock-1",
		FarmID:  "farm-1",
		Date:    day(10),
	}

	result := p.ProcessRecording(context.Background(), testActor(), input)

	require.True(t, result.Success)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "sin bajas ni consumos")
}

// Stock insuficiente a mitad del procesamiento: la transacción entera se
// revierte. Ni el registro, ni los eventos, ni los consumos previos quedan.
func TestProcessRecording_FaltanteRevierteTodo(t *testing.T) {
	store, p, _ := fixture()
	input := validInput()
	input.SupplyLines = []recording.UsageLineInput{
		{ItemID: "supply-1", Quantity: dec(500)}, // solo hay 30
	}

	result := p.ProcessRecording(context.Background(), testActor(), input)

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "stock insuficiente")

	// Rollback total: el alimento consumido antes del insumo también volvió
	assert.True(t, store.Batch("fb1").Available().Equal(dec(100)))
	assert.True(t, store.Batch("fb2").Available().Equal(dec(50)))
	assert.Empty(t, store.Recordings)
	assert.Empty(t, store.Events)
	assert.Empty(t, store.Usages)
	assert.True(t, store.Flocks["flock-1"].QuantityDepletion.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// ProcessBatchRecordings — aislamiento por entrada
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessBatch_AislaFallasPorEntrada(t *testing.T) {
	store, p, _ := fixture()
	inputs := []recording.RecordingInput{
		validInput(), // consume todo el alimento disponible menos 30
		{
			FlockID: "flock-1", FarmID: "farm-1", Date: day(11),
			FeedLines: []recording.UsageLineInput{{ItemID: "feed-1", Quantity: dec(999)}}, // falla
		},
		{
			FlockID: "flock-1", FarmID: "farm-1", Date: day(12),
			FeedLines: []recording.UsageLineInput{{ItemID: "feed-1", Quantity: dec(30)}}, // alcanza
		},
	}

	result := p.ProcessBatchRecordings(context.Background(), testActor(), inputs)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.True(t, result.Results[2].Success, "la falla de la entrada 2 no afecta a la 3")

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "entrada 2:")

	// Todo el alimento terminó consumido por las entradas 1 y 3
	assert.True(t, store.Batch("fb1").Available().IsZero())
	assert.True(t, store.Batch("fb2").Available().IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// ProcessRecordingAsync
// ──────────────────────────────────────────────────────────────────────────────

// El modo asíncrono valida en línea, encola y responde queued sin escribir nada.
func TestProcessAsync_ValidaYEncola(t *testing.T) {
	store, p, queue := fixture()

	result := p.ProcessRecordingAsync(context.Background(), testActor(), validInput())

	require.True(t, result.Success)
	assert.True(t, result.Queued)
	assert.Empty(t, result.RecordingID, "el id se conoce al procesar, no al encolar")
	require.Len(t, queue.Tasks, 1)
	assert.Equal(t, "process_recording", queue.Tasks[0].Name)
	assert.Empty(t, store.Recordings, "encolar no escribe")

	// Al drenar la cola, el procesamiento real ocurre
	errs := queue.RunAll(context.Background())
	assert.Empty(t, errs)
	assert.Len(t, store.Recordings, 1)
	assert.True(t, store.States["flock-1"].Quantity.Equal(dec(993)))
}

// La validación asíncrona rechaza de inmediato sin encolar.
func TestProcessAsync_ValidacionFallidaNoEncola(t *testing.T) {
	_, p, queue := fixture()
	input := validInput()
	input.FlockID = ""

	result := p.ProcessRecordingAsync(context.Background(), testActor(), input)

	assert.False(t, result.Success)
	assert.False(t, result.Queued)
	assert.Empty(t, queue.Tasks)
}

// Cola llena: el resultado reporta la falla de encolado.
func TestProcessAsync_ColaLlena(t *testing.T) {
	_, p, queue := fixture()
	queue.Fail = assert.AnError

	result := p.ProcessRecordingAsync(context.Background(), testActor(), validInput())

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no se pudo encolar")
}

// ──────────────────────────────────────────────────────────────────────────────
// RollbackRecording
// ──────────────────────────────────────────────────────────────────────────────

// La reversa restaura los lotes consumidos, elimina eventos y consumos del
// registro y re-sincroniza la parvada.
func TestRollback_RestauraElEstadoCompleto(t *testing.T) {
	store, p, _ := fixture()

	processed := p.ProcessRecording(context.Background(), testActor(), validInput())
	require.True(t, processed.Success)

	result := p.RollbackRecording(context.Background(), testActor(), processed.RecordingID)
	require.True(t, result.Success, "errores: %v", result.Errors)

	assert.True(t, store.Batch("fb1").Available().Equal(dec(100)))
	assert.True(t, store.Batch("fb2").Available().Equal(dec(50)))
	assert.True(t, store.Batch("sb1").Available().Equal(dec(30)))
	assert.Empty(t, store.Recordings)
	assert.Empty(t, store.Events)
	assert.Empty(t, store.Usages)
	assert.True(t, store.Flocks["flock-1"].QuantityDepletion.IsZero())
	assert.True(t, store.States["flock-1"].Quantity.Equal(dec(1000)))
}

func TestRollback_RegistroInexistente(t *testing.T) {
	_, p, _ := fixture()

	result := p.RollbackRecording(context.Background(), testActor(), "fantasma")

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
}

func TestRollback_SinID(t *testing.T) {
	_, p, _ := fixture()
	result := p.RollbackRecording(context.Background(), testActor(), "")
	assert.False(t, result.Success)
}
