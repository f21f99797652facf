package http

import (
	"github.com/gofiber/fiber/v2"

	appflock "github.com/tu-usuario/granja-pro/internal/application/flock"
	"github.com/tu-usuario/granja-pro/internal/application/recording"
	appstock "github.com/tu-usuario/granja-pro/internal/application/stock"
	"github.com/tu-usuario/granja-pro/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	DepleteUC  *appstock.DepleteUseCase
	MutateUC   *appstock.MutateUseCase
	EventUC    *appflock.EventUseCase
	SyncUC     *appflock.SyncUseCase
	Processor  *recording.Processor
	FlockRepo  repository.FlockRepository
	EventsRepo repository.DepletionEventRepository
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Stock (protegido)
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.DepleteUC, deps.MutateUC)
	stockGroup.Post("/deplete", stockHandler.Deplete)
	stockGroup.Post("/deplete/preview", stockHandler.PreviewDeplete)
	stockGroup.Post("/mutations", stockHandler.Mutate)
	stockGroup.Delete("/mutations/:id", stockHandler.ReverseMutation)

	// Flocks (protegido)
	flocks := protected.Group("/flocks")
	flockHandler := NewFlockHandler(deps.EventUC, deps.SyncUC, deps.FlockRepo, deps.EventsRepo)
	flocks.Post("/events", flockHandler.RegisterEvent)
	flocks.Put("/events/:id", flockHandler.UpdateEvent)
	flocks.Delete("/events/:id", flockHandler.DeleteEvent)
	flocks.Get("/:id/events", flockHandler.ListEvents)
	flocks.Get("/:id/state", flockHandler.GetState)
	flocks.Post("/:id/sync", flockHandler.Sync)

	// Registros diarios (protegido)
	recordings := protected.Group("/recordings")
	recordingHandler := NewRecordingHandler(deps.Processor)
	recordings.Post("/", recordingHandler.Process)
	recordings.Post("/batch", recordingHandler.ProcessBatch)
	recordings.Post("/async", recordingHandler.ProcessAsync)
	recordings.Delete("/:id", recordingHandler.Rollback)
}
