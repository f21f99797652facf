package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appflock "github.com/tu-usuario/granja-pro/internal/application/flock"
	"github.com/tu-usuario/granja-pro/internal/application/recording"
	appstock "github.com/tu-usuario/granja-pro/internal/application/stock"
	"github.com/tu-usuario/granja-pro/internal/infrastructure/postgres"
	"github.com/tu-usuario/granja-pro/internal/infrastructure/queue"
	httpRouter "github.com/tu-usuario/granja-pro/internal/interfaces/http"
	"github.com/tu-usuario/granja-pro/pkg/config"
	"github.com/tu-usuario/granja-pro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos atados al pool: lecturas fuera de transacción (validación, preview,
	// consultas). Las escrituras siempre pasan por el TxRunner, que ata sus
	// propios repos a la transacción.
	itemRepo := postgres.NewItemRepository(pool)
	farmRepo := postgres.NewFarmRepository(pool)
	flockRepo := postgres.NewFlockRepository(pool)
	batchRepo := postgres.NewStockBatchRepository(pool)
	eventsRepo := postgres.NewDepletionEventRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Engine.LockTimeoutMS)

	depleteUC := appstock.NewDepleteUseCase(txRunner, itemRepo, farmRepo, batchRepo)
	mutateUC := appstock.NewMutateUseCase(txRunner, itemRepo, farmRepo)
	syncUC := appflock.NewSyncUseCase(txRunner)
	eventUC := appflock.NewEventUseCase(txRunner, syncUC)

	taskQueue := queue.New(cfg.Engine.QueueSize, cfg.Engine.QueueWorkers, log)
	taskQueue.Start(ctx)

	processor := recording.NewProcessor(
		txRunner, itemRepo, farmRepo, flockRepo,
		depleteUC, syncUC, taskQueue, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		DepleteUC:  depleteUC,
		MutateUC:   mutateUC,
		EventUC:    eventUC,
		SyncUC:     syncUC,
		Processor:  processor,
		FlockRepo:  flockRepo,
		EventsRepo: eventsRepo,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Drena los registros asíncronos pendientes antes de salir.
	taskQueue.Stop()

	log.Info().Msg("aplicación detenida")
}
