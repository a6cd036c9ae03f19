package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Operaciones-api/docs"
	"github.com/jhoicas/Operaciones-api/internal/application/inventory"
	"github.com/jhoicas/Operaciones-api/internal/application/usecase"
	"github.com/jhoicas/Operaciones-api/internal/infrastructure/postgres"
	infrapdf "github.com/jhoicas/Operaciones-api/internal/infrastructure/pdf"
	infraredis "github.com/jhoicas/Operaciones-api/internal/infrastructure/redis"
	"github.com/jhoicas/Operaciones-api/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/Operaciones-api/internal/interfaces/http"
	"github.com/jhoicas/Operaciones-api/pkg/config"
	"github.com/jhoicas/Operaciones-api/pkg/logger"
)

// version se sobrescribe en build con -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("version", version).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar telemetría")
	}

	if cfg.DB.RunMigrations {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log.Component("migrate")); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	itemRepo := postgres.NewItemRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Redis es opcional: sin él no hay caché, lock distribuido ni eventos, y el stock se lee del ledger.
	var (
		cache     inventory.StockLevelCache
		locker    inventory.PairLocker
		publisher inventory.EventPublisher
	)
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		cache = infraredis.NewStockLevelCache(rdb, cfg.Redis.StockCacheTTL, log)
		locker = infraredis.NewPairLocker(rdb, infraredis.DefaultPairLockerOptions(), log)
		publisher = infraredis.NewEventPublisher(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis habilitado")
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: sin caché de stock ni eventos")
	}

	projector := inventory.NewStockLevelProjector(txRunner, cache, locker, log)
	lifecycleUC := inventory.NewLifecycleUseCase(
		txRunner, postgres.NewStockTransactionRepository(pool), itemRepo, locationRepo,
		projector, publisher, log,
	)
	catalogUC := usecase.NewCatalogUseCase(itemRepo, locationRepo)

	// PDF: comprobante imprimible de cada movimiento
	voucherUC := inventory.NewVoucherUseCase(
		postgres.NewStockTransactionRepository(pool), itemRepo, locationRepo,
		infrapdf.NewVoucherGenerator(cfg.App.Name),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Operaciones API",
	}))

	// Documento OpenAPI renderizado por swag con la versión del binario
	docs.SwaggerInfo.Version = version
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		c.Type("json")
		return c.SendString(docs.SwaggerInfo.ReadDoc())
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Lifecycle: lifecycleUC,
		Projector: projector,
		Voucher:   voucherUC,
		CatalogUC: catalogUC,
		JWTSecret: cfg.JWT.Secret,
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
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de telemetría")
	}

	log.Info().Msg("aplicación detenida")
}
