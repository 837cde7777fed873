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

	"github.com/jhoicas/estoques-api/internal/application/audit"
	"github.com/jhoicas/estoques-api/internal/application/inventory"
	apporder "github.com/jhoicas/estoques-api/internal/application/order"
	"github.com/jhoicas/estoques-api/internal/application/usecase"
	domorder "github.com/jhoicas/estoques-api/internal/domain/order"
	"github.com/jhoicas/estoques-api/internal/infrastructure/messaging"
	"github.com/jhoicas/estoques-api/internal/infrastructure/observability"
	"github.com/jhoicas/estoques-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/estoques-api/internal/interfaces/http"
	"github.com/jhoicas/estoques-api/pkg/config"
	"github.com/jhoicas/estoques-api/pkg/logger"
)

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
		Msg("iniciando aplicación")

	ctx := context.Background()
	shutdownTracing, err := observability.SetupTracing(ctx, cfg.App.Name, cfg.Otel)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar trazas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar esquema")
		}
	}

	strategy, err := domorder.NewTotalStrategy(cfg.Orders.TotalStrategy, cfg.Orders.DiscountRate)
	if err != nil {
		log.Fatal().Err(err).Msg("estrategia de total")
	}

	txRunner := postgres.NewTxRunner(pool)
	repos := postgres.NewRepos(pool)
	recorder := audit.NewRecorder()

	registerMovementUC := inventory.NewRegisterMovementUseCase(txRunner, recorder)
	movementQueryUC := inventory.NewMovementQueryUseCase(repos.Movements, repos.Products)
	productUC := usecase.NewProductUseCase(txRunner, repos, recorder)
	stockUC := usecase.NewStockUseCase(txRunner, repos, recorder)
	storeUC := usecase.NewStoreUseCase(txRunner, repos, recorder)
	orderUC := apporder.NewOrderUseCase(txRunner, repos, registerMovementUC, recorder, strategy)
	auditQueryUC := audit.NewQueryUseCase(repos.Audit)

	// Con Kafka el checkout se encola; sin Kafka se liquida en línea.
	var publisher *messaging.CheckoutPublisher
	if cfg.Kafka.Enabled() {
		publisher = messaging.NewCheckoutPublisher(messaging.NewWriter(cfg.Kafka))
		orderUC.WithPublisher(publisher)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.OrderTopic).Msg("checkout vía cola")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Estoques API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:        productUC,
		StockUC:          stockUC,
		StoreUC:          storeUC,
		RegisterMovement: registerMovementUC,
		MovementQuery:    movementQueryUC,
		OrderUC:          orderUC,
		AuditQuery:       auditQueryUC,
		JWTSecret:        cfg.JWT.Secret,
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
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar productor kafka")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cerrar trazas")
	}

	log.Info().Msg("aplicación detenida")
}
