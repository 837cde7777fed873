package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/estoques-api/internal/application/audit"
	"github.com/jhoicas/estoques-api/internal/application/inventory"
	apporder "github.com/jhoicas/estoques-api/internal/application/order"
	domorder "github.com/jhoicas/estoques-api/internal/domain/order"
	"github.com/jhoicas/estoques-api/internal/infrastructure/cache"
	"github.com/jhoicas/estoques-api/internal/infrastructure/messaging"
	"github.com/jhoicas/estoques-api/internal/infrastructure/observability"
	"github.com/jhoicas/estoques-api/internal/infrastructure/postgres"
	"github.com/jhoicas/estoques-api/internal/interfaces/queue"
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
		Service: cfg.App.Name + "-worker",
	})
	if !cfg.Kafka.Enabled() {
		log.Fatal().Msg("KAFKA_BROKERS es obligatorio para el worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.App.Name+"-worker", cfg.Otel)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar trazas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	strategy, err := domorder.NewTotalStrategy(cfg.Orders.TotalStrategy, cfg.Orders.DiscountRate)
	if err != nil {
		log.Fatal().Err(err).Msg("estrategia de total")
	}

	txRunner := postgres.NewTxRunner(pool)
	recorder := audit.NewRecorder()
	debiter := inventory.NewRegisterMovementUseCase(txRunner, recorder)
	orderUC := apporder.NewOrderUseCase(txRunner, postgres.NewRepos(pool), debiter, recorder, strategy)

	var guard queue.Guard
	if cfg.Redis.Addr != "" {
		rdb := cache.NewClient(cfg.Redis)
		defer rdb.Close()
		g := cache.NewSettlementGuard(rdb, cfg.Redis.GuardTTL)
		if err := g.Ping(ctx); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		guard = g
	}

	reader := messaging.NewReader(cfg.Kafka)
	defer reader.Close()

	consumer := queue.NewSettlementConsumer(reader, orderUC, guard, log)
	log.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.OrderTopic).
		Str("group", cfg.Kafka.GroupID).
		Bool("guard", guard != nil).
		Msg("worker de liquidación iniciado")

	if err := consumer.Run(ctx); err != nil {
		log.Error().Err(err).Msg("consumidor finalizado con error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cerrar trazas")
	}
	log.Info().Msg("worker detenido")
}
