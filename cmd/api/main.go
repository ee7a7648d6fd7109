package main

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadapter "github.com/payflow/payment-orchestrator/internal/adapter/primary/http"
	"github.com/payflow/payment-orchestrator/internal/adapter/secondary/cache"
	"github.com/payflow/payment-orchestrator/internal/adapter/secondary/database"
	"github.com/payflow/payment-orchestrator/internal/adapter/secondary/gateway"
	"github.com/payflow/payment-orchestrator/internal/adapter/secondary/memory"
	"github.com/payflow/payment-orchestrator/internal/adapter/secondary/messaging"
	"github.com/payflow/payment-orchestrator/internal/config"
	"github.com/payflow/payment-orchestrator/internal/constant/model/db"
	"github.com/payflow/payment-orchestrator/internal/core/service"
	"github.com/payflow/payment-orchestrator/internal/logger"
	"github.com/payflow/payment-orchestrator/internal/port/output"
)

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	// Initialize secondary adapter: Database
	dbConn, err := db.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer dbConn.Close()

	// Initialize secondary adapters implementing the output ports
	paymentStore := database.NewGormPaymentStore(dbConn.DB)

	idempotencyCache := newIdempotencyCache(cfg)
	settlementGateway := newSettlementGateway(cfg)
	events := newEventPublisher(cfg)
	defer events.Close()

	// Initialize core service (implements input port)
	paymentService := service.NewPaymentService(paymentStore, settlementGateway, events, cfg.GatewayTimeout)

	// Initialize primary adapter: HTTP handler (uses input port)
	paymentHandler := httpadapter.NewPaymentHandler(paymentService)

	// Initialize Echo
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Routes; write routes sit behind the idempotency guard
	api := e.Group("/api/v1", httpadapter.Idempotency(idempotencyCache))
	api.POST("/payments", paymentHandler.CreatePayment)
	api.POST("/payments/:id/confirm", paymentHandler.ConfirmPayment)
	api.GET("/payments/:id", paymentHandler.GetPayment)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Log.Info("starting API server", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		logger.Log.Fatal("failed to start server", zap.Error(err))
	}
}

// newIdempotencyCache prefers Redis, falling back to the in-process cache
// when no Redis is reachable
func newIdempotencyCache(cfg config.Config) output.IdempotencyCache {
	redisCache, err := cache.NewRedisIdempotencyCache(cfg.RedisAddr, cfg.IdempotencyTTL)
	if err != nil {
		logger.Log.Warn("redis unavailable, using in-memory idempotency cache", zap.Error(err))
		return memory.NewIdempotencyCache(cfg.IdempotencyTTL)
	}
	return redisCache
}

// newSettlementGateway uses the provider endpoint when configured, otherwise
// the local mock
func newSettlementGateway(cfg config.Config) output.SettlementGateway {
	if cfg.GatewayURL == "" {
		logger.Log.Warn("GATEWAY_URL not set, using mock settlement gateway")
		return gateway.NewMockSettlementGateway()
	}
	return gateway.NewHTTPSettlementGateway(cfg.GatewayURL, cfg.GatewayTimeout)
}

// newEventPublisher connects to RabbitMQ, degrading to a no-op publisher when
// the broker is unreachable. Events are best-effort; payments keep flowing.
func newEventPublisher(cfg config.Config) output.PaymentEvents {
	events, err := messaging.NewRabbitMQClient(cfg.RabbitMQURL)
	if err != nil {
		logger.Log.Warn("rabbitmq unavailable, payment events disabled", zap.Error(err))
		return messaging.NoopPublisher{}
	}
	return events
}
