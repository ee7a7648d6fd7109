package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/payflow/payment-orchestrator/internal/adapter/secondary/database"
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

	// Initialize secondary adapter: Store (implements output port)
	paymentStore := database.NewGormPaymentStore(dbConn.DB)

	// Initialize core service: event auditor
	auditor := service.NewEventAuditor(paymentStore)

	// Initialize secondary adapter: Messaging (concrete type for worker)
	msgClient, err := messaging.NewRabbitMQClientConcrete(cfg.RabbitMQURL)
	if err != nil {
		logger.Log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer msgClient.Close()

	// Start consuming events
	err = msgClient.ConsumePaymentEvents(func(event output.PaymentEvent) error {
		return auditor.Audit(context.Background(), event)
	})
	if err != nil {
		logger.Log.Fatal("failed to start consuming events", zap.Error(err))
	}

	logger.Log.Info("payment event worker started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down worker")
}
