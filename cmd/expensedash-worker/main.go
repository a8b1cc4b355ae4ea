// The expensedash-worker binary consumes expense events and writes them
// to the audit log. It is the only consumer of the event queue; losing
// it never affects the API, only the audit trail.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expensedash/internal/config"
	"expensedash/internal/events"
	"expensedash/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})

	logger.Info("Starting expensedash-worker")

	cfg := config.Load()
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Consuming expense events", "queue", cfg.AMQPQueue)
	err = client.Consume(ctx, func(event *events.ExpenseEvent) error {
		logger.Info("Expense event",
			log.FieldOperation, event.Action,
			log.FieldExpenseID, event.ExpenseID,
			log.FieldOwner, event.Owner,
			"timestamp", event.Timestamp)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
