package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"expensedash/internal/auth"
	"expensedash/internal/cache"
	"expensedash/internal/config"
	"expensedash/internal/events"
	"expensedash/internal/gateway"
	gwmem "expensedash/internal/gateway/memory"
	gwpg "expensedash/internal/gateway/postgres"
	gwsqlite "expensedash/internal/gateway/sqlite"
	apphttp "expensedash/internal/http"
	"expensedash/internal/log"
	"expensedash/internal/receipts"
	"expensedash/internal/receipts/gcs"
	blobmem "expensedash/internal/receipts/memory"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())

	logger.Info("Starting expensedash")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tokens := auth.NewTokens(cfg.JWTSecret)

	// The postgres pool, when configured, backs both the expense gateway
	// and the account store.
	var pool *pgxpool.Pool
	if cfg.StoreBackend == config.BackendPostgres {
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("Failed to connect to postgres", log.FieldError, err)
			os.Exit(1)
		}
		defer pool.Close()
	}

	var gw gateway.Gateway
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		store, err := gwsqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open sqlite store", log.FieldError, err, log.FieldBackend, cfg.StoreBackend)
			os.Exit(1)
		}
		defer store.Close()
		gw = store
	case config.BackendPostgres:
		gw = gwpg.NewWithPool(pool)
	default:
		gw = gwmem.New()
	}
	logger.Info("Expense store initialized", log.FieldBackend, cfg.StoreBackend)

	var provider auth.Provider
	if pool != nil {
		provider = auth.NewPostgres(pool, tokens, logger)
	} else {
		provider = auth.NewMemory(tokens)
	}

	var blob receipts.BlobStore
	switch cfg.BlobBackend {
	case config.BlobGCS:
		store, err := gcs.New(ctx, cfg.ReceiptBucket)
		if err != nil {
			logger.Error("Failed to initialize receipt bucket", log.FieldError, err, log.FieldBackend, cfg.BlobBackend)
			os.Exit(1)
		}
		blob = store
	default:
		blob = blobmem.New("")
	}
	uploader := receipts.NewCoordinator(blob, logger)

	var publisher apphttp.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize event publisher", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("Event publishing enabled")
	} else {
		logger.Info("Event publishing disabled - no AMQP_URL provided")
	}

	server := apphttp.NewServer(cfg, provider, tokens, gw, uploader, publisher, logger)

	httpServer := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        server.Handler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}

	janitor := cache.NewJanitor(server.Stores())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		janitor.Run(5 * time.Minute)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		janitor.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
