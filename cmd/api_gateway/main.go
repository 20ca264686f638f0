package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tabungan-ledger/internal/api_gateway"
	"github.com/tabungan-ledger/internal/auth"
	"github.com/tabungan-ledger/internal/balance_core/components"
	"github.com/tabungan-ledger/internal/config"
	"github.com/tabungan-ledger/internal/data/postgres"
	"github.com/tabungan-ledger/internal/domain/ledger"
	"github.com/tabungan-ledger/internal/logger"
	"github.com/tabungan-ledger/internal/platform/cache"
	"github.com/tabungan-ledger/internal/platform/messaging/producers"
	"github.com/tabungan-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	businessLoc, err := cfg.Ledger.Location()
	if err != nil {
		log.Error("Invalid ledger time zone", "timezone", cfg.Ledger.Timezone, "error", err)
		os.Exit(1)
	}
	ledger.SetLocation(businessLoc)
	log.Info("Business calendar configured", "timezone", businessLoc.String())

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	redisClient, err := cache.NewRedisClient(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}

	// Audit events leave the gateway through Kafka and are stored by the activity processor
	activityProducer, err := producers.NewActivityEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize activity event producer", "error", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(log, postgresDB)
	services := components.CreateServices(components.Dependencies{
		DB:           postgresDB.Pool(),
		UserRepo:     userRepo,
		AccountRepo:  postgres.NewAccountRepository(log, postgresDB),
		LedgerRepo:   postgres.NewLedgerRepository(log, postgresDB),
		TransferRepo: postgres.NewTransferRepository(log, postgresDB),
		Counter:      redisClient,
		Publisher:    activityProducer,
	}, cfg, log)

	authorizer := auth.NewAuthorizer(log.With("component", "authorizer"), auth.NewTokenVerifier(&cfg.Auth), userRepo)

	server := api_gateway.NewServer(log, cfg, authorizer, services)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Drain in-flight requests before closing what they use
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = activityProducer.Close(); err != nil {
		log.Error("Error closing activity event producer", "error", err)
	}

	if err = redisClient.Close(); err != nil {
		log.Error("Error closing Redis client", "error", err)
	}

	postgresDB.Close()

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
