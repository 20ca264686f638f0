package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tabungan-ledger/internal/bootstrap"
	"github.com/tabungan-ledger/internal/config"
	"github.com/tabungan-ledger/internal/data/postgres"
	"github.com/tabungan-ledger/internal/logger"
	"github.com/tabungan-ledger/internal/platform/persistence"
)

const provisionTimeout = time.Minute

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), provisionTimeout)
	defer cancel()

	cfg, err := config.LoadConfig("bootstrap_admin")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	postgresDB, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer postgresDB.Close()

	admin, err := bootstrap.ProvisionAdmin(ctx, log, postgres.NewUserRepository(log, postgresDB), &cfg.Bootstrap)
	switch {
	case errors.Is(err, bootstrap.ErrAdminExists):
		log.Info("Administrator already provisioned, nothing to do")
	case err != nil:
		log.Error("Failed to provision administrator", "error", err)
		postgresDB.Close()
		os.Exit(1)
	default:
		log.Info("Administrator ready", "user_id", admin.ID.String(), "email", admin.Email)
	}
}
