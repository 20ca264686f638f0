package components

import (
	"log/slog"

	"github.com/tabungan-ledger/internal/activity_processor/service"
	"github.com/tabungan-ledger/internal/config"
	"github.com/tabungan-ledger/internal/domain/activity"
)

// CreateStoreService builds the audit store, pooled when a worker pool size is configured.
func CreateStoreService(
	activityRepo activity.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) service.StoreService {
	baseService := service.NewActivityStoreService(activityRepo, logger)

	workerPoolService, err := service.NewWorkerPoolStoreService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool store service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool store service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
