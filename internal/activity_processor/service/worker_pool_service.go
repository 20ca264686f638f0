package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/panjf2000/ants/v2"

	"github.com/tabungan-ledger/internal/domain/activity"
)

// WorkerPoolStoreService bounds the number of concurrent writes to the audit sink
type WorkerPoolStoreService struct {
	baseService StoreService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolStoreService(
	baseService StoreService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolStoreService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}

	return &WorkerPoolStoreService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// StoreEvent runs the write on a pool worker and waits for its result.
// The caller stops waiting when ctx is done; the worker still finishes its write.
func (s *WorkerPoolStoreService) StoreEvent(ctx context.Context, event *activity.Event) error {
	resultChan := make(chan error, 1)

	eventCopy := *event
	err := s.pool.Submit(func() {
		resultChan <- s.baseService.StoreEvent(context.WithoutCancel(ctx), &eventCopy)
	})
	if err != nil {
		s.logger.Error("Failed to submit activity event to worker pool",
			"event_id", event.ID.String(),
			"error", err,
		)
		return fmt.Errorf("submitting activity event %s: %w", event.ID, err)
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown releases the pool. Running writes are not interrupted.
func (s *WorkerPoolStoreService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolStoreService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolStoreService) Capacity() int {
	return s.pool.Cap()
}
