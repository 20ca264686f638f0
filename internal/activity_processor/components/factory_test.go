package components

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tabungan-ledger/internal/activity_processor/service"
	"github.com/tabungan-ledger/internal/config"
	"github.com/tabungan-ledger/internal/domain/activity"
)

type nopRepository struct{}

func (nopRepository) Create(context.Context, *activity.Event) error { return nil }

func TestCreateStoreService(t *testing.T) {
	cfg := &config.Config{WorkerPool: config.WorkerPoolConfig{Size: 4}}

	svc := CreateStoreService(nopRepository{}, slog.Default(), cfg)

	pooled, ok := svc.(*service.WorkerPoolStoreService)
	if assert.True(t, ok) {
		assert.Equal(t, 4, pooled.Capacity())
		pooled.Shutdown()
	}
}
