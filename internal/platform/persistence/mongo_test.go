package persistence

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tabungan-ledger/internal/config"
)

func TestNewMongoDB_Failures(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantErr string
	}{
		{
			name:    "malformed uri",
			uri:     "not-a-mongo-uri",
			wantErr: "failed to connect to MongoDB",
		},
		{
			name:    "unreachable server",
			uri:     "mongodb://127.0.0.1:1/?connectTimeoutMS=50&serverSelectionTimeoutMS=50",
			wantErr: "failed to ping MongoDB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.MongoDBConfig{
				URI:             tt.uri,
				Database:        "tabungan_audit",
				Timeout:         100 * time.Millisecond,
				MaxPoolSize:     2,
				MinPoolSize:     0,
				MaxConnIdleTime: time.Second,
			}

			db, err := NewMongoDB(context.Background(), slog.Default(), cfg)

			assert.Nil(t, db)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
