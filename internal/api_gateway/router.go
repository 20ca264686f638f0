package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tabungan-ledger/internal/api_gateway/handler"
	"github.com/tabungan-ledger/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	authenticator middleware.Authenticator,
	accountHandler *handler.AccountHandler,
	transactionHandler *handler.TransactionHandler,
	transferHandler *handler.TransferHandler,
) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.ClientInfo())

	// API v1 endpoints, all authenticated
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(authenticator, logger))
	{
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.Create)
			accounts.GET("", accountHandler.Lookup)
			accounts.GET("/me", accountHandler.Me)
			accounts.GET("/:id", accountHandler.GetByID)
			accounts.GET("/:id/ledger", accountHandler.Ledger)
			accounts.PUT("/:id/pin", accountHandler.SetPin)
			accounts.POST("/:id/pin/verify", accountHandler.VerifyPin)
		}

		v1.POST("/transactions", transactionHandler.Create)

		transfers := v1.Group("/transfers")
		{
			transfers.POST("", transferHandler.Create)
			transfers.GET("", transferHandler.List)
			transfers.GET("/:id", transferHandler.GetByID)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
