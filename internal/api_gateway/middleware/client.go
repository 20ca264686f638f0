package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/tabungan-ledger/internal/domain/activity"
)

// ClientInfo copies the caller's address, user agent and correlation id into
// the request context so audit events can carry them. It must run after CorrelationID.
func ClientInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := activity.WithClient(c.Request.Context(), activity.ClientInfo{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			RequestID: CorrelationIDFromContext(c.Request.Context()),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
