package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tabungan-ledger/internal/auth"
	"github.com/tabungan-ledger/internal/domain/shared"
)

// ActorKey is the key used to store the authenticated actor in the gin context
const ActorKey = "actor"

// Authenticator turns an Authorization header into an actor
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*auth.Actor, error)
}

// Auth rejects requests without a valid bearer token for an active user and
// stores the resulting actor for the handlers
func Auth(authenticator Authenticator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := authenticator.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			status, code, message := http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized"
			switch {
			case shared.Classify(err) == shared.CategoryAuthorization:
				status, code, message = http.StatusForbidden, "FORBIDDEN", "Forbidden"
			case !errors.Is(err, auth.ErrInvalidToken):
				status, code, message = http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred"
			}

			logger.Warn("Authentication failed",
				"path", c.Request.URL.Path,
				"correlation_id", GetCorrelationID(c),
				"error", err,
			)
			abortWithError(c, status, code, message)
			return
		}

		c.Set(ActorKey, actor)
		c.Next()
	}
}

// GetActor returns the actor stored by Auth, or nil on unauthenticated routes
func GetActor(c *gin.Context) *auth.Actor {
	if v, exists := c.Get(ActorKey); exists {
		if actor, ok := v.(*auth.Actor); ok {
			return actor
		}
	}
	return nil
}

func abortWithError(c *gin.Context, status int, code, message string) {
	response := gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
	if correlationID := GetCorrelationID(c); correlationID != "" {
		response["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(status, response)
}
