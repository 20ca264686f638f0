package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tabungan-ledger/internal/domain/user"
)

// Verifier turns a raw bearer token into an identity assertion.
type Verifier interface {
	Verify(raw string) (uuid.UUID, user.Role, error)
}

// Authorizer resolves a bearer token into an Actor backed by an active user.
type Authorizer struct {
	verifier Verifier
	users    user.Repository
	logger   *slog.Logger
}

func NewAuthorizer(logger *slog.Logger, verifier Verifier, users user.Repository) *Authorizer {
	return &Authorizer{
		verifier: verifier,
		users:    users,
		logger:   logger.With("component", "authorizer"),
	}
}

// Authenticate accepts an Authorization header value of the form "Bearer <token>".
func (a *Authorizer) Authenticate(ctx context.Context, header string) (*Actor, error) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: missing bearer token", ErrInvalidToken)
	}

	userID, role, err := a.verifier.Verify(strings.TrimSpace(raw))
	if err != nil {
		a.logger.Debug("Rejected bearer token", "error", err)
		return nil, err
	}

	u, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.As(err, &user.ErrUserNotFound{}) {
			a.logger.Warn("Token subject does not exist", "user_id", userID.String())
			return nil, fmt.Errorf("%w: unknown subject", ErrInvalidToken)
		}
		return nil, fmt.Errorf("failed to load token subject: %w", err)
	}
	if !u.IsActive {
		a.logger.Warn("Inactive user presented a token", "user_id", userID.String())
		return nil, user.ErrUserInactive
	}
	if u.Role != role {
		// the stored role wins over a stale token
		a.logger.Info("Token role differs from stored role", "user_id", userID.String(),
			"token_role", role, "stored_role", u.Role)
	}

	return &Actor{UserID: u.ID, Role: u.Role}, nil
}
