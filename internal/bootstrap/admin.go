// Package bootstrap provisions the first administrator of a fresh installation.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tabungan-ledger/internal/config"
	"github.com/tabungan-ledger/internal/domain/shared"
	"github.com/tabungan-ledger/internal/domain/user"
)

var (
	ErrAdminExists       = shared.NewError(shared.CategoryBusinessRule, "an administrator already exists")
	ErrAdminEmailMissing = shared.NewError(shared.CategoryValidation, "BOOTSTRAP_ADMIN_EMAIL is required")
)

// ProvisionAdmin creates the administrator described by cfg unless any admin
// already exists. Running it again after success returns ErrAdminExists.
func ProvisionAdmin(ctx context.Context, logger *slog.Logger, users user.Repository, cfg *config.BootstrapConfig) (*user.User, error) {
	if cfg.AdminEmail == "" {
		return nil, ErrAdminEmailMissing
	}

	exists, err := users.ExistsWithRole(ctx, user.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing admin: %w", err)
	}
	if exists {
		return nil, ErrAdminExists
	}

	admin, err := user.NewUser(cfg.AdminEmail, cfg.AdminFullName, "", user.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if err := users.Create(ctx, admin); err != nil {
		// a concurrent run won the race
		var dup user.ErrDuplicateEmail
		if errors.As(err, &dup) {
			return nil, ErrAdminExists
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	logger.Info("Provisioned administrator", "user_id", admin.ID.String())
	return admin, nil
}
