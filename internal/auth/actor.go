package auth

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/shared"
	"github.com/tabungan-ledger/internal/domain/user"
)

// Operation names an action an actor may be allowed to perform.
type Operation string

const (
	OpApplyTransaction Operation = "apply_transaction"
	OpApplyTransfer    Operation = "apply_transfer"
	OpSetPin           Operation = "set_pin"
	OpVerifyPin        Operation = "verify_pin"
	OpOpenAccount      Operation = "open_account"
	OpViewAccount      Operation = "view_account"
	OpViewLedger       Operation = "view_ledger"
	OpViewTransfers    Operation = "view_transfers"
	OpSearchAccounts   Operation = "search_accounts"
)

// Actor is the authenticated, active user behind a request. It is produced
// once per request by the Authorizer and passed down to the services.
type Actor struct {
	UserID uuid.UUID
	Role   user.Role
}

// CanPerform reports whether the actor's role allows op at all.
func (a *Actor) CanPerform(op Operation) bool {
	switch op {
	case OpApplyTransaction, OpOpenAccount, OpSearchAccounts:
		return a.Role.IsStaff()
	case OpSetPin:
		return a.Role == user.RoleNasabah
	case OpApplyTransfer, OpVerifyPin, OpViewAccount, OpViewLedger, OpViewTransfers:
		return a.Role.Valid()
	}
	return false
}

// CanAccessAccount reports whether the actor may touch acc. Staff reach every
// account; a nasabah only its own.
func (a *Actor) CanAccessAccount(acc *account.Account) bool {
	if acc == nil {
		return false
	}
	return a.Role.IsStaff() || acc.UserID == a.UserID
}

// Authorize checks op and, when acc is non-nil, ownership of acc.
func (a *Actor) Authorize(op Operation, acc *account.Account) error {
	if a == nil || !a.CanPerform(op) {
		return fmt.Errorf("%s: %w", op, shared.ErrForbidden)
	}
	if acc != nil && !a.CanAccessAccount(acc) {
		return fmt.Errorf("%s on account %s: %w", op, acc.ID, shared.ErrForbidden)
	}
	return nil
}

// IsStaff reports whether the actor is an admin or teller.
func (a *Actor) IsStaff() bool {
	return a.Role.IsStaff()
}
