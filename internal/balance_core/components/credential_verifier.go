package components

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/tabungan-ledger/internal/balance_core/service"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/credential"
	"github.com/tabungan-ledger/internal/platform/cache"
)

const pinAttemptKeyPrefix = "pin_attempts:"

// CredentialVerifierImpl checks PINs with bcrypt and counts failures per
// account in Redis. A Redis outage is logged and never blocks verification.
type CredentialVerifierImpl struct {
	counter     cache.CounterClient
	hashCost    int
	maxAttempts int
	window      time.Duration
	logger      *slog.Logger
}

func NewCredentialVerifier(counter cache.CounterClient, hashCost, maxAttempts int, window time.Duration, logger *slog.Logger) service.CredentialVerifier {
	return &CredentialVerifierImpl{
		counter:     counter,
		hashCost:    hashCost,
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
	}
}

// VerifyPin fails closed: an account without a PIN never verifies.
func (v *CredentialVerifierImpl) VerifyPin(ctx context.Context, acc *account.Account, pin string) error {
	if err := credential.ValidatePinFormat(pin); err != nil {
		return err
	}
	if acc == nil {
		return account.ErrAccountNotFound{}
	}

	if v.locked(ctx, acc.ID) {
		v.logger.Warn("PIN verification locked", "account_id", acc.ID.String())
		return credential.ErrPinLocked
	}
	if !acc.HasPin() {
		return credential.ErrPinNotSet
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PinHash), []byte(pin)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			v.logger.Error("Stored PIN hash is unusable", "account_id", acc.ID.String(), "error", err)
		}
		v.recordFailure(ctx, acc.ID)
		return credential.ErrInvalidPin
	}

	v.reset(ctx, acc.ID)
	return nil
}

// HashPin returns the bcrypt hash of a well-formed PIN.
func (v *CredentialVerifierImpl) HashPin(pin string) (string, error) {
	if err := credential.ValidatePinFormat(pin); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), v.hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func attemptKey(accountID uuid.UUID) string {
	return pinAttemptKeyPrefix + accountID.String()
}

func (v *CredentialVerifierImpl) locked(ctx context.Context, accountID uuid.UUID) bool {
	failures, err := v.counter.Get(ctx, attemptKey(accountID)).Int()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			v.logger.Warn("PIN attempt counter unavailable", "account_id", accountID.String(), "error", err)
		}
		return false
	}
	return failures >= v.maxAttempts
}

func (v *CredentialVerifierImpl) recordFailure(ctx context.Context, accountID uuid.UUID) {
	key := attemptKey(accountID)
	failures, err := v.counter.Incr(ctx, key).Result()
	if err != nil {
		v.logger.Warn("Failed to count PIN failure", "account_id", accountID.String(), "error", err)
		return
	}
	if failures == 1 {
		if err := v.counter.Expire(ctx, key, v.window).Err(); err != nil {
			v.logger.Warn("Failed to set PIN attempt window", "account_id", accountID.String(), "error", err)
		}
	}
	v.logger.Info("PIN mismatch", "account_id", accountID.String(), "failures", failures)
}

func (v *CredentialVerifierImpl) reset(ctx context.Context, accountID uuid.UUID) {
	if err := v.counter.Del(ctx, attemptKey(accountID)).Err(); err != nil {
		v.logger.Warn("Failed to reset PIN attempt counter", "account_id", accountID.String(), "error", err)
	}
}
