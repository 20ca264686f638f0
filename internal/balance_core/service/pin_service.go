package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tabungan-ledger/internal/auth"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/activity"
	"github.com/tabungan-ledger/internal/domain/credential"
)

type PinServiceImpl struct {
	accounts    account.Repository
	credentials CredentialVerifier
	recorder    activity.Recorder
	logger      *slog.Logger
}

func NewPinService(accounts account.Repository, credentials CredentialVerifier, recorder activity.Recorder, logger *slog.Logger) *PinServiceImpl {
	return &PinServiceImpl{
		accounts:    accounts,
		credentials: credentials,
		recorder:    recorder,
		logger:      logger,
	}
}

// SetPin stores a new PIN hash for the actor's own account. Replacing an
// existing PIN requires the current one. The write only lands if the hash
// read here is still stored, so a concurrent first-time setup cannot be
// overwritten without the current PIN.
func (s *PinServiceImpl) SetPin(ctx context.Context, actor *auth.Actor, cmd SetPinCommand) error {
	if err := credential.ValidatePinFormat(cmd.Pin); err != nil {
		return err
	}
	if err := actor.Authorize(auth.OpSetPin, nil); err != nil {
		return err
	}

	acc, err := s.accounts.GetByID(ctx, cmd.AccountID)
	if err != nil {
		return err
	}
	if err := actor.Authorize(auth.OpSetPin, acc); err != nil {
		return err
	}

	replacing := acc.HasPin()
	if replacing {
		if err := s.credentials.VerifyPin(ctx, acc, cmd.CurrentPin); err != nil {
			s.logger.Warn("PIN change rejected", "account_id", acc.ID.String(), "error", err)
			return err
		}
	}

	hash, err := s.credentials.HashPin(cmd.Pin)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePinHash(ctx, acc.ID, acc.PinHash, hash); err != nil {
		if errors.Is(err, account.ErrConcurrentModification{}) {
			s.logger.Warn("PIN changed concurrently", "account_id", acc.ID.String())
		}
		return err
	}

	s.logger.Info("PIN configured", "account_id", acc.ID.String(), "replaced", replacing)
	s.recorder.Record(ctx, activity.NewEvent(actor.UserID, activity.ActionUpdate, activity.EntityNasabah, acc.ID.String(),
		map[string]any{"action": "setup_pin"}))
	return nil
}

// VerifyPin is a pre-check for clients. Mutations verify the PIN again inline.
func (s *PinServiceImpl) VerifyPin(ctx context.Context, actor *auth.Actor, accountID uuid.UUID, pin string) error {
	if err := credential.ValidatePinFormat(pin); err != nil {
		return err
	}

	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := actor.Authorize(auth.OpVerifyPin, acc); err != nil {
		return err
	}

	return s.credentials.VerifyPin(ctx, acc, pin)
}
