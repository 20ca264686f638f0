package components

import (
	"log/slog"

	"github.com/tabungan-ledger/internal/balance_core/service"
	"github.com/tabungan-ledger/internal/config"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/ledger"
	"github.com/tabungan-ledger/internal/domain/transfer"
	"github.com/tabungan-ledger/internal/domain/user"
	"github.com/tabungan-ledger/internal/platform/cache"
	"github.com/tabungan-ledger/internal/platform/messaging/producers"
	"github.com/tabungan-ledger/internal/platform/persistence"
)

// Dependencies are the storage and messaging handles the core is built from.
type Dependencies struct {
	DB           persistence.TxBeginner
	UserRepo     user.Repository
	AccountRepo  account.Repository
	LedgerRepo   ledger.Repository
	TransferRepo transfer.Repository
	Counter      cache.CounterClient
	Publisher    producers.EventPublisher
}

// Services groups the operations exposed by the balance mutation core.
type Services struct {
	Transactions service.TransactionService
	Transfers    service.TransferService
	Pins         service.PinService
	Accounts     service.AccountService
	Queries      service.QueryService
}

// CreateServices wires the components into the core's services.
func CreateServices(deps Dependencies, cfg *config.Config, logger *slog.Logger) *Services {
	credentials := NewCredentialVerifier(
		deps.Counter,
		cfg.Credential.PinHashCost,
		cfg.Credential.MaxPinAttempts,
		cfg.Credential.PinAttemptWindow,
		logger.With("component", "credential_verifier"),
	)
	locker := NewAccountLocker(deps.AccountRepo, cfg.Mutation.LockTimeout, logger.With("component", "account_locker"))
	limits := NewDailyLimitGuard(deps.LedgerRepo, logger.With("component", "daily_limit_guard"))
	balanceLedger := NewBalanceLedger(deps.AccountRepo, deps.LedgerRepo, logger.With("component", "balance_ledger"))
	recorder := NewActivityRecorder(deps.Publisher, logger.With("component", "activity_recorder"))
	retry := service.NewRetryPolicy(&cfg.Mutation)

	logger.Info("Created balance mutation core",
		"lock_timeout", cfg.Mutation.LockTimeout,
		"max_retries", cfg.Mutation.MaxRetries,
		"max_pin_attempts", cfg.Credential.MaxPinAttempts,
	)

	return &Services{
		Transactions: service.NewTransactionApplier(deps.DB, locker, credentials, limits, balanceLedger, recorder, retry,
			logger.With("component", "transaction_applier")),
		Transfers: service.NewTransferApplier(deps.DB, deps.AccountRepo, deps.TransferRepo, locker, credentials, limits, balanceLedger, recorder, retry,
			logger.With("component", "transfer_applier")),
		Pins:     service.NewPinService(deps.AccountRepo, credentials, recorder, logger.With("component", "pin_service")),
		Accounts: service.NewAccountService(deps.DB, deps.UserRepo, deps.AccountRepo, recorder, logger.With("component", "account_service")),
		Queries:  service.NewQueryService(deps.AccountRepo, deps.LedgerRepo, deps.TransferRepo, logger.With("component", "query_service")),
	}
}
