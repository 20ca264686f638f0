package handler

import (
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tabungan-ledger/internal/auth"
	"github.com/tabungan-ledger/internal/balance_core/service"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/credential"
	"github.com/tabungan-ledger/internal/domain/ledger"
	"github.com/tabungan-ledger/internal/domain/shared"
	"github.com/tabungan-ledger/internal/domain/user"
)

func newAccountHandler(t *testing.T, accounts *MockAccountService, pins *MockPinService, queries *MockQueryService) *AccountHandler {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return NewAccountHandler(logger, accounts, pins, queries)
}

func TestAccountHandler_Create(t *testing.T) {
	teller := tellerActor()

	t.Run("Success", func(t *testing.T) {
		accounts := new(MockAccountService)
		owner, err := user.NewUser("budi@example.com", "Budi Santoso", "0812", user.RoleNasabah)
		require.NoError(t, err)
		acc, err := account.NewAccount(owner.ID, "1234567890", decimal.NewFromInt(2000000))
		require.NoError(t, err)

		accounts.On("OpenAccount", mock.Anything, teller, mock.MatchedBy(func(cmd service.OpenAccountCommand) bool {
			return cmd.Email == "budi@example.com" && cmd.DailyLimit.Equal(decimal.NewFromInt(2000000)) &&
				cmd.DateOfBirth != nil && cmd.DateOfBirth.Format("2006-01-02") == "1990-05-17"
		})).Return(&service.OpenedAccount{User: owner, Account: acc}, nil)

		h := newAccountHandler(t, accounts, new(MockPinService), new(MockQueryService))
		router := setupTestRouter(teller)
		router.POST("/accounts", h.Create)

		rr := doJSON(t, router, http.MethodPost, "/accounts", map[string]string{
			"email":         "budi@example.com",
			"full_name":     "Budi Santoso",
			"phone":         "0812",
			"date_of_birth": "1990-05-17",
			"daily_limit":   "2000000",
		})

		assert.Equal(t, http.StatusCreated, rr.Code)
		var resp OpenAccountResponse
		decodeData(t, rr, &resp)
		assert.Equal(t, "1234567890", resp.Account.AccountNumber)
		assert.Equal(t, "0", resp.Account.Balance)
		assert.False(t, resp.Account.HasPin)
		assert.Equal(t, "nasabah", resp.User.Role)
		assert.NotContains(t, rr.Body.String(), "pin_hash")
		accounts.AssertExpectations(t)
	})

	t.Run("DailyLimitDefaultsToUnlimited", func(t *testing.T) {
		accounts := new(MockAccountService)
		accounts.On("OpenAccount", mock.Anything, teller, mock.MatchedBy(func(cmd service.OpenAccountCommand) bool {
			return cmd.DailyLimit.IsZero() && cmd.DateOfBirth == nil
		})).Return(nil, user.ErrDuplicateEmail{Email: "budi@example.com"})

		h := newAccountHandler(t, accounts, new(MockPinService), new(MockQueryService))
		router := setupTestRouter(teller)
		router.POST("/accounts", h.Create)

		rr := doJSON(t, router, http.MethodPost, "/accounts", map[string]string{
			"email":     "budi@example.com",
			"full_name": "Budi Santoso",
		})

		assert.Equal(t, http.StatusConflict, rr.Code)
		accounts.AssertExpectations(t)
	})

	for name, body := range map[string]map[string]string{
		"InvalidEmail":       {"email": "nope", "full_name": "Budi"},
		"MissingName":        {"email": "budi@example.com"},
		"NegativeDailyLimit": {"email": "budi@example.com", "full_name": "Budi", "daily_limit": "-1"},
		"BadDateOfBirth":     {"email": "budi@example.com", "full_name": "Budi", "date_of_birth": "17/05/1990"},
		"HugeDailyLimit":     {"email": "budi@example.com", "full_name": "Budi", "daily_limit": "1e50000000"},
	} {
		t.Run(name, func(t *testing.T) {
			accounts := new(MockAccountService)
			h := newAccountHandler(t, accounts, new(MockPinService), new(MockQueryService))
			router := setupTestRouter(teller)
			router.POST("/accounts", h.Create)

			rr := doJSON(t, router, http.MethodPost, "/accounts", body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			accounts.AssertNotCalled(t, "OpenAccount", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAccountHandler_GetByID(t *testing.T) {
	owner := nasabahActor()
	acc := &account.Account{
		ID:            uuid.New(),
		UserID:        owner.UserID,
		AccountNumber: "1234567890",
		Balance:       decimal.NewFromInt(150000),
		PinHash:       "$2a$10$secret",
		DailyLimit:    decimal.Zero,
		Version:       7,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	t.Run("Success", func(t *testing.T) {
		accounts := new(MockAccountService)
		accounts.On("GetAccount", mock.Anything, owner, acc.ID).Return(acc, nil)

		h := newAccountHandler(t, accounts, new(MockPinService), new(MockQueryService))
		router := setupTestRouter(owner)
		router.GET("/accounts/:id", h.GetByID)

		rr := doJSON(t, router, http.MethodGet, "/accounts/"+acc.ID.String(), nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp AccountResponse
		decodeData(t, rr, &resp)
		assert.Equal(t, "150000", resp.Balance)
		assert.True(t, resp.HasPin)
		assert.Equal(t, 7, resp.Version)
		assert.NotContains(t, rr.Body.String(), "$2a$10$secret")
	})

	t.Run("NotFound", func(t *testing.T) {
		accounts := new(MockAccountService)
		id := uuid.New()
		accounts.On("GetAccount", mock.Anything, owner, id).Return(nil, account.ErrAccountNotFound{AccountID: id})

		h := newAccountHandler(t, accounts, new(MockPinService), new(MockQueryService))
		router := setupTestRouter(owner)
		router.GET("/accounts/:id", h.GetByID)

		rr := doJSON(t, router, http.MethodGet, "/accounts/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		h := newAccountHandler(t, new(MockAccountService), new(MockPinService), new(MockQueryService))
		router := setupTestRouter(owner)
		router.GET("/accounts/:id", h.GetByID)

		rr := doJSON(t, router, http.MethodGet, "/accounts/123", nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAccountHandler_Me(t *testing.T) {
	owner := nasabahActor()

	t.Run("Success", func(t *testing.T) {
		acc := &account.Account{ID: uuid.New(), UserID: owner.UserID, AccountNumber: "1234567890", Balance: decimal.NewFromInt(42000)}
		accounts := new(MockAccountService)
		accounts.On("GetOwnAccount", mock.Anything, owner).Return(acc, nil)

		h := newAccountHandler(t, accounts, new(MockPinService), new(MockQueryService))
		router := setupTestRouter(owner)
		router.GET("/accounts/me", h.Me)

		rr := doJSON(t, router, http.MethodGet, "/accounts/me", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp AccountResponse
		decodeData(t, rr, &resp)
		assert.Equal(t, acc.ID.String(), resp.ID)
		assert.Equal(t, "42000", resp.Balance)
		accounts.AssertExpectations(t)
	})

	t.Run("NoAccount", func(t *testing.T) {
		accounts := new(MockAccountService)
		accounts.On("GetOwnAccount", mock.Anything, owner).Return(nil, account.ErrAccountNotFound{})

		h := newAccountHandler(t, accounts, new(MockPinService), new(MockQueryService))
		router := setupTestRouter(owner)
		router.GET("/accounts/me", h.Me)

		rr := doJSON(t, router, http.MethodGet, "/accounts/me", nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAccountHandler_Lookup(t *testing.T) {
	teller := tellerActor()
	acc := &account.Account{ID: uuid.New(), UserID: uuid.New(), AccountNumber: "9876543210", Balance: decimal.NewFromInt(10)}

	tests := []struct {
		name       string
		actor      *auth.Actor
		query      string
		setupMock  func(m *MockAccountService, actor *auth.Actor)
		wantStatus int
	}{
		{
			name:  "Found",
			actor: teller,
			query: "?account_number=9876543210",
			setupMock: func(m *MockAccountService, actor *auth.Actor) {
				m.On("FindByAccountNumber", mock.Anything, actor, "9876543210").Return(acc, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:  "UnknownNumber",
			actor: teller,
			query: "?account_number=0000000000",
			setupMock: func(m *MockAccountService, actor *auth.Actor) {
				m.On("FindByAccountNumber", mock.Anything, actor, "0000000000").
					Return(nil, account.ErrAccountNumberNotFound{AccountNumber: "0000000000"})
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:  "NasabahForbidden",
			actor: nasabahActor(),
			query: "?account_number=9876543210",
			setupMock: func(m *MockAccountService, actor *auth.Actor) {
				m.On("FindByAccountNumber", mock.Anything, actor, "9876543210").Return(nil, shared.ErrForbidden)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "MissingNumber",
			actor:      teller,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MalformedNumber",
			actor:      teller,
			query:      "?account_number=12ab",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(MockAccountService)
			if tt.setupMock != nil {
				tt.setupMock(accounts, tt.actor)
			}

			h := newAccountHandler(t, accounts, new(MockPinService), new(MockQueryService))
			router := setupTestRouter(tt.actor)
			router.GET("/accounts", h.Lookup)

			rr := doJSON(t, router, http.MethodGet, "/accounts"+tt.query, nil)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				var resp AccountResponse
				decodeData(t, rr, &resp)
				assert.Equal(t, acc.ID.String(), resp.ID)
			}
			accounts.AssertExpectations(t)
		})
	}
}

func TestAccountHandler_Ledger(t *testing.T) {
	owner := nasabahActor()
	accountID := uuid.New()

	t.Run("PassesFiltersThrough", func(t *testing.T) {
		queries := new(MockQueryService)
		from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
		entry, err := ledger.NewEntry(accountID, ledger.KindWithdrawal, decimal.NewFromInt(5000), decimal.NewFromInt(10000), "tarik tunai", owner.UserID, nil)
		require.NoError(t, err)

		queries.On("ListEntries", mock.Anything, owner, mock.MatchedBy(func(f ledger.Filter) bool {
			return f.AccountID == accountID && f.Kind == ledger.KindWithdrawal && f.Search == "tarik" &&
				f.DateFrom != nil && f.DateFrom.Equal(from) && f.DateTo != nil && f.DateTo.Equal(to)
		}), shared.PageRequest{Page: 1, PerPage: 20}).
			Return(&service.EntryPage{Entries: []*ledger.Entry{entry}, Total: 1, Page: 1, PerPage: 20, TotalPages: 1}, nil)

		h := newAccountHandler(t, new(MockAccountService), new(MockPinService), queries)
		router := setupTestRouter(owner)
		router.GET("/accounts/:id/ledger", h.Ledger)

		rr := doJSON(t, router, http.MethodGet,
			"/accounts/"+accountID.String()+"/ledger?date_from=2024-03-01&date_to=2024-03-31&kind=withdrawal&search=tarik&per_page=20", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp []EntryResponse
		envelope := decodeData(t, rr, &resp)
		require.Len(t, resp, 1)
		assert.Equal(t, "5000", resp[0].BalanceAfter)
		assert.Equal(t, 1, envelope.Meta.TotalItems)
		queries.AssertExpectations(t)
	})

	for name, query := range map[string]string{
		"BadDate":        "?date_from=01-03-2024",
		"ReversedRange":  "?date_from=2024-03-31&date_to=2024-03-01",
		"UnknownKind":    "?kind=fee",
		"PerPageTooHigh": "?per_page=1000",
		"PageZero":       "?page=0",
	} {
		t.Run(name, func(t *testing.T) {
			queries := new(MockQueryService)
			h := newAccountHandler(t, new(MockAccountService), new(MockPinService), queries)
			router := setupTestRouter(owner)
			router.GET("/accounts/:id/ledger", h.Ledger)

			rr := doJSON(t, router, http.MethodGet, "/accounts/"+accountID.String()+"/ledger"+query, nil)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			queries.AssertNotCalled(t, "ListEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAccountHandler_Pin(t *testing.T) {
	owner := nasabahActor()
	accountID := uuid.New()

	t.Run("SetPin", func(t *testing.T) {
		pins := new(MockPinService)
		pins.On("SetPin", mock.Anything, owner, service.SetPinCommand{AccountID: accountID, Pin: "246810", CurrentPin: "123456"}).Return(nil)

		h := newAccountHandler(t, new(MockAccountService), pins, new(MockQueryService))
		router := setupTestRouter(owner)
		router.PUT("/accounts/:id/pin", h.SetPin)

		rr := doJSON(t, router, http.MethodPut, "/accounts/"+accountID.String()+"/pin", map[string]string{
			"pin":         "246810",
			"current_pin": "123456",
		})

		assert.Equal(t, http.StatusNoContent, rr.Code)
		pins.AssertExpectations(t)
	})

	t.Run("SetPinMalformed", func(t *testing.T) {
		pins := new(MockPinService)
		h := newAccountHandler(t, new(MockAccountService), pins, new(MockQueryService))
		router := setupTestRouter(owner)
		router.PUT("/accounts/:id/pin", h.SetPin)

		rr := doJSON(t, router, http.MethodPut, "/accounts/"+accountID.String()+"/pin", map[string]string{"pin": "99x999"})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.NotContains(t, rr.Body.String(), "99x999")
	})

	t.Run("VerifyPin", func(t *testing.T) {
		pins := new(MockPinService)
		pins.On("VerifyPin", mock.Anything, owner, accountID, "123456").Return(nil)

		h := newAccountHandler(t, new(MockAccountService), pins, new(MockQueryService))
		router := setupTestRouter(owner)
		router.POST("/accounts/:id/pin/verify", h.VerifyPin)

		rr := doJSON(t, router, http.MethodPost, "/accounts/"+accountID.String()+"/pin/verify", map[string]string{"pin": "123456"})

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp map[string]bool
		decodeData(t, rr, &resp)
		assert.True(t, resp["valid"])
	})

	t.Run("VerifyPinWrong", func(t *testing.T) {
		pins := new(MockPinService)
		pins.On("VerifyPin", mock.Anything, owner, accountID, "000000").Return(credential.ErrInvalidPin)

		h := newAccountHandler(t, new(MockAccountService), pins, new(MockQueryService))
		router := setupTestRouter(owner)
		router.POST("/accounts/:id/pin/verify", h.VerifyPin)

		rr := doJSON(t, router, http.MethodPost, "/accounts/"+accountID.String()+"/pin/verify", map[string]string{"pin": "000000"})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		envelope := decodeData(t, rr, nil)
		assert.Equal(t, "INVALID_CREDENTIAL", envelope.Error.Code)
	})
}
