package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tabungan-ledger/internal/api_gateway/middleware"
	"github.com/tabungan-ledger/internal/auth"
	"github.com/tabungan-ledger/internal/balance_core/service"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/ledger"
	"github.com/tabungan-ledger/internal/domain/shared"
	"github.com/tabungan-ledger/internal/domain/transfer"
	"github.com/tabungan-ledger/internal/domain/user"
)

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) ApplyTransaction(ctx context.Context, actor *auth.Actor, cmd service.TransactionCommand) (*ledger.Entry, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) ApplyTransfer(ctx context.Context, actor *auth.Actor, cmd service.TransferCommand) (*service.TransferResult, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransferResult), args.Error(1)
}

type MockPinService struct {
	mock.Mock
}

func (m *MockPinService) SetPin(ctx context.Context, actor *auth.Actor, cmd service.SetPinCommand) error {
	return m.Called(ctx, actor, cmd).Error(0)
}

func (m *MockPinService) VerifyPin(ctx context.Context, actor *auth.Actor, accountID uuid.UUID, pin string) error {
	return m.Called(ctx, actor, accountID, pin).Error(0)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) OpenAccount(ctx context.Context, actor *auth.Actor, cmd service.OpenAccountCommand) (*service.OpenedAccount, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OpenedAccount), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) GetOwnAccount(ctx context.Context, actor *auth.Actor) (*account.Account, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) FindByAccountNumber(ctx context.Context, actor *auth.Actor, number string) (*account.Account, error) {
	args := m.Called(ctx, actor, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) ListEntries(ctx context.Context, actor *auth.Actor, filter ledger.Filter, page shared.PageRequest) (*service.EntryPage, error) {
	args := m.Called(ctx, actor, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EntryPage), args.Error(1)
}

func (m *MockQueryService) ListTransfers(ctx context.Context, actor *auth.Actor, filter transfer.Filter, page shared.PageRequest) (*service.TransferPage, error) {
	args := m.Called(ctx, actor, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransferPage), args.Error(1)
}

func (m *MockQueryService) GetTransfer(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*service.TransferDetail, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransferDetail), args.Error(1)
}

// setupTestRouter returns a router that authenticates every request as actor.
// A nil actor leaves the request unauthenticated.
func setupTestRouter(actor *auth.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
	r := gin.New()
	r.Use(middleware.CorrelationID())
	r.Use(func(c *gin.Context) {
		if actor != nil {
			c.Set(middleware.ActorKey, actor)
		}
		c.Next()
	})
	return r
}

func tellerActor() *auth.Actor {
	return &auth.Actor{UserID: uuid.New(), Role: user.RolePetugas}
}

func nasabahActor() *auth.Actor {
	return &auth.Actor{UserID: uuid.New(), Role: user.RoleNasabah}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// decodeData unmarshals the envelope and then its data field into out.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) Response {
	t.Helper()
	var envelope Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	if out != nil {
		dataBytes, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(dataBytes, out))
	}
	return envelope
}
