package resumekit_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	"github.com/admivo/resumekit"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockAccounts implements resumekit.Accounts for testing
type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) GetByID(ctx context.Context, id uuid.UUID) (*resumekit.Account, error) {
	args := m.Called(ctx, id)
	if acc := args.Get(0); acc != nil {
		return acc.(*resumekit.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*resumekit.Account, error) {
	args := m.Called(ctx, tx, id)
	if acc := args.Get(0); acc != nil {
		return acc.(*resumekit.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) GetByEmail(ctx context.Context, email string) (*resumekit.Account, error) {
	args := m.Called(ctx, email)
	if acc := args.Get(0); acc != nil {
		return acc.(*resumekit.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*resumekit.Account, error) {
	args := m.Called(ctx, tx, email)
	if acc := args.Get(0); acc != nil {
		return acc.(*resumekit.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) Create(ctx context.Context, record *resumekit.Account) (*resumekit.Account, error) {
	args := m.Called(ctx, record)
	if acc := args.Get(0); acc != nil {
		return acc.(*resumekit.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) GetOrCreate(ctx context.Context, record *resumekit.Account) (*resumekit.Account, error) {
	args := m.Called(ctx, record)
	if acc := args.Get(0); acc != nil {
		return acc.(*resumekit.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) MarkPaid(ctx context.Context, id uuid.UUID, passwordHash string) (*resumekit.Account, error) {
	args := m.Called(ctx, id, passwordHash)
	if acc := args.Get(0); acc != nil {
		return acc.(*resumekit.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) MarkPaidTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) (*resumekit.Account, error) {
	args := m.Called(ctx, tx, id, passwordHash)
	if acc := args.Get(0); acc != nil {
		return acc.(*resumekit.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error {
	args := m.Called(ctx, id, token, expiry)
	return args.Error(0)
}

func (m *MockAccounts) GetByResetToken(ctx context.Context, token string, now time.Time) (*resumekit.Account, error) {
	args := m.Called(ctx, token, now)
	if acc := args.Get(0); acc != nil {
		return acc.(*resumekit.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) GetByResetTokenTx(ctx context.Context, tx bun.IDB, token string, now time.Time) (*resumekit.Account, error) {
	args := m.Called(ctx, tx, token, now)
	if acc := args.Get(0); acc != nil {
		return acc.(*resumekit.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) GetByEmailAndResetToken(ctx context.Context, email, token string, now time.Time) (*resumekit.Account, error) {
	args := m.Called(ctx, email, token, now)
	if acc := args.Get(0); acc != nil {
		return acc.(*resumekit.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccounts) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

// MockOrders implements resumekit.Orders for testing
type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) Create(ctx context.Context, record *resumekit.Order) (*resumekit.Order, error) {
	args := m.Called(ctx, record)
	if ord := args.Get(0); ord != nil {
		return ord.(*resumekit.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrders) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*resumekit.Order, error) {
	args := m.Called(ctx, providerOrderID)
	if ord := args.Get(0); ord != nil {
		return ord.(*resumekit.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrders) GetByProviderOrderIDTx(ctx context.Context, tx bun.IDB, providerOrderID string) (*resumekit.Order, error) {
	args := m.Called(ctx, tx, providerOrderID)
	if ord := args.Get(0); ord != nil {
		return ord.(*resumekit.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrders) MarkPaid(ctx context.Context, providerOrderID string) (*resumekit.Order, error) {
	args := m.Called(ctx, providerOrderID)
	if ord := args.Get(0); ord != nil {
		return ord.(*resumekit.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrders) MarkPaidTx(ctx context.Context, tx bun.IDB, providerOrderID string) (*resumekit.Order, error) {
	args := m.Called(ctx, tx, providerOrderID)
	if ord := args.Get(0); ord != nil {
		return ord.(*resumekit.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRepositoryManager implements resumekit.RepositoryManager for testing.
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

// RunInTx executes the given function inline with a zero bun.Tx and
// propagates its error, unless the expectation returns an error to force a
// transaction failure.
func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	if err := args.Error(0); err != nil {
		return err
	}
	var tx bun.Tx
	return f(ctx, tx)
}

func (m *MockRepositoryManager) Accounts() resumekit.Accounts {
	args := m.Called()
	return args.Get(0).(resumekit.Accounts)
}

func (m *MockRepositoryManager) Orders() resumekit.Orders {
	args := m.Called()
	return args.Get(0).(resumekit.Orders)
}

// MockMailer implements resumekit.Mailer for testing
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendWelcome(ctx context.Context, to, name, password string) error {
	args := m.Called(ctx, to, name, password)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	args := m.Called(ctx, to, resetLink)
	return args.Error(0)
}

func (m *MockMailer) SendOTP(ctx context.Context, to, code string) error {
	args := m.Called(ctx, to, code)
	return args.Error(0)
}

// MockGateway implements resumekit.PaymentGateway for testing
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*resumekit.ProviderOrder, error) {
	args := m.Called(ctx, amount, currency, receipt)
	if ord := args.Get(0); ord != nil {
		return ord.(*resumekit.ProviderOrder), args.Error(1)
	}
	return nil, args.Error(1)
}
