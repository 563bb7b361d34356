package resumekit_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/admivo/resumekit"
)

func TestCheckoutInitiateHandler(t *testing.T) {
	email := "pepe.rone@example.com"

	t.Run("first checkout creates a pending account", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		accounts := &MockAccounts{}

		created := &resumekit.Account{
			ID:     uuid.New(),
			Name:   "Pepe Rone",
			Email:  email,
			Status: resumekit.AccountPending,
			Role:   resumekit.RoleUser,
		}

		repo.On("Accounts").Return(accounts)
		accounts.On("GetByEmail", mock.Anything, email).
			Return(nil, repository.NewRecordNotFound()).Once()
		accounts.On("Create", mock.Anything, mock.AnythingOfType("*resumekit.Account")).
			Return(created, nil).Once()

		var res *resumekit.CheckoutInitiateResponse

		handler := resumekit.NewCheckoutInitiateHandler(repo)
		err := handler.Execute(context.Background(), resumekit.CheckoutInitiateMessage{
			Name:  "Pepe Rone",
			Email: email,
			Phone: "+919876543210",
			OnResponse: func(resp *resumekit.CheckoutInitiateResponse) {
				res = resp
			},
		})

		require.NoError(t, err)
		require.NotNil(t, res)
		assert.True(t, res.Created)
		assert.Equal(t, resumekit.AccountPending, res.Account.Status)

		accounts.AssertExpectations(t)
	})

	t.Run("repeat checkout returns the existing account untouched", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		accounts := &MockAccounts{}

		existing := &resumekit.Account{
			ID:     uuid.New(),
			Name:   "Pepe Rone",
			Email:  email,
			Status: resumekit.AccountPaid,
			Role:   resumekit.RoleUser,
		}

		repo.On("Accounts").Return(accounts)
		accounts.On("GetByEmail", mock.Anything, email).
			Return(existing, nil).Once()

		var res *resumekit.CheckoutInitiateResponse

		handler := resumekit.NewCheckoutInitiateHandler(repo)
		err := handler.Execute(context.Background(), resumekit.CheckoutInitiateMessage{
			Name:  "Pepe Rone",
			Email: email,
			Phone: "+919876543210",
			OnResponse: func(resp *resumekit.CheckoutInitiateResponse) {
				res = resp
			},
		})

		require.NoError(t, err)
		require.NotNil(t, res)
		assert.False(t, res.Created)
		assert.Equal(t, existing.ID, res.Account.ID)
		assert.Equal(t, resumekit.AccountPaid, res.Account.Status)

		accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("cancelled context short-circuits", func(t *testing.T) {
		repo := &MockRepositoryManager{}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		handler := resumekit.NewCheckoutInitiateHandler(repo)
		err := handler.Execute(ctx, resumekit.CheckoutInitiateMessage{
			Name:       "Pepe Rone",
			Email:      email,
			Phone:      "+919876543210",
			OnResponse: func(resp *resumekit.CheckoutInitiateResponse) {},
		})

		require.Error(t, err)
		repo.AssertNotCalled(t, "Accounts")
	})
}

func TestOrderCreateHandler(t *testing.T) {
	email := "pepe.rone@example.com"
	accountID := uuid.New()

	t.Run("opens a provider order and records it", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		accounts := &MockAccounts{}
		orders := &MockOrders{}
		gateway := &MockGateway{}

		account := &resumekit.Account{
			ID:     accountID,
			Email:  email,
			Status: resumekit.AccountPending,
			Role:   resumekit.RoleUser,
		}

		provider := &resumekit.ProviderOrder{
			ID:       "order_ABC123",
			Amount:   49900,
			Currency: "INR",
			Receipt:  resumekit.Receipt(email),
		}

		repo.On("Accounts").Return(accounts)
		repo.On("Orders").Return(orders)
		repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		accounts.On("GetOrCreate", mock.Anything, mock.AnythingOfType("*resumekit.Account")).
			Return(account, nil).Once()
		gateway.On("CreateOrder", mock.Anything, int64(49900), "INR", resumekit.Receipt(email)).
			Return(provider, nil).Once()
		orders.On("Create", mock.Anything, mock.AnythingOfType("*resumekit.Order")).
			Return(&resumekit.Order{
				ID:              uuid.New(),
				AccountID:       accountID,
				ProviderOrderID: provider.ID,
				Amount:          provider.Amount,
				Currency:        provider.Currency,
				Status:          resumekit.OrderCreated,
			}, nil).Once()

		var res *resumekit.OrderCreateResponse

		handler := resumekit.NewOrderCreateHandler(repo, gateway, 49900, "INR")
		err := handler.Execute(context.Background(), resumekit.OrderCreateMessage{
			Name:  "Pepe Rone",
			Email: email,
			Phone: "+919876543210",
			OnResponse: func(resp *resumekit.OrderCreateResponse) {
				res = resp
			},
		})

		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, "order_ABC123", res.ProviderOrderID)
		assert.Equal(t, int64(49900), res.Amount)
		assert.Equal(t, "INR", res.Currency)

		gateway.AssertExpectations(t)
		orders.AssertExpectations(t)
	})

	t.Run("gateway failure records nothing", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		accounts := &MockAccounts{}
		orders := &MockOrders{}
		gateway := &MockGateway{}

		account := &resumekit.Account{ID: accountID, Email: email}

		repo.On("Accounts").Return(accounts)
		accounts.On("GetOrCreate", mock.Anything, mock.Anything).
			Return(account, nil).Once()
		gateway.On("CreateOrder", mock.Anything, int64(49900), "INR", resumekit.Receipt(email)).
			Return(nil, assert.AnError).Once()

		handler := resumekit.NewOrderCreateHandler(repo, gateway, 49900, "INR")
		err := handler.Execute(context.Background(), resumekit.OrderCreateMessage{
			Name:       "Pepe Rone",
			Email:      email,
			Phone:      "+919876543210",
			OnResponse: func(resp *resumekit.OrderCreateResponse) {},
		})

		require.Error(t, err)
		orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
