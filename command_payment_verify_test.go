package resumekit_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/admivo/resumekit"
)

func TestPaymentVerifyHandler(t *testing.T) {
	secret := "gateway-secret"
	orderID := "order_ABC123"
	paymentID := "pay_XYZ789"
	accountID := uuid.New()

	newOrder := func(status string) *resumekit.Order {
		return &resumekit.Order{
			ID:              uuid.New(),
			AccountID:       accountID,
			ProviderOrderID: orderID,
			Amount:          49900,
			Currency:        "INR",
			Status:          status,
			Email:           "pepe.rone@example.com",
			Name:            "Pepe Rone",
		}
	}

	t.Run("bad signature mutates nothing", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		mailer := &MockMailer{}

		handler := resumekit.NewPaymentVerifyHandler(repo, mailer, secret).
			WithLogger(testLogger{})

		err := handler.Execute(context.Background(), resumekit.PaymentVerifyMessage{
			OrderID:    orderID,
			PaymentID:  paymentID,
			Signature:  "deadbeef",
			OnResponse: func(resp *resumekit.PaymentVerifyResponse) {},
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, resumekit.ErrSignatureMismatch)

		repo.AssertNotCalled(t, "RunInTx", mock.Anything, mock.Anything, mock.Anything)
		mailer.AssertNotCalled(t, "SendWelcome", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("valid signature promotes order and account and emails once", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		orders := &MockOrders{}
		accounts := &MockAccounts{}
		mailer := &MockMailer{}

		paid := newOrder(resumekit.OrderPaid)
		pending := &resumekit.Account{
			ID:     accountID,
			Name:   "Pepe Rone",
			Email:  "pepe.rone@example.com",
			Status: resumekit.AccountPending,
			Role:   resumekit.RoleUser,
		}
		account := &resumekit.Account{
			ID:     accountID,
			Name:   "Pepe Rone",
			Email:  "pepe.rone@example.com",
			Status: resumekit.AccountPaid,
			Role:   resumekit.RoleUser,
		}

		repo.On("Orders").Return(orders)
		repo.On("Accounts").Return(accounts)
		repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		orders.On("GetByProviderOrderIDTx", mock.Anything, mock.Anything, orderID).
			Return(newOrder(resumekit.OrderCreated), nil).Once()
		orders.On("MarkPaidTx", mock.Anything, mock.Anything, orderID).
			Return(paid, nil).Once()
		accounts.On("GetByIDTx", mock.Anything, mock.Anything, accountID).
			Return(pending, nil).Once()
		accounts.On("MarkPaidTx", mock.Anything, mock.Anything, accountID, mock.AnythingOfType("string")).
			Return(account, nil).Once()
		mailer.On("SendWelcome", mock.Anything, account.Email, account.Name, mock.AnythingOfType("string")).
			Return(nil).Once()

		var res *resumekit.PaymentVerifyResponse

		handler := resumekit.NewPaymentVerifyHandler(repo, mailer, secret).
			WithLogger(testLogger{})

		err := handler.Execute(context.Background(), resumekit.PaymentVerifyMessage{
			OrderID:   orderID,
			PaymentID: paymentID,
			Signature: resumekit.SignPayment(secret, orderID, paymentID),
			OnResponse: func(resp *resumekit.PaymentVerifyResponse) {
				res = resp
			},
		})

		require.NoError(t, err)
		require.NotNil(t, res)
		assert.True(t, res.EmailSent)
		assert.False(t, res.Replayed)
		assert.NotEmpty(t, res.Password)
		assert.Equal(t, resumekit.OrderPaid, res.Order.Status)

		orders.AssertExpectations(t)
		accounts.AssertExpectations(t)
		mailer.AssertExpectations(t)
	})

	t.Run("repeat purchase keeps existing credentials", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		orders := &MockOrders{}
		accounts := &MockAccounts{}
		mailer := &MockMailer{}

		already := &resumekit.Account{
			ID:     accountID,
			Name:   "Pepe Rone",
			Email:  "pepe.rone@example.com",
			Status: resumekit.AccountPaid,
			Role:   resumekit.RoleUser,
		}

		repo.On("Orders").Return(orders)
		repo.On("Accounts").Return(accounts)
		repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		orders.On("GetByProviderOrderIDTx", mock.Anything, mock.Anything, orderID).
			Return(newOrder(resumekit.OrderCreated), nil).Once()
		orders.On("MarkPaidTx", mock.Anything, mock.Anything, orderID).
			Return(newOrder(resumekit.OrderPaid), nil).Once()
		accounts.On("GetByIDTx", mock.Anything, mock.Anything, accountID).
			Return(already, nil).Once()

		var res *resumekit.PaymentVerifyResponse

		handler := resumekit.NewPaymentVerifyHandler(repo, mailer, secret).
			WithLogger(testLogger{})

		err := handler.Execute(context.Background(), resumekit.PaymentVerifyMessage{
			OrderID:   orderID,
			PaymentID: paymentID,
			Signature: resumekit.SignPayment(secret, orderID, paymentID),
			OnResponse: func(resp *resumekit.PaymentVerifyResponse) {
				res = resp
			},
		})

		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, resumekit.OrderPaid, res.Order.Status)
		assert.Empty(t, res.Password)
		assert.False(t, res.EmailSent)

		accounts.AssertNotCalled(t, "MarkPaidTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mailer.AssertNotCalled(t, "SendWelcome", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("replayed callback acknowledges without re-applying", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		orders := &MockOrders{}
		accounts := &MockAccounts{}
		mailer := &MockMailer{}

		repo.On("Orders").Return(orders)
		repo.On("Accounts").Return(accounts)
		repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		orders.On("GetByProviderOrderIDTx", mock.Anything, mock.Anything, orderID).
			Return(newOrder(resumekit.OrderPaid), nil).Once()

		var res *resumekit.PaymentVerifyResponse

		handler := resumekit.NewPaymentVerifyHandler(repo, mailer, secret).
			WithLogger(testLogger{})

		err := handler.Execute(context.Background(), resumekit.PaymentVerifyMessage{
			OrderID:   orderID,
			PaymentID: paymentID,
			Signature: resumekit.SignPayment(secret, orderID, paymentID),
			OnResponse: func(resp *resumekit.PaymentVerifyResponse) {
				res = resp
			},
		})

		require.NoError(t, err)
		require.NotNil(t, res)
		assert.True(t, res.Replayed)
		assert.Empty(t, res.Password)

		orders.AssertNotCalled(t, "MarkPaidTx", mock.Anything, mock.Anything, mock.Anything)
		accounts.AssertNotCalled(t, "MarkPaidTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mailer.AssertNotCalled(t, "SendWelcome", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown order surfaces not found", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		orders := &MockOrders{}
		mailer := &MockMailer{}

		repo.On("Orders").Return(orders)
		repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		orders.On("GetByProviderOrderIDTx", mock.Anything, mock.Anything, orderID).
			Return(nil, errors.New("record not found", errors.CategoryNotFound).WithCode(errors.CodeNotFound)).Once()

		handler := resumekit.NewPaymentVerifyHandler(repo, mailer, secret).
			WithLogger(testLogger{})

		err := handler.Execute(context.Background(), resumekit.PaymentVerifyMessage{
			OrderID:    orderID,
			PaymentID:  paymentID,
			Signature:  resumekit.SignPayment(secret, orderID, paymentID),
			OnResponse: func(resp *resumekit.PaymentVerifyResponse) {},
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, resumekit.ErrOrderNotFound)
	})

	t.Run("mail failure keeps the payment and reports it", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		orders := &MockOrders{}
		accounts := &MockAccounts{}
		mailer := &MockMailer{}

		paid := newOrder(resumekit.OrderPaid)
		pending := &resumekit.Account{
			ID:     accountID,
			Name:   "Pepe Rone",
			Email:  "pepe.rone@example.com",
			Status: resumekit.AccountPending,
			Role:   resumekit.RoleUser,
		}
		account := &resumekit.Account{
			ID:     accountID,
			Name:   "Pepe Rone",
			Email:  "pepe.rone@example.com",
			Status: resumekit.AccountPaid,
			Role:   resumekit.RoleUser,
		}

		repo.On("Orders").Return(orders)
		repo.On("Accounts").Return(accounts)
		repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		orders.On("GetByProviderOrderIDTx", mock.Anything, mock.Anything, orderID).
			Return(newOrder(resumekit.OrderCreated), nil).Once()
		orders.On("MarkPaidTx", mock.Anything, mock.Anything, orderID).
			Return(paid, nil).Once()
		accounts.On("GetByIDTx", mock.Anything, mock.Anything, accountID).
			Return(pending, nil).Once()
		accounts.On("MarkPaidTx", mock.Anything, mock.Anything, accountID, mock.AnythingOfType("string")).
			Return(account, nil).Once()
		mailer.On("SendWelcome", mock.Anything, account.Email, account.Name, mock.AnythingOfType("string")).
			Return(errors.New("smtp down", errors.CategoryInternal)).Once()

		var res *resumekit.PaymentVerifyResponse

		handler := resumekit.NewPaymentVerifyHandler(repo, mailer, secret).
			WithLogger(testLogger{})

		err := handler.Execute(context.Background(), resumekit.PaymentVerifyMessage{
			OrderID:   orderID,
			PaymentID: paymentID,
			Signature: resumekit.SignPayment(secret, orderID, paymentID),
			OnResponse: func(resp *resumekit.PaymentVerifyResponse) {
				res = resp
			},
		})

		require.Error(t, err)

		var richErr *errors.Error
		require.True(t, errors.As(err, &richErr))
		assert.Equal(t, resumekit.TextCodeWelcomeEmailNotSent, richErr.TextCode)

		require.NotNil(t, res)
		assert.False(t, res.EmailSent)
		assert.Equal(t, resumekit.OrderPaid, res.Order.Status)
	})
}
