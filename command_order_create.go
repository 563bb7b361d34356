package resumekit

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type OrderCreateMessage struct {
	Name       string `json:"name" example:"Pepe Rone" doc:"Purchaser full name."`
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Purchaser email."`
	Phone      string `json:"phone" example:"+919876543210" doc:"Purchaser phone."`
	OnResponse func(resp *OrderCreateResponse)
}

func (m OrderCreateMessage) Type() string { return "checkout.order_create" }

type OrderCreateResponse struct {
	Order           *Order
	ProviderOrderID string
	Amount          int64
	Currency        string
}

// OrderCreateHandler opens an order with the payment gateway and records it
// locally against the purchaser's account.
type OrderCreateHandler struct {
	repo     RepositoryManager
	gateway  PaymentGateway
	amount   int64
	currency string
}

// NewOrderCreateHandler returns a handler selling at the given price point.
func NewOrderCreateHandler(repo RepositoryManager, gateway PaymentGateway, amount int64, currency string) *OrderCreateHandler {
	return &OrderCreateHandler{
		repo:     repo,
		gateway:  gateway,
		amount:   amount,
		currency: currency,
	}
}

func (h *OrderCreateHandler) Execute(ctx context.Context, event OrderCreateMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during order creation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *OrderCreateHandler) execute(ctx context.Context, event OrderCreateMessage) error {
	resp := &OrderCreateResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account, err := h.repo.Accounts().GetOrCreate(ctx, &Account{
		Name:  event.Name,
		Email: event.Email,
		Phone: normalizePhone(event.Phone),
	})
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve account for order")
	}

	// The gateway call stays outside the transaction: a slow provider must
	// not hold a database lock.
	provider, err := h.gateway.CreateOrder(ctx, h.amount, h.currency, Receipt(event.Email))
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open provider order")
	}

	order := &Order{
		AccountID:       account.ID,
		ProviderOrderID: provider.ID,
		Amount:          provider.Amount,
		Currency:        provider.Currency,
		Status:          OrderCreated,
		Name:            event.Name,
		Email:           event.Email,
		Phone:           account.Phone,
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if order, err = h.repo.Orders().Create(ctx, order); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not record order")
		}
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "order creation transaction failed")
	}

	resp.Order = order
	resp.ProviderOrderID = provider.ID
	resp.Amount = provider.Amount
	resp.Currency = provider.Currency
	event.OnResponse(resp)

	return nil
}
