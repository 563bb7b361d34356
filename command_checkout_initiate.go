package resumekit

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

type CheckoutInitiateMessage struct {
	Name       string `json:"name" example:"Pepe Rone" doc:"Purchaser full name."`
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Purchaser email."`
	Phone      string `json:"phone" example:"+919876543210" doc:"Purchaser phone."`
	OnResponse func(resp *CheckoutInitiateResponse)
}

func (m CheckoutInitiateMessage) Type() string { return "checkout.initiate" }

type CheckoutInitiateResponse struct {
	Account *Account
	Created bool
}

// CheckoutInitiateHandler records a purchase intent. Replaying the same
// email returns the existing account untouched, so a retried checkout never
// forks a second identity.
type CheckoutInitiateHandler struct {
	repo RepositoryManager
}

// NewCheckoutInitiateHandler returns a handler bound to the given stores.
func NewCheckoutInitiateHandler(repo RepositoryManager) *CheckoutInitiateHandler {
	return &CheckoutInitiateHandler{repo: repo}
}

func (h *CheckoutInitiateHandler) Execute(ctx context.Context, event CheckoutInitiateMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during checkout initiation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CheckoutInitiateHandler) execute(ctx context.Context, event CheckoutInitiateMessage) error {
	resp := &CheckoutInitiateResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account := &Account{
		Name:  event.Name,
		Email: event.Email,
		Phone: normalizePhone(event.Phone),
	}

	existing, err := h.repo.Accounts().GetByEmail(ctx, event.Email)
	if err == nil {
		resp.Account = existing
		resp.Created = false
		event.OnResponse(resp)
		return nil
	}

	if !goerrors.IsNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account for checkout")
	}

	created, err := h.repo.Accounts().Create(ctx, account)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create account for checkout")
	}

	resp.Account = created
	resp.Created = true
	event.OnResponse(resp)

	return nil
}

// normalizePhone canonicalizes to E.164 when the number parses; otherwise
// the raw input is stored as given.
func normalizePhone(phone string) string {
	if phone == "" {
		return phone
	}

	parsed, err := phonenumbers.Parse(phone, "IN")
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return phone
	}

	return phonenumbers.Format(parsed, phonenumbers.E164)
}
