package resumekit

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type PaymentVerifyMessage struct {
	OrderID    string `json:"orderId" doc:"Provider order identifier."`
	PaymentID  string `json:"paymentId" doc:"Provider payment identifier."`
	Signature  string `json:"signature" doc:"Provider HMAC signature."`
	OnResponse func(resp *PaymentVerifyResponse)
}

func (m PaymentVerifyMessage) Type() string { return "checkout.payment_verify" }

type PaymentVerifyResponse struct {
	Order     *Order
	Account   *Account
	Password  string
	EmailSent bool
	Replayed  bool
}

// PaymentVerifyHandler checks the provider signature and, on a match,
// promotes the order and its account to paid in a single transaction. The
// generated password only leaves the process inside the welcome email.
type PaymentVerifyHandler struct {
	repo      RepositoryManager
	mailer    Mailer
	keySecret string
	logger    Logger
}

// NewPaymentVerifyHandler returns a handler verifying against the given
// gateway secret.
func NewPaymentVerifyHandler(repo RepositoryManager, mailer Mailer, keySecret string) *PaymentVerifyHandler {
	return &PaymentVerifyHandler{
		repo:      repo,
		mailer:    mailer,
		keySecret: keySecret,
		logger:    defLogger{},
	}
}

func (h *PaymentVerifyHandler) WithLogger(logger Logger) *PaymentVerifyHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *PaymentVerifyHandler) Execute(ctx context.Context, event PaymentVerifyMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during payment verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *PaymentVerifyHandler) execute(ctx context.Context, event PaymentVerifyMessage) error {
	resp := &PaymentVerifyResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := VerifyPaymentSignature(h.keySecret, event.OrderID, event.PaymentID, event.Signature); err != nil {
		return err
	}

	password, err := GeneratePassword(12)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate account password")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash account password")
	}

	provisioned := false

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := h.repo.Orders().GetByProviderOrderIDTx(ctx, tx, event.OrderID)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrOrderNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load order")
		}

		// a replayed callback with a valid signature is acknowledged, not
		// re-applied: no second transition, no second credentials email
		if current.Status == OrderPaid {
			resp.Order = current
			resp.Replayed = true
			return nil
		}

		if err := EnsureOrderTransition(current.Status, OrderPaid); err != nil {
			return err
		}

		order, err := h.repo.Orders().MarkPaidTx(ctx, tx, event.OrderID)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrOrderNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark order paid")
		}

		account, err := h.repo.Accounts().GetByIDTx(ctx, tx, order.AccountID)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load account")
		}

		// a repeat purchase on an already provisioned account keeps the
		// existing credentials; only pending accounts get promoted
		if CanTransitionAccount(account.Status, AccountPaid) {
			account, err = h.repo.Accounts().MarkPaidTx(ctx, tx, order.AccountID, hash)
			if err != nil {
				if goerrors.IsNotFound(err) {
					return ErrAccountNotFound
				}
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark account paid")
			}
			provisioned = true
		}

		resp.Order = order
		resp.Account = account
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "payment verification transaction failed")
	}

	if resp.Replayed || !provisioned {
		event.OnResponse(resp)
		return nil
	}

	resp.Password = password

	// The payment is committed regardless of delivery: a mail outage must
	// never look like a failed purchase.
	if err := h.mailer.SendWelcome(ctx, resp.Account.Email, resp.Account.Name, password); err != nil {
		h.logger.Error("welcome email failed for %s: %s", resp.Account.Email, err)
		resp.EmailSent = false
		event.OnResponse(resp)
		return goerrors.Wrap(err, ErrWelcomeEmailNotSent.Category, ErrWelcomeEmailNotSent.Message).
			WithTextCode(ErrWelcomeEmailNotSent.TextCode).
			WithMetadata(map[string]any{"email": resp.Account.Email})
	}

	resp.EmailSent = true
	event.OnResponse(resp)

	return nil
}
