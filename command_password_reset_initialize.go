package resumekit

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (m InitializePasswordResetMessage) Type() string { return "account.password_reset" }

type InitializePasswordResetResponse struct {
	Success bool
}

// InitializePasswordResetHandler issues a reset link for a known account.
// Unknown emails produce the same response and no email, so the endpoint
// cannot be used to probe which addresses have accounts.
type InitializePasswordResetHandler struct {
	repo    RepositoryManager
	mailer  Mailer
	baseURL string
}

// NewInitializePasswordResetHandler returns a handler emailing links rooted
// at baseURL.
func NewInitializePasswordResetHandler(repo RepositoryManager, mailer Mailer, baseURL string) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:    repo,
		mailer:  mailer,
		baseURL: baseURL,
	}
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account, err := h.repo.Accounts().GetByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			resp.Success = true
			event.OnResponse(resp)
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
	}

	token, err := NewResetToken()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}

	expiry := time.Now().Add(ResetTokenTTL)
	if err := h.repo.Accounts().SetResetToken(ctx, account.ID, token, expiry); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset token")
	}

	if err := h.mailer.SendPasswordReset(ctx, account.Email, ResetLink(h.baseURL, token)); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send password reset email")
	}

	resp.Success = true
	event.OnResponse(resp)

	return nil
}
