package resumekit

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type FinalizePasswordResetMessage struct {
	Token      string `json:"token" doc:"Reset token from the emailed link or a verified OTP."`
	Password   string `json:"password" doc:"The new password."`
	OnResponse func(resp *FinalizePasswordResetResponse)
}

func (m FinalizePasswordResetMessage) Type() string { return "account.password_reset_finalize" }

type FinalizePasswordResetResponse struct {
	Success bool
}

// FinalizePasswordResetHandler consumes a live reset token and installs the
// new password hash. The token match and the update run in one transaction
// so a token can authorize exactly one change.
type FinalizePasswordResetHandler struct {
	repo RepositoryManager
}

// NewFinalizePasswordResetHandler returns a handler bound to the given stores.
func NewFinalizePasswordResetHandler(repo RepositoryManager) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{repo: repo}
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	resp := &FinalizePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		account, err := h.repo.Accounts().GetByResetTokenTx(ctx, tx, event.Token, time.Now())
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrResetTokenInvalid
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for reset token")
		}

		if err := h.repo.Accounts().ResetPasswordTx(ctx, tx, account.ID, hash); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update account password")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password reset transaction failed")
	}

	resp.Success = true
	event.OnResponse(resp)

	return nil
}
