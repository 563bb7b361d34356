package resumekit

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type OTPVerifyMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	Code       string `json:"otp" example:"482913" doc:"Numeric code from the OTP email."`
	OnResponse func(resp *OTPVerifyResponse)
}

func (m OTPVerifyMessage) Type() string { return "account.otp_verify" }

type OTPVerifyResponse struct {
	Verified   bool
	ResetToken string
}

// OTPVerifyHandler exchanges a live OTP for a fresh single-use reset token.
// The code is consumed by the exchange: replaying the same digits fails,
// and the returned token is what finalizes the password change.
type OTPVerifyHandler struct {
	repo RepositoryManager
}

// NewOTPVerifyHandler returns a handler bound to the given stores.
func NewOTPVerifyHandler(repo RepositoryManager) *OTPVerifyHandler {
	return &OTPVerifyHandler{repo: repo}
}

func (h *OTPVerifyHandler) Execute(ctx context.Context, event OTPVerifyMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during OTP verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *OTPVerifyHandler) execute(ctx context.Context, event OTPVerifyMessage) error {
	resp := &OTPVerifyResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	now := time.Now()

	account, err := h.repo.Accounts().GetByEmailAndResetToken(ctx, event.Email, event.Code, now)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrResetTokenInvalid
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for OTP verification")
	}

	token, err := NewResetToken()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}

	// Swapping the OTP for a longer token both invalidates the digits and
	// opens a one hour window to finish the reset.
	expiry := now.Add(ResetTokenTTL)
	if err := h.repo.Accounts().SetResetToken(ctx, account.ID, token, expiry); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to rotate reset token")
	}

	resp.Verified = true
	resp.ResetToken = token
	event.OnResponse(resp)

	return nil
}
