package resumekit

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type OTPSendMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	OnResponse func(resp *OTPSendResponse)
}

func (m OTPSendMessage) Type() string { return "account.otp_send" }

type OTPSendResponse struct {
	Success bool
}

// OTPSendHandler emails a short-lived numeric code as the first stage of the
// two-step reset flow. Like the link flow, unknown emails get the same
// response and no mail.
type OTPSendHandler struct {
	repo   RepositoryManager
	mailer Mailer
}

// NewOTPSendHandler returns a handler bound to the given stores.
func NewOTPSendHandler(repo RepositoryManager, mailer Mailer) *OTPSendHandler {
	return &OTPSendHandler{repo: repo, mailer: mailer}
}

func (h *OTPSendHandler) Execute(ctx context.Context, event OTPSendMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during OTP send",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *OTPSendHandler) execute(ctx context.Context, event OTPSendMessage) error {
	resp := &OTPSendResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account, err := h.repo.Accounts().GetByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			resp.Success = true
			event.OnResponse(resp)
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for OTP")
	}

	code, err := NewOTP()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate OTP")
	}

	expiry := time.Now().Add(OTPTTL)
	if err := h.repo.Accounts().SetResetToken(ctx, account.ID, code, expiry); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store OTP")
	}

	if err := h.mailer.SendOTP(ctx, account.Email, code); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send OTP email")
	}

	resp.Success = true
	event.OnResponse(resp)

	return nil
}
