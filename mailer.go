package resumekit

import (
	"context"
	"fmt"
	"net/url"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/wneessen/go-mail"
)

// Mailer sends the transactional mails the app produces.
type Mailer interface {
	SendWelcome(ctx context.Context, to, name, password string) error
	SendPasswordReset(ctx context.Context, to, resetLink string) error
	SendOTP(ctx context.Context, to, code string) error
}

// SMTPConfig carries the SMTP endpoint and sender identity.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BaseURL  string
}

// SMTPMailer is the production Mailer, delivering over SMTP.
type SMTPMailer struct {
	client *mail.Client
	from   string
	logger Logger
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer dials nothing up front; the connection is made per send.
func NewSMTPMailer(cfg SMTPConfig, logger Logger) (*SMTPMailer, error) {
	if logger == nil {
		logger = defLogger{}
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10*time.Second),
	)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build SMTP client")
	}

	return &SMTPMailer{
		client: client,
		from:   cfg.From,
		logger: logger,
	}, nil
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, to, name, password string) error {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your payment was received and your account is ready.</p>
<p>You can sign in with this email address and the password below:</p>
<p><strong>%s</strong></p>
<p>Please change it after your first login.</p>`, name, password)

	return m.send(ctx, to, "Welcome! Your account credentials", body)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	body := fmt.Sprintf(`<p>We received a request to reset your password.</p>
<p><a href="%s">Click here to choose a new password.</a></p>
<p>The link expires in one hour. If you did not request this, ignore this email.</p>`, resetLink)

	return m.send(ctx, to, "Reset your password", body)
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, code string) error {
	body := fmt.Sprintf(`<p>Your verification code is:</p>
<p><strong>%s</strong></p>
<p>The code expires in 10 minutes.</p>`, code)

	return m.send(ctx, to, "Your verification code", body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()

	if err := msg.From(m.from); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid sender address")
	}

	if err := msg.To(to); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid recipient address").
			WithMetadata(map[string]any{"to": to})
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("mail send failed: %s", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send email").
			WithMetadata(map[string]any{"subject": subject})
	}

	return nil
}

// ResetLink builds the browser URL a reset email points at.
func ResetLink(baseURL, token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", baseURL, url.QueryEscape(token))
}
