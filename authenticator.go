package resumekit

import (
	"context"
	"crypto/subtle"

	goerrors "github.com/goliatone/go-errors"
)

// Auther turns credentials into signed tokens. It verifies member logins
// against the account store, and back office logins against the configured
// admin credential.
type Auther struct {
	repo              RepositoryManager
	tokens            TokenService
	adminEmail        string
	adminPasswordHash string
	logger            Logger
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(repo RepositoryManager, tokens TokenService) *Auther {
	return &Auther{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// WithAdminCredential registers the back office login pair. The password is
// stored as a bcrypt hash, never in the clear.
func (s *Auther) WithAdminCredential(email, passwordHash string) *Auther {
	s.adminEmail = email
	s.adminPasswordHash = passwordHash
	return s
}

// TokenService returns the TokenService instance used by this Auther
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Login verifies a member credential pair and mints a token carrying the
// account's role. Every failure mode collapses to ErrInvalidCredentials so
// responses never reveal whether the email is known.
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	account, err := s.repo.Accounts().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return "", ErrInvalidCredentials
		}
		s.logger.Error("Login account lookup error: %s", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	if !account.IsPaid() || account.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(account.Email, account.Role)
}

// AdminLogin verifies the configured back office credential and mints an
// admin token. The email comparison is constant time alongside the bcrypt
// check, so timing never separates a wrong email from a wrong password.
func (s *Auther) AdminLogin(ctx context.Context, email, password string) (string, error) {
	if s.adminEmail == "" || s.adminPasswordHash == "" {
		s.logger.Warn("AdminLogin attempted without a configured admin credential")
		return "", ErrInvalidCredentials
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) == 1
	passErr := ComparePasswordAndHash(password, s.adminPasswordHash)

	if !emailOK || passErr != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(email, RoleAdmin)
}
