package resumekit

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService issues and verifies signed credentials
type TokenService interface {
	Issue(email string, role Role) (string, error)
	Validate(raw string) (*AdminClaims, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	expiration time.Duration
	issuer     string
	logger     Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, expiration time.Duration, issuer string, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		expiration: expiration,
		issuer:     issuer,
		logger:     logger,
	}
}

// Issue creates a signed credential for the given identity and role. Two
// tokens issued for the same claims at different instants differ bytewise
// through the embedded issued-at, but both verify until their own expiry.
func (ts *TokenServiceImpl) Issue(email string, role Role) (string, error) {
	if email == "" {
		return "", errors.New("identity email must not be empty", errors.CategoryBadInput)
	}

	now := time.Now()
	claims := &AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.expiration)),
		},
		Email:    email,
		UserRole: string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign credential")
	}

	return signed, nil
}

// Validate parses and verifies a raw token. Malformed, tampered and expired
// tokens come back as errors, never panics; downstream treats every error as
// "no credential".
func (ts *TokenServiceImpl) Validate(raw string) (*AdminClaims, error) {
	var parserOptions []jwt.ParserOption
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &AdminClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*AdminClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode claims")
	return nil, ErrTokenMalformed
}
