package resumekit

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	// TextCodeTokenExpired marks credentials rejected for age
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed marks credentials rejected for shape or signature
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeSignatureMismatch marks a payment callback that failed HMAC verification
	TextCodeSignatureMismatch = "PAYMENT_SIGNATURE_MISMATCH"
	// TextCodeResetTokenInvalid covers wrong, expired and unknown reset tokens alike
	TextCodeResetTokenInvalid = "RESET_TOKEN_INVALID"
	// TextCodeWelcomeEmailNotSent marks the partial-failure state where the
	// account is already paid but the credentials email did not go out
	TextCodeWelcomeEmailNotSent = "WELCOME_EMAIL_NOT_SENT"
)

// ErrTokenExpired is returned for otherwise valid credentials past their expiry.
var ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for credentials that fail to parse or verify.
var ErrTokenMalformed = errors.New("authentication token malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidCredentials is returned on failed logins. It deliberately does not
// say which part of the credentials was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrSignatureMismatch is returned when a payment confirmation does not carry
// the provider's signature over the order and payment identifiers.
var ErrSignatureMismatch = errors.New("invalid payment signature", errors.CategoryBadInput).
	WithTextCode(TextCodeSignatureMismatch).
	WithCode(errors.CodeBadRequest)

// ErrOrderNotFound is returned when no order matches the provider order identifier.
var ErrOrderNotFound = errors.New("order not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrAccountNotFound is returned when no account matches the given identifier.
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrResetTokenInvalid covers every reset/OTP verification miss. Wrong code,
// expired code and unknown account must stay indistinguishable to callers.
var ErrResetTokenInvalid = errors.New("invalid or expired reset token", errors.CategoryBadInput).
	WithTextCode(TextCodeResetTokenInvalid).
	WithCode(errors.CodeBadRequest)

// ErrWelcomeEmailNotSent is the partial-failure state of payment verification:
// the order and account were already transitioned but the credentials email
// failed, so operators must resend the password out of band.
var ErrWelcomeEmailNotSent = errors.New("welcome email not sent", errors.CategoryInternal).
	WithTextCode(TextCodeWelcomeEmailNotSent).
	WithCode(errors.CodeInternal)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the bcrypt mismatch, normalized.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenExpired) ||
		strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenMalformed) ||
		strings.Contains(err.Error(), "token is malformed")
}
