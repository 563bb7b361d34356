package resumekit

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims is the payload of a signed credential: identity email, role,
// and the registered issued-at/expiry pair. Holders treat the token as
// opaque; only the issuer's secret verifies it.
type AdminClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	UserRole string `json:"role,omitempty"`
}

// Identity returns the identity email carried by the credential.
func (c *AdminClaims) Identity() string {
	if c.Email != "" {
		return c.Email
	}
	return c.RegisteredClaims.Subject
}

// Role returns the role claim as a Role. Unknown strings come back as-is
// and fail every capability check.
func (c *AdminClaims) Role() Role {
	return Role(c.UserRole)
}

// CanAccessBackOffice reports whether this credential passes the admin gate.
func (c *AdminClaims) CanAccessBackOffice() bool {
	return c.Role().CanAccessBackOffice()
}

// Expires returns the expiration time
func (c *AdminClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *AdminClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
