package resumekit

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountStatus is the coarse lifecycle state of an account
type AccountStatus = string

const (
	// AccountPending is the state after a checkout intent, before payment
	AccountPending AccountStatus = "pending"
	// AccountPaid is the state after a verified payment
	AccountPaid AccountStatus = "paid"
)

// Account is the purchaser identity. It is created on the first checkout
// intent and only gains a password once a payment has been verified.
type Account struct {
	bun.BaseModel    `bun:"table:accounts,alias:acc"`
	ID               uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name             string        `bun:"name,notnull" json:"name,omitempty"`
	Email            string        `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone            string        `bun:"phone,notnull" json:"phone,omitempty"`
	Status           AccountStatus `bun:"status,notnull" json:"status,omitempty"`
	Role             Role          `bun:"role,notnull" json:"role,omitempty"`
	PasswordHash     string        `bun:"password_hash" json:"-"`
	ResetToken       string        `bun:"reset_token,nullzero" json:"-"`
	ResetTokenExpiry *time.Time    `bun:"reset_token_expiry,nullzero" json:"-"`
	CreatedAt        *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt        *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// IsPaid reports whether the account went through a verified payment.
func (a *Account) IsPaid() bool {
	return a != nil && a.Status == AccountPaid
}

// HasActiveResetToken reports whether a reset token is set and unexpired.
func (a *Account) HasActiveResetToken(now time.Time) bool {
	if a == nil || a.ResetToken == "" || a.ResetTokenExpiry == nil {
		return false
	}
	return a.ResetTokenExpiry.After(now)
}

// OrderStatus is the lifecycle state of an order
type OrderStatus = string

const (
	// OrderCreated is the state after the provider order was opened
	OrderCreated OrderStatus = "created"
	// OrderPaid is the state after signature verification succeeded
	OrderPaid OrderStatus = "paid"
)

// Order records a payment intent with the provider. The purchaser contact
// fields are a snapshot taken when the order is opened; status only ever
// moves forward, created to paid, through a verified signature.
type Order struct {
	bun.BaseModel   `bun:"table:orders,alias:ord"`
	ID              uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	AccountID       uuid.UUID   `bun:"account_id,notnull,type:uuid" json:"account_id,omitempty"`
	ProviderOrderID string      `bun:"provider_order_id,notnull,unique" json:"provider_order_id,omitempty"`
	Amount          int64       `bun:"amount,notnull" json:"amount,omitempty"`
	Currency        string      `bun:"currency,notnull" json:"currency,omitempty"`
	Status          OrderStatus `bun:"status,notnull" json:"status,omitempty"`
	Name            string      `bun:"name,notnull" json:"name,omitempty"`
	Email           string      `bun:"email,notnull" json:"email,omitempty"`
	Phone           string      `bun:"phone,notnull" json:"phone,omitempty"`
	CreatedAt       *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
