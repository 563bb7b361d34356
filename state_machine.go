package resumekit

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidTransition = "INVALID_STATUS_TRANSITION"
)

// ErrInvalidTransition is returned when a requested status change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid status transition", goerrors.CategoryConflict).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeConflict)

// Statuses only move forward. Paid is terminal for both models, so a
// replayed callback can be recognized instead of double-applied.
var accountTransitions = map[AccountStatus][]AccountStatus{
	AccountPending: {AccountPaid},
	AccountPaid:    {},
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderCreated: {OrderPaid},
	OrderPaid:    {},
}

// CanTransitionAccount reports whether an account may move between statuses.
func CanTransitionAccount(from, to AccountStatus) bool {
	return canTransition(accountTransitions, from, to)
}

// CanTransitionOrder reports whether an order may move between statuses.
func CanTransitionOrder(from, to OrderStatus) bool {
	return canTransition(orderTransitions, from, to)
}

// EnsureOrderTransition returns ErrInvalidTransition when the move is not
// in the table.
func EnsureOrderTransition(from, to OrderStatus) error {
	if !canTransition(orderTransitions, from, to) {
		return goerrors.New(ErrInvalidTransition.Message, ErrInvalidTransition.Category).
			WithTextCode(ErrInvalidTransition.TextCode).
			WithCode(ErrInvalidTransition.Code).
			WithMetadata(map[string]any{"from": from, "to": to})
	}
	return nil
}

// EnsureAccountTransition returns ErrInvalidTransition when the move is not
// in the table.
func EnsureAccountTransition(from, to AccountStatus) error {
	if !canTransition(accountTransitions, from, to) {
		return goerrors.New(ErrInvalidTransition.Message, ErrInvalidTransition.Category).
			WithTextCode(ErrInvalidTransition.TextCode).
			WithCode(ErrInvalidTransition.Code).
			WithMetadata(map[string]any{"from": from, "to": to})
	}
	return nil
}

func canTransition(table map[string][]string, from, to string) bool {
	allowed, ok := table[from]
	if !ok {
		return false
	}
	for _, next := range allowed {
		if next == to {
			return true
		}
	}
	return false
}
