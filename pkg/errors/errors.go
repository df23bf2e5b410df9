// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Settlement engine errors
var (
	ErrInvalidDebtMatrix = errors.New("invalid debt matrix")
	ErrAmountOverflow    = errors.New("amount overflow")
	ErrEmptyChannelSet   = errors.New("party has no payment channels")
	ErrUnsettled         = errors.New("transfers do not settle all balances")

	// Intermediary configuration errors
	ErrInvalidIntermediary       = errors.New("invalid intermediary index")
	ErrNoIntermediary            = errors.New("no channel-compatible creditor and no intermediary configured")
	ErrIntermediaryMisconfigured = errors.New("intermediary cannot bridge transfer")
)

// Scenario errors
var (
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrUnknownParty    = errors.New("unknown party")
	ErrDuplicateParty  = errors.New("duplicate party")
	ErrSelfDebt        = errors.New("party cannot owe itself")
	ErrTooManyDebts    = errors.New("too many debts")
)

// Service errors
var (
	ErrPlanNotFound     = errors.New("settlement plan not found")
	ErrDuplicateRequest = errors.New("duplicate request in progress")
	ErrCacheMiss        = errors.New("cache miss")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsConfiguration reports whether err stems from a misconfigured or missing
// intermediary party.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrInvalidIntermediary) ||
		errors.Is(err, ErrNoIntermediary) ||
		errors.Is(err, ErrIntermediaryMisconfigured)
}

// IsValidation reports whether err stems from malformed caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidScenario) ||
		errors.Is(err, ErrUnknownParty) ||
		errors.Is(err, ErrDuplicateParty) ||
		errors.Is(err, ErrSelfDebt) ||
		errors.Is(err, ErrTooManyDebts) ||
		errors.Is(err, ErrInvalidDebtMatrix) ||
		errors.Is(err, ErrEmptyChannelSet)
}
