package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the ledger wraps exactly one of them.
var (
	// ErrInvalidArgument indicates malformed or out-of-domain input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInsufficientFunds indicates that the amount exceeds the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNotFound indicates that the referenced customer or account does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStore indicates that the store failed to read or to commit.
	ErrStore = errors.New("store failure")
)

var (
	// ErrInvalidAmount indicates a non-positive amount.
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	// ErrSameAccountTransfer indicates identical transfer endpoints.
	ErrSameAccountTransfer = fmt.Errorf("%w: source and destination accounts must differ", ErrInvalidArgument)
	// ErrNegativeInitialDeposit indicates a negative opening deposit.
	ErrNegativeInitialDeposit = fmt.Errorf("%w: initial deposit cannot be negative", ErrInvalidArgument)
	// ErrInvalidAccountKind indicates an unknown account kind.
	ErrInvalidAccountKind = fmt.Errorf("%w: unknown account kind", ErrInvalidArgument)
	// ErrInvalidOperationMode indicates an unknown operation mode.
	ErrInvalidOperationMode = fmt.Errorf("%w: unknown operation mode", ErrInvalidArgument)
	// ErrInvalidCustomerClass indicates an unknown customer class.
	ErrInvalidCustomerClass = fmt.Errorf("%w: unknown customer class", ErrInvalidArgument)
	// ErrInvalidPeriod indicates a history period that ends before it starts.
	ErrInvalidPeriod = fmt.Errorf("%w: period end is before its start", ErrInvalidArgument)
	// ErrInvalidCustomer indicates that required customer fields are missing.
	ErrInvalidCustomer = fmt.Errorf("%w: full name, birth date and mobile number are required", ErrInvalidArgument)

	// ErrBalanceConflict indicates that a commit expected a balance the account no longer holds.
	// It is never retried.
	ErrBalanceConflict = fmt.Errorf("%w: account balance changed since it was read", ErrStore)

	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	// ErrCustomerNotFound indicates that the customer is not found.
	ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)
)

// Kind returns the name of the error kind err belongs to.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidArgument):
		return "InvalidArgument"
	case errors.Is(err, ErrInsufficientFunds):
		return "InsufficientFunds"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	default:
		return "StoreError"
	}
}
