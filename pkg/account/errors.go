package account

import "errors"

var (
	// ErrInvalidAmount is returned for non-positive credit or debit amounts
	// and for negative overwrite balances.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInvalidUser is returned when no user ID is given.
	ErrInvalidUser = errors.New("user ID is required")
	// ErrInsufficientFunds is returned when a debit exceeds the available funds.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrWalletNotFound is returned when an operation that never creates a
	// wallet is called for a user without one.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrConcurrentUpdate is returned when a write keeps losing its version
	// check after all attempts.
	ErrConcurrentUpdate = errors.New("wallet was modified concurrently, please retry")
)
