package store

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrBillNotFound         = errors.New("bill not found")

	// ErrTransactionFinal signals an attempt to change the status of a
	// transaction that already reached SUCCESS or FAILED. Terminal
	// transactions are never reopened.
	ErrTransactionFinal = errors.New("transaction already in terminal state")

	// ErrDuplicateID signals an insert whose id collides with an existing
	// record of the same collection.
	ErrDuplicateID = errors.New("duplicate record id")
)
