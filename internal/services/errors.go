package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for binary checks with errors.Is. Callers can recover
// from ErrInsufficientFunds by retrying with a different amount or payee.
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAccountFrozen       = errors.New("account frozen")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrTransactionNotReady = errors.New("transaction not in INITIATED state")
)

// LedgerParityError reports a violated balance snapshot invariant:
// balanceAfter must equal balanceBefore + amount exactly. It is fatal for
// the transaction, indicates an arithmetic bug, and must never be silently
// tolerated. The offending entry is not persisted.
type LedgerParityError struct {
	TransactionID string
	BalanceBefore int64
	BalanceAfter  int64
	Amount        int64
}

func (e *LedgerParityError) Error() string {
	return fmt.Sprintf("ledger parity violated for transaction %s: before=%d after=%d amount=%d",
		e.TransactionID, e.BalanceBefore, e.BalanceAfter, e.Amount)
}
