package models

import (
	"time"
)

// LedgerDirection is redundant with the sign of LedgerEntry.Amount and is
// stored for fast filtering and display. The two must always agree.
type LedgerDirection string

const (
	DirectionDebit  LedgerDirection = "DEBIT"
	DirectionCredit LedgerDirection = "CREDIT"
)

// Counterparty identifies the other side of a money movement.
type Counterparty struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"` // UPI ID or account number
}

// LedgerEntry is the append-only source of truth for one money movement
// against one account. Amounts are signed paise: negative for money leaving
// the account, positive for money entering. An entry is written exactly once
// by the transaction executor and never mutated or deleted afterward.
type LedgerEntry struct {
	ID            string            `json:"id" db:"id"`
	TransactionID string            `json:"transaction_id" db:"transaction_id"`
	UserID        string            `json:"user_id" db:"user_id"`
	AccountID     string            `json:"account_id" db:"account_id"`
	Amount        int64             `json:"amount" db:"amount"` // signed paise
	Direction     LedgerDirection   `json:"direction" db:"direction"`
	BalanceBefore int64             `json:"balance_before" db:"balance_before"`
	BalanceAfter  int64             `json:"balance_after" db:"balance_after"`
	PaymentRef    string            `json:"payment_ref" db:"payment_ref"`
	SettlementRef string            `json:"settlement_ref" db:"settlement_ref"`
	PaymentMethod TransactionType   `json:"payment_method" db:"payment_method"`
	Counterparty  Counterparty      `json:"counterparty" db:"counterparty"`
	Status        TransactionStatus `json:"status" db:"status"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
}
