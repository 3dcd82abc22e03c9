package models

type AccountType string

const (
	AccountSavings    AccountType = "SAVINGS"
	AccountWallet     AccountType = "WALLET"
	AccountInvestment AccountType = "INVESTMENT"
)

// VirtualAccount models exactly one active account per user; multi-account
// support is deliberately out of scope. IsFrozen is the only mutable field
// and a frozen account rejects all debits. Balance is never stored here: it
// is derived from the ledger on every read.
type VirtualAccount struct {
	ID            string      `json:"id" db:"id"`
	UserID        string      `json:"user_id" db:"user_id"`
	AccountNumber string      `json:"account_number" db:"account_number"`
	IFSC          string      `json:"ifsc" db:"ifsc"`
	Type          AccountType `json:"type" db:"type"`
	Label         string      `json:"label" db:"label"`
	IsFrozen      bool        `json:"is_frozen" db:"is_frozen"`
}
