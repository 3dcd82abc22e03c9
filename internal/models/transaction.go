package models

import (
	"time"
)

type TransactionStatus string

const (
	StatusInitiated TransactionStatus = "INITIATED"
	StatusSuccess   TransactionStatus = "SUCCESS"
	StatusFailed    TransactionStatus = "FAILED"

	// Reserved for future async settlement and refund flows. No code path
	// produces them today.
	StatusProcessing TransactionStatus = "PROCESSING"
	StatusReversed   TransactionStatus = "REVERSED"
)

type TransactionType string

const (
	TypeUPI          TransactionType = "UPI"
	TypeBankTransfer TransactionType = "BANK_TRANSFER"
	TypeBillPay      TransactionType = "BILL_PAY"
	TypeRecharge     TransactionType = "RECHARGE"
	TypeSelfTransfer TransactionType = "SELF_TRANSFER"
)

// ReceiverDetails describes where the money is going. The receiver is
// external to this simulation; no ledger entry is ever written for it.
type ReceiverDetails struct {
	UPIID         string          `json:"upi_id,omitempty"`
	AccountNumber string          `json:"account_number,omitempty"`
	IFSC          string          `json:"ifsc,omitempty"`
	Name          string          `json:"name"`
	Type          TransactionType `json:"type"`
}

// Transaction is the mutable request/audit record of what the user asked
// for. It is created INITIATED and transitions to SUCCESS or FAILED exactly
// once, never reopened. A failed Transaction produces no ledger entry; a
// successful one produces exactly one debit entry on the sender's account.
type Transaction struct {
	ID              string            `json:"id" db:"id"`
	SenderAccountID string            `json:"sender_account_id" db:"sender_account_id"`
	Receiver        ReceiverDetails   `json:"receiver" db:"receiver"`
	Amount          int64             `json:"amount" db:"amount"` // paise, always positive
	Note            string            `json:"note,omitempty" db:"note"`
	Status          TransactionStatus `json:"status" db:"status"`
	ReferenceID     string            `json:"reference_id" db:"reference_id"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
}
