package models

import "time"

type BillStatus string

const (
	BillPaid    BillStatus = "PAID"
	BillDue     BillStatus = "DUE"
	BillOverdue BillStatus = "OVERDUE"
)

type Bill struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"user_id" db:"user_id"`
	BillerName string     `json:"biller_name" db:"biller_name"`
	Category   string     `json:"category" db:"category"`
	Amount     int64      `json:"amount" db:"amount"` // paise
	DueDate    time.Time  `json:"due_date" db:"due_date"`
	Status     BillStatus `json:"status" db:"status"`
}
