package models

import "time"

type NotificationType string

const (
	NotifyInfo    NotificationType = "INFO"
	NotifySuccess NotificationType = "SUCCESS"
	NotifyAlert   NotificationType = "ALERT"
	NotifyError   NotificationType = "ERROR"
)

// Notification is an informational side record, not load-bearing for
// ledger correctness.
type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Type      NotificationType `json:"type" db:"type"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
