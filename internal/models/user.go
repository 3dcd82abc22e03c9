package models

import "time"

type KYCStatus string

const (
	KYCPending  KYCStatus = "PENDING"
	KYCVerified KYCStatus = "VERIFIED"
	KYCRejected KYCStatus = "REJECTED"
)

// User is created at onboarding and never deleted. PINHash holds the
// argon2id-encoded PIN, never the PIN itself.
type User struct {
	ID          string    `json:"id" db:"id"`
	Mobile      string    `json:"mobile" db:"mobile"`
	Name        string    `json:"name" db:"name"`
	PINHash     string    `json:"-" db:"pin_hash"`
	KYCStatus   KYCStatus `json:"kyc_status" db:"kyc_status"`
	OnboardedAt time.Time `json:"onboarded_at" db:"onboarded_at"`
}
