package services

import (
	crand "crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// IDSource supplies record ids and the two correlation references carried
// by every ledger entry. It is an injected capability so tests can use a
// deterministic sequence instead of randomness.
type IDSource interface {
	// NewID returns a unique record id.
	NewID() string
	// PaymentRef returns a short customer-facing payment reference.
	PaymentRef() string
	// SettlementRef returns a longer settlement correlation token.
	SettlementRef() string
}

// RandomIDSource generates UUIDs for record ids and settlement references,
// and REF-prefixed random digit tokens for payment references.
type RandomIDSource struct{}

func NewRandomIDSource() *RandomIDSource {
	return &RandomIDSource{}
}

func (RandomIDSource) NewID() string {
	return uuid.NewString()
}

func (RandomIDSource) PaymentRef() string {
	return "REF" + randomDigits(9)
}

func (RandomIDSource) SettlementRef() string {
	return uuid.NewString()
}

func randomDigits(n int) string {
	const digits = "0123456789"
	b := make([]byte, n)
	for i := range b {
		idx, err := crand.Int(crand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			panic(fmt.Sprintf("read random: %v", err))
		}
		b[i] = digits[idx.Int64()]
	}
	return string(b)
}
