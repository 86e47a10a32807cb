package account

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultPINCost is the bcrypt work factor used when none is configured.
	DefaultPINCost = 10

	// MinPINLength is the shortest accepted PIN.
	MinPINLength = 4
)

// PINHasher produces and checks one-way hashes of login PINs. The work
// factor is tunable so operators can raise it as hardware improves.
type PINHasher struct {
	cost int
}

// NewPINHasher builds a hasher with the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to DefaultPINCost.
func NewPINHasher(cost int) PINHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPINCost
	}
	return PINHasher{cost: cost}
}

// Hash salts and hashes a plain PIN for storage.
func (h PINHasher) Hash(pin string) ([]byte, error) {
	if len(pin) < MinPINLength {
		return nil, fmt.Errorf("pin must be at least %d digits", MinPINLength)
	}
	return bcrypt.GenerateFromPassword([]byte(pin), h.cost)
}

// Verify reports whether pin matches hash. bcrypt performs the comparison
// in constant time with respect to the plaintext.
func (h PINHasher) Verify(pin string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(pin)) == nil
}
