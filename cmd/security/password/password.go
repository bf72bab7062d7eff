package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hash returns a bcrypt digest of password. Each call uses a fresh salt, so
// hashing the same input twice yields different digests.
func (c Config) Hash(password string) (string, error) {
	if err := c.Validate(password); err != nil {
		return "", err
	}
	cost := c.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", ErrInvalidCost
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

// Verify reports whether password matches digest. Malformed digests and
// oversized inputs report false.
func (c Config) Verify(digest, password string) bool {
	if digest == "" || len(password) > MaxBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// Cost returns the work factor embedded in digest.
func Cost(digest string) (int, error) {
	return bcrypt.Cost([]byte(digest))
}
