package password

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MaxBytes is the longest input bcrypt accepts. Longer passwords are
// rejected rather than silently truncated.
const MaxBytes = 72

// DefaultCost is the work factor used for new digests.
const DefaultCost = 10

// Policy controls which plaintexts Hash accepts.
type Policy struct {
	MinLength int // runes
	MaxBytes  int
}

// Config is the single configuration surface for this package.
type Config struct {
	Cost   int
	Policy Policy
}

func DefaultConfig() Config {
	return Config{
		Cost: DefaultCost,
		Policy: Policy{
			MinLength: 1,
			MaxBytes:  MaxBytes,
		},
	}
}

// FromEnv loads config from environment variables.
//
// Env surface:
// - Q2G_BCRYPT_COST (bcrypt.MinCost..bcrypt.MaxCost)
// - Q2G_PASSWORD_MIN_LEN
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("Q2G_BCRYPT_COST"); ok {
		n, err := atoiInRange(v, bcrypt.MinCost, bcrypt.MaxCost)
		if err != nil {
			return Config{}, fmt.Errorf("Q2G_BCRYPT_COST: %w", err)
		}
		cfg.Cost = n
	}

	if v, ok := os.LookupEnv("Q2G_PASSWORD_MIN_LEN"); ok {
		n, err := atoiInRange(v, 1, MaxBytes)
		if err != nil {
			return Config{}, fmt.Errorf("Q2G_PASSWORD_MIN_LEN: %w", err)
		}
		cfg.Policy.MinLength = n
	}

	return cfg, nil
}

func atoiInRange(s string, minVal, maxVal int) (int, error) {
	i64, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}
	i := int(i64)
	if i < minVal || i > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return i, nil
}
