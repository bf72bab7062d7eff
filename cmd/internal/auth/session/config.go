package session

import (
	"errors"
	"os"
	"strings"
	"time"

	"quest2go/cmd/security/token"
)

// Config defines the runtime configuration for session tokens.
type Config struct {
	// Issuer is the value set in the "iss" claim. Empty disables the claim.
	Issuer string

	// TTL is the token lifetime. Expiry is checked with no leeway.
	TTL time.Duration

	// Secret is the HMAC key. An empty secret makes Issue fail with ErrConfig.
	Secret []byte
}

// DefaultConfig returns the baseline without a secret.
func DefaultConfig() Config {
	return Config{
		Issuer: "quest2go",
		TTL:    24 * time.Hour,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Optional:
//   - Q2G_JWT_SECRET (or JWT_SECRET); see package token
//   - Q2G_AUTH_ISSUER
//   - Q2G_AUTH_SESSION_TTL (Go duration string)
//
// A missing secret is not an error here: the server still starts and
// session operations fail with ErrConfig.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("Q2G_AUTH_ISSUER"); ok {
		cfg.Issuer = strings.TrimSpace(v)
	}

	if v := strings.TrimSpace(os.Getenv("Q2G_AUTH_SESSION_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}

	secret, err := token.SecretFromEnv(0)
	switch {
	case err == nil:
		cfg.Secret = secret
	case errors.Is(err, token.ErrSecretMissing):
	default:
		return Config{}, ErrConfig
	}

	return cfg, nil
}
