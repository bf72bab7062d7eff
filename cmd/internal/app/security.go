package app

import (
	"errors"
	"fmt"

	"quest2go/cmd/security/token"
)

// ValidateSecurityConfig enforces the signing secret policy at startup.
// A server without a secret would answer 500 on every signup and login, so
// it refuses to start instead. Production also requires a strong secret.
func ValidateSecurityConfig(cfg Config, log Logger) error {
	minBytes := 0
	if cfg.Production() || cfg.RequireStrongSecret {
		minBytes = token.MinStrongSecretBytes
	}

	secret, err := token.SecretFromEnv(minBytes)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrSecretMissing):
			return fmt.Errorf("security policy: %s is not set", token.SecretEnvKey)
		case errors.Is(err, token.ErrSecretTooShort):
			return fmt.Errorf("security policy: %s is too short (min %d bytes)", token.SecretEnvKey, minBytes)
		default:
			return err
		}
	}

	if log != nil {
		log.Info("security.secret.loaded",
			"fingerprint", token.Fingerprint(secret),
			"bytes", len(secret),
			"strong", len(secret) >= token.MinStrongSecretBytes,
		)
	}
	return nil
}
