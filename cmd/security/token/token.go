package token

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
)

const (
	// SecretEnvKey is the env var name for the session signing secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	SecretEnvKey = "Q2G_JWT_SECRET"

	// LegacySecretEnvKey is read when SecretEnvKey is unset.
	// #nosec G101 -- not a credential; it's an environment variable name.
	LegacySecretEnvKey = "JWT_SECRET"

	// MinStrongSecretBytes is the minimum size enforced in production.
	MinStrongSecretBytes = 32
)

func rawSecret() string {
	if v := strings.TrimSpace(os.Getenv(SecretEnvKey)); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(LegacySecretEnvKey))
}

// SecretFromEnv returns the configured secret bytes (trimmed), enforcing a minimum byte length.
// Missing/blank -> ErrSecretMissing. Too short -> ErrSecretTooShort.
func SecretFromEnv(minBytes int) ([]byte, error) {
	raw := rawSecret()
	if raw == "" {
		return nil, ErrSecretMissing
	}
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrSecretTooShort
	}
	return b, nil
}

// SecretConfigured reports whether either env key carries a non-blank value.
// It does not enforce a minimum length; use SecretFromEnv for policy checks.
func SecretConfigured() bool {
	return rawSecret() != ""
}

// Fingerprint returns a short, non-reversible identifier for secret, safe to
// log when operators need to tell deployments' keys apart.
func Fingerprint(secret []byte) string {
	if len(secret) == 0 {
		return ""
	}
	sum := sha256.Sum256(secret)
	return hex.EncodeToString(sum[:4])
}
