package token

import (
	"errors"
	"strings"
	"testing"
)

func TestSecretFromEnv_Missing(t *testing.T) {
	t.Setenv(SecretEnvKey, "")
	t.Setenv(LegacySecretEnvKey, "  ")

	if _, err := SecretFromEnv(0); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("expected ErrSecretMissing, got %v", err)
	}
	if SecretConfigured() {
		t.Fatalf("expected not configured")
	}
}

func TestSecretFromEnv_PrefersPrimaryKey(t *testing.T) {
	t.Setenv(SecretEnvKey, " primary ")
	t.Setenv(LegacySecretEnvKey, "legacy")

	b, err := SecretFromEnv(0)
	if err != nil {
		t.Fatalf("SecretFromEnv: %v", err)
	}
	if string(b) != "primary" {
		t.Fatalf("expected trimmed primary secret, got %q", b)
	}
}

func TestSecretFromEnv_LegacyFallback(t *testing.T) {
	t.Setenv(SecretEnvKey, "")
	t.Setenv(LegacySecretEnvKey, "legacy")

	b, err := SecretFromEnv(0)
	if err != nil {
		t.Fatalf("SecretFromEnv: %v", err)
	}
	if string(b) != "legacy" {
		t.Fatalf("expected legacy secret, got %q", b)
	}
	if !SecretConfigured() {
		t.Fatalf("expected configured")
	}
}

func TestSecretFromEnv_TooShort(t *testing.T) {
	t.Setenv(SecretEnvKey, "short")

	if _, err := SecretFromEnv(MinStrongSecretBytes); !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("expected ErrSecretTooShort, got %v", err)
	}

	t.Setenv(SecretEnvKey, strings.Repeat("k", MinStrongSecretBytes))
	if _, err := SecretFromEnv(MinStrongSecretBytes); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestFingerprint(t *testing.T) {
	if Fingerprint(nil) != "" {
		t.Fatalf("expected empty fingerprint")
	}
	a := Fingerprint([]byte("a"))
	if len(a) != 8 {
		t.Fatalf("expected 8 hex chars, got %q", a)
	}
	if a == Fingerprint([]byte("b")) {
		t.Fatalf("expected distinct fingerprints")
	}
	if a != Fingerprint([]byte("a")) {
		t.Fatalf("expected stable fingerprint")
	}
}
