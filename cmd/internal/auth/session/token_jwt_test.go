package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quest2go/cmd/account"
)

func newTestCodec(t *testing.T, secret string) *Codec {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Secret = []byte(secret)
	c, err := NewCodec(cfg)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func testClaims() Claims {
	return Claims{AccountID: "01J0000000000000000000000A", Email: "a@x.com", Role: account.RoleEducator}
}

func TestCodec_IssueVerify_RoundTrip(t *testing.T) {
	c := newTestCodec(t, "secret")
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tok, exp, err := c.Issue(testClaims(), now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("exp mismatch: %v", exp)
	}

	got, err := c.Verify(tok, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	want := testClaims()
	if got.AccountID != want.AccountID || got.Email != want.Email || got.Role != want.Role {
		t.Fatalf("claims mismatch: %#v", got)
	}
	if !got.ExpiresAt.Equal(exp) || !got.IssuedAt.Equal(now) {
		t.Fatalf("time claims mismatch: %#v", got)
	}
}

func TestCodec_ExpiryBoundary(t *testing.T) {
	c := newTestCodec(t, "secret")
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tok, _, err := c.Issue(testClaims(), now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := c.Verify(tok, now.Add(23*time.Hour+59*time.Minute)); err != nil {
		t.Fatalf("expected valid at 23h59m, got %v", err)
	}
	if _, err := c.Verify(tok, now.Add(24*time.Hour+time.Minute)); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken at 24h01m, got %v", err)
	}
}

func TestCodec_TamperedToken(t *testing.T) {
	c := newTestCodec(t, "secret")
	now := time.Now()

	tok, _, err := c.Issue(testClaims(), now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments")
	}
	// Swap the payload for one claiming a different account.
	other, _, err := c.Issue(Claims{AccountID: "someone-else", Role: account.RoleResearcher}, now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	forged := parts[0] + "." + strings.Split(other, ".")[1] + "." + parts[2]

	if _, err := c.Verify(forged, now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := c.Verify("not.a.token", now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
	if _, err := c.Verify("", now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty, got %v", err)
	}
}

func TestCodec_WrongSecret(t *testing.T) {
	now := time.Now()
	tok, _, err := newTestCodec(t, "secret-a").Issue(testClaims(), now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := newTestCodec(t, "secret-b").Verify(tok, now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCodec_ExpiredWithWrongSecretIsInvalid(t *testing.T) {
	now := time.Now()
	tok, _, err := newTestCodec(t, "secret-a").Issue(testClaims(), now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, err = newTestCodec(t, "secret-b").Verify(tok, now.Add(48*time.Hour))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCodec_RejectsOtherAlgorithms(t *testing.T) {
	c := newTestCodec(t, "secret")
	now := time.Now()

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwtClaims{
		UserID:   "x",
		UserType: string(account.RoleEducator),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "quest2go",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := c.Verify(raw, now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwtClaims{
		UserID:   "x",
		UserType: string(account.RoleEducator),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "quest2go",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	raw, err = hs512.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign hs512: %v", err)
	}
	if _, err := c.Verify(raw, now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS512, got %v", err)
	}
}

func TestCodec_RequiresExpiry(t *testing.T) {
	c := newTestCodec(t, "secret")

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		UserID:           "x",
		UserType:         string(account.RoleEducator),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "quest2go"},
	})
	raw, err := tok.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := c.Verify(raw, time.Now()); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCodec_EmptySecret(t *testing.T) {
	c := newTestCodec(t, "")

	if _, _, err := c.Issue(testClaims(), time.Now()); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig from Issue, got %v", err)
	}
	if _, err := c.Verify("a.b.c", time.Now()); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig from Verify, got %v", err)
	}
}

func TestNewCodec_RejectsNonPositiveTTL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = 0
	if _, err := NewCodec(cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
