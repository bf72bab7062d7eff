package session

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quest2go/cmd/account"
)

// Claims is the identity envelope carried by a session token.
type Claims struct {
	AccountID string
	Email     string
	Role      account.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec issues and verifies session tokens.
type TokenCodec interface {
	Issue(c Claims, now time.Time) (token string, exp time.Time, err error)
	Verify(token string, now time.Time) (Claims, error)
}

type jwtClaims struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
	jwt.RegisteredClaims
}

// Codec is the HS256 TokenCodec.
type Codec struct {
	issuer string
	ttl    time.Duration
	secret []byte
}

// NewCodec builds a Codec. A missing secret is accepted so the server can
// start; every Issue and Verify then fails with ErrConfig.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.TTL <= 0 {
		return nil, ErrConfig
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &Codec{
		issuer: strings.TrimSpace(cfg.Issuer),
		ttl:    cfg.TTL,
		secret: secret,
	}, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

func (c *Codec) Issue(cl Claims, now time.Time) (string, time.Time, error) {
	if len(c.secret) == 0 {
		return "", time.Time{}, ErrConfig
	}
	if cl.AccountID == "" {
		return "", time.Time{}, ErrInvalidToken
	}
	exp := now.Add(c.ttl)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		UserID:   cl.AccountID,
		Email:    cl.Email,
		UserType: string(cl.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   cl.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	// NumericDate has second precision; report what the token actually says.
	return signed, jwt.NewNumericDate(exp).Time, nil
}

func (c *Codec) Verify(raw string, now time.Time) (Claims, error) {
	if len(c.secret) == 0 {
		return Claims{}, ErrConfig
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var jc jwtClaims
	_, err := jwt.NewParser(opts...).ParseWithClaims(raw, &jc, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		// Signature is checked before claims, so an expired error implies a valid signature.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}

	if jc.UserID == "" {
		return Claims{}, ErrInvalidToken
	}
	role, ok := account.ParseRole(jc.UserType)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{
		AccountID: jc.UserID,
		Email:     jc.Email,
		Role:      role,
	}
	if jc.IssuedAt != nil {
		out.IssuedAt = jc.IssuedAt.Time
	}
	if jc.ExpiresAt != nil {
		out.ExpiresAt = jc.ExpiresAt.Time
	}
	return out, nil
}
