package session

import "errors"

var (
	// ErrInvalidToken is returned when a token fails signature, format or claim checks.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a well-formed token is past its expiry.
	ErrExpiredToken = errors.New("token expired")

	// ErrConfig is returned for invalid configuration, including a missing secret.
	ErrConfig = errors.New("invalid config")
)
