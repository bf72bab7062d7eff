package password

import "errors"

// Public, stable errors for callers.
var (
	ErrPasswordEmpty    = errors.New("password is empty")
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrInvalidCost      = errors.New("invalid bcrypt cost")
)
