package password

import "unicode/utf8"

// Validate checks password policy. It does not mutate input.
func (c Config) Validate(password string) error {
	if password == "" {
		return ErrPasswordEmpty
	}
	if utf8.RuneCountInString(password) < c.Policy.MinLength {
		return ErrPasswordTooShort
	}
	maxBytes := c.Policy.MaxBytes
	if maxBytes <= 0 || maxBytes > MaxBytes {
		maxBytes = MaxBytes
	}
	// bcrypt limits bytes, not runes.
	if len(password) > maxBytes {
		return ErrPasswordTooLong
	}
	return nil
}
