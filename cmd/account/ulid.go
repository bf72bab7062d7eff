package account

import (
	"time"

	"quest2go/cmd/account/ids"
)

// NewID returns a new account id.
func NewID(now time.Time) (string, error) {
	return ids.NewULID(now)
}
