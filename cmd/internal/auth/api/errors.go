package authapi

import (
	"errors"
	"net/http"

	"quest2go/cmd/account"
	"quest2go/cmd/internal/auth/session"
)

// Client-facing messages. Tests and the frontend match on these strings.
const (
	msgInternal           = "An error occurred while processing your request"
	msgInvalidCredentials = "Invalid email or password"
	msgUnauthorized       = "Unauthorized"
	msgUserNotFound       = "User not found"
	msgEmailRegistered    = "Email already registered"
	msgNotFound           = "Not found"
)

// ValidationError is a 400 with a client-safe message.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

// errInvalidCredentials covers both unknown email and wrong password, so
// the response does not reveal which accounts exist.
var errInvalidCredentials = errors.New("invalid credentials")

// writeFailure maps err onto the response taxonomy. Anything unclassified
// is logged with op and answered with a generic 500.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Msg)
	case errors.Is(err, errInvalidCredentials):
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, session.ErrInvalidToken), errors.Is(err, session.ErrExpiredToken):
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
	case account.IsConflict(err):
		var ce account.ConflictError
		if errors.As(err, &ce) && ce.Field == "email" {
			writeError(w, http.StatusBadRequest, msgEmailRegistered)
			return
		}
		writeError(w, http.StatusBadRequest, "Account already exists")
	case account.IsNotFound(err):
		writeError(w, http.StatusNotFound, msgUserNotFound)
	default:
		attrs := []any{"err", err}
		if r != nil {
			attrs = append(attrs, "path", r.URL.Path, "request_id", r.Header.Get("X-Request-ID"))
		}
		if errors.Is(err, session.ErrConfig) {
			h.log.Error(op+".config", attrs...)
		} else {
			h.log.Error(op+".fail", attrs...)
		}
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
