package authapi

import (
	"context"
	"errors"
	"net/http"

	"quest2go/cmd/internal/auth/session"
)

type ctxKey int

const claimsKey ctxKey = iota

// RequireSession verifies the session cookie before calling next. Missing,
// invalid and expired tokens all answer 401.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := h.sessionTokenFromCookie(r)
		if !ok {
			h.auditSessionRejected(r.Context(), r, "missing")
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		claims, err := h.tokens.Verify(raw, h.now())
		if err != nil {
			switch {
			case errors.Is(err, session.ErrExpiredToken):
				h.auditSessionRejected(r.Context(), r, "expired")
			case errors.Is(err, session.ErrInvalidToken):
				h.auditSessionRejected(r.Context(), r, "invalid")
			}
			h.writeFailure(w, r, "auth.session", err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// WithClaims returns a copy of ctx carrying verified session claims.
func WithClaims(ctx context.Context, c session.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext returns the claims attached by RequireSession.
func ClaimsFromContext(ctx context.Context) (session.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(session.Claims)
	return c, ok && c.AccountID != ""
}

// AccountIDFromContext returns the authenticated account id.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return c.AccountID, true
}
