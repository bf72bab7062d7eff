package authapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"quest2go/cmd/account"
	"quest2go/cmd/internal/auth/session"
)

func TestClaimsFromContext(t *testing.T) {
	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Fatalf("expected no claims on a bare context")
	}
	if _, ok := AccountIDFromContext(WithClaims(context.Background(), session.Claims{})); ok {
		t.Fatalf("expected claims without an account id to be rejected")
	}

	ctx := WithClaims(context.Background(), session.Claims{AccountID: "acc-1", Role: account.RoleResearcher})
	id, ok := AccountIDFromContext(ctx)
	if !ok || id != "acc-1" {
		t.Fatalf("expected acc-1, got %q (%v)", id, ok)
	}
}

func TestRequireSession_AttachesClaims(t *testing.T) {
	e := newTestEnv(t)

	tok, _, err := e.codec.Issue(session.Claims{AccountID: "acc-2", Email: "m@x.com", Role: account.RoleEducator}, e.clock.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var got session.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	rr := httptest.NewRecorder()
	e.h.RequireSession(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if got.AccountID != "acc-2" || got.Email != "m@x.com" || got.Role != account.RoleEducator {
		t.Fatalf("unexpected claims: %#v", got)
	}
}

func TestRequireSession_RejectsWithoutCallingNext(t *testing.T) {
	e := newTestEnv(t)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "not-a-jwt"})
	rr := httptest.NewRecorder()
	e.h.RequireSession(next).ServeHTTP(rr, req)

	if called {
		t.Fatalf("next must not run for an invalid token")
	}
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if e.counter(t, "auth.session", "rejected") != 1 {
		t.Fatalf("expected rejected session to be counted")
	}
}
