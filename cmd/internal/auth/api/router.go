package authapi

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5"
)

// allowedMethods is advertised on every 405.
const allowedMethods = "POST, GET"

// Routes returns the /api router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(h.recoverer)

	r.NotFound(h.handleNotFound)
	r.MethodNotAllowed(h.handleMethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", h.handleSignup)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.With(h.RequireSession).Get("/user", h.handleGetUser)
	})

	return r
}

// Register wires the auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.Handle("/api/", h.Routes())
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", allowedMethods)
	writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s Not Allowed", r.Method))
}

// handleNotFound answers 405 for any method the API never serves, so the
// Allow contract holds on unknown paths too.
func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
		writeError(w, http.StatusNotFound, msgNotFound)
	default:
		h.handleMethodNotAllowed(w, r)
	}
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			h.log.Error("auth.panic",
				"panic", fmt.Sprint(rec),
				"path", r.URL.Path,
				"stack", strings.TrimSpace(string(debug.Stack())),
			)
			writeError(w, http.StatusInternalServerError, msgInternal)
		}()
		next.ServeHTTP(w, r)
	})
}
