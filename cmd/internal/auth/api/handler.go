package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"quest2go/cmd/account"
	"quest2go/cmd/internal/auth/session"
	"quest2go/cmd/security/password"
)

// PasswordHasher hashes and verifies credentials. password.Config implements it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(digest, plaintext string) bool
}

// UserCache serves the reduced account projection for /api/user.
type UserCache interface {
	Summary(ctx context.Context, id string, load func(context.Context, string) (account.Summary, error)) (account.Summary, error)
}

// Handler wires HTTP auth endpoints to the account store and session codec.
type Handler struct {
	log *slog.Logger
	cfg Config

	store  account.Store
	hasher PasswordHasher
	tokens session.TokenCodec

	users   UserCache
	metrics *Metrics
	now     func() time.Time

	dummyHash string
}

// HandlerOption configures optional auth handler dependencies.
type HandlerOption func(*Handler)

// WithUserCache routes /api/user lookups through c.
func WithUserCache(c UserCache) HandlerOption {
	return func(h *Handler) {
		if c != nil {
			h.users = c
		}
	}
}

// WithMetrics enables auth counters.
func WithMetrics(m *Metrics) HandlerOption {
	return func(h *Handler) {
		if m != nil {
			h.metrics = m
		}
	}
}

// WithClock overrides the time source used for token issuance and checks.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, store account.Store, hasher PasswordHasher, tokens session.TokenCodec, cfg Config, opts ...HandlerOption) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if store == nil {
		return nil, errors.New("authapi: nil account store")
	}
	if hasher == nil {
		return nil, errors.New("authapi: nil password hasher")
	}
	if tokens == nil {
		return nil, errors.New("authapi: nil token codec")
	}

	def := DefaultConfig()
	if strings.TrimSpace(cfg.CookieName) == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = def.CookiePath
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = def.SessionTTL
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}

	h := &Handler{
		log:    log,
		cfg:    cfg,
		store:  store,
		hasher: hasher,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}

	// Dummy hash for timing-resistant login checks.
	if hash, err := hasher.Hash("dummy-password-for-timing-only"); err == nil {
		h.dummyHash = hash
	}

	return h, nil
}

// ---- handlers ----

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	const op = "auth.signup"

	var req signupRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		h.auditSignupRejected(r.Context(), r, "invalid_json")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in, err := h.normalizeSignup(req)
	if err != nil {
		h.auditSignupRejected(r.Context(), r, "invalid_input")
		h.writeFailure(w, r, op, err)
		return
	}

	ctx := r.Context()
	now := h.now()

	// Advisory pre-check; the store's unique constraint is authoritative.
	if _, err := h.store.FindByEmail(ctx, in.Account.Email); err == nil {
		h.auditSignupRejected(ctx, r, "email_taken")
		writeError(w, http.StatusBadRequest, msgEmailRegistered)
		return
	} else if !account.IsNotFound(err) {
		h.writeFailure(w, r, op+".lookup", err)
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.writeFailure(w, r, op+".hash", err)
		return
	}
	in.Account.PasswordHash = hash
	in.Account.Now = now

	acc, _, err := h.store.Register(ctx, in)
	if err != nil {
		if account.IsConflict(err) {
			h.auditSignupRejected(ctx, r, "email_taken")
		}
		h.writeFailure(w, r, op+".register", err)
		return
	}

	token, _, err := h.tokens.Issue(session.Claims{
		AccountID: acc.ID,
		Email:     acc.Email,
		Role:      acc.Role,
	}, now)
	if err != nil {
		h.writeFailure(w, r, op+".issue_token", err)
		return
	}

	h.auditSignup(ctx, r, acc.ID, string(acc.Role))

	writeJSON(w, http.StatusCreated, signupResponse{
		Message: "Account created successfully",
		Token:   token,
		User:    acc.Summary(),
	})
}

func (h *Handler) normalizeSignup(req signupRequest) (account.RegisterInput, error) {
	email := account.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return account.RegisterInput{}, ValidationError{Msg: "Email and password are required"}
	}
	if account.NormalizeName(req.FirstName) == "" || account.NormalizeName(req.LastName) == "" {
		return account.RegisterInput{}, ValidationError{Msg: "First name and last name are required"}
	}
	if req.ConfirmPassword != nil && *req.ConfirmPassword != req.Password {
		return account.RegisterInput{}, ValidationError{Msg: "Passwords do not match"}
	}
	if err := passwordPolicyError(h.hasher, req.Password); err != nil {
		return account.RegisterInput{}, err
	}

	role, ok := account.ParseRole(req.UserType)
	if !ok {
		return account.RegisterInput{}, ValidationError{Msg: "User type must be Educator or Researcher"}
	}

	var profile account.Profile
	switch role {
	case account.RoleEducator:
		profile = account.EducatorProfile{
			Institution: strings.TrimSpace(req.Institution),
			YearLevel:   strings.TrimSpace(req.YearLevel),
			Course:      strings.TrimSpace(req.Course),
		}
	case account.RoleResearcher:
		profile = account.ResearcherProfile{
			Organization: strings.TrimSpace(req.Organization),
		}
	}

	return account.RegisterInput{
		Account: account.CreateAccountInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     email,
			Role:      role,
		},
		Profile: profile,
	}, nil
}

// passwordPolicyError turns policy violations into client messages. Other
// hashers skip the check and report failures from Hash instead.
func passwordPolicyError(hasher PasswordHasher, plaintext string) error {
	cfg, ok := hasher.(password.Config)
	if !ok {
		return nil
	}
	switch err := cfg.Validate(plaintext); {
	case err == nil:
		return nil
	case errors.Is(err, password.ErrPasswordEmpty):
		return ValidationError{Msg: "Email and password are required"}
	case errors.Is(err, password.ErrPasswordTooShort):
		return ValidationError{Msg: "Password is too short"}
	case errors.Is(err, password.ErrPasswordTooLong):
		return ValidationError{Msg: "Password must be at most 72 bytes"}
	default:
		return ValidationError{Msg: "Invalid password"}
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "auth.login"

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := account.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx := r.Context()
	now := h.now()

	acc, err := h.store.FindByEmail(ctx, email)
	if err != nil {
		if !account.IsNotFound(err) {
			h.writeFailure(w, r, op+".lookup", err)
			return
		}
		// Timing resistance: perform a dummy verify when the account is missing.
		if h.dummyHash != "" {
			_ = h.hasher.Verify(h.dummyHash, req.Password)
		}
		h.auditLoginFailed(ctx, r, "", "not_found")
		h.writeFailure(w, r, op, errInvalidCredentials)
		return
	}

	if !h.hasher.Verify(acc.PasswordHash, req.Password) {
		h.auditLoginFailed(ctx, r, acc.ID, "bad_password")
		h.writeFailure(w, r, op, errInvalidCredentials)
		return
	}

	profile, err := account.FindProfile(ctx, h.store, acc)
	if err != nil {
		if !account.IsNotFound(err) {
			h.writeFailure(w, r, op+".profile", err)
			return
		}
		// Accounts without a profile row still log in; the response just has no role fields.
		h.log.Warn("auth.login.profile_missing", "account_id", acc.ID)
		profile = nil
	}

	token, _, err := h.tokens.Issue(session.Claims{
		AccountID: acc.ID,
		Email:     acc.Email,
		Role:      acc.Role,
	}, now)
	if err != nil {
		h.writeFailure(w, r, op+".issue_token", err)
		return
	}

	h.setSessionCookie(w, token)
	h.auditLoginSuccess(ctx, r, acc.ID)

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		User:    toLoginUser(acc, profile),
	})
}

// handleLogout clears the cookie. Tokens are stateless, so a copy of the
// token stays valid until it expires.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.expireSessionCookie(w)
	h.auditLogout(r.Context(), r)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	const op = "auth.user"

	id, ok := AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	s, err := h.loadSummary(r.Context(), id)
	if err != nil {
		h.writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: s})
}

func (h *Handler) loadSummary(ctx context.Context, id string) (account.Summary, error) {
	load := func(ctx context.Context, id string) (account.Summary, error) {
		a, err := h.store.FindAccountByID(ctx, id)
		if err != nil {
			return account.Summary{}, err
		}
		return a.Summary(), nil
	}
	if h.users == nil {
		return load(ctx, id)
	}
	return h.users.Summary(ctx, id, load)
}
