package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls auth API behavior and cookie defaults.
type Config struct {
	CookieName     string
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite

	// SessionTTL is the cookie lifetime. It should match the token TTL.
	SessionTTL time.Duration

	TrustProxy   bool
	MaxBodyBytes int64
}

// DefaultConfig returns the development defaults.
func DefaultConfig() Config {
	return Config{
		CookieName:     "token",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteStrictMode,
		SessionTTL:     24 * time.Hour,
		MaxBodyBytes:   1 << 20, // 1 MiB
	}
}

// LoadConfigFromEnv loads auth config from environment variables with safe defaults.
// Secure cookies default to on when Q2G_ENV is "production".
func LoadConfigFromEnv() Config {
	def := DefaultConfig()
	production := strings.EqualFold(strings.TrimSpace(os.Getenv("Q2G_ENV")), "production")

	cfg := Config{
		CookieName:     envString("Q2G_AUTH_COOKIE_NAME", def.CookieName),
		CookiePath:     envString("Q2G_AUTH_COOKIE_PATH", def.CookiePath),
		CookieDomain:   strings.TrimSpace(os.Getenv("Q2G_AUTH_COOKIE_DOMAIN")),
		CookieSecure:   envBool("Q2G_AUTH_COOKIE_SECURE", production),
		CookieSameSite: parseSameSite(envString("Q2G_AUTH_COOKIE_SAMESITE", "strict")),
		SessionTTL:     envDuration("Q2G_AUTH_SESSION_TTL", def.SessionTTL),
		TrustProxy:     envBool("Q2G_AUTH_TRUST_PROXY", false),
		MaxBodyBytes:   envInt64("Q2G_AUTH_MAX_BODY_BYTES", def.MaxBodyBytes),
	}

	// Browsers drop SameSite=None cookies without Secure.
	if cfg.CookieSameSite == http.SameSiteNoneMode {
		cfg.CookieSecure = true
	}
	return cfg
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	case "default":
		return http.SameSiteDefaultMode
	default:
		return http.SameSiteStrictMode
	}
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
