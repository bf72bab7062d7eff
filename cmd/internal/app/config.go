package app

import (
	"strings"
	"time"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	Env string

	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int

	// DatabaseURL empty selects the in-memory account store.
	DatabaseURL string
	DBSchema    string
	DBMaxConns  int32
	DBMinConns  int32

	// RedisURL empty disables the /api/user cache.
	RedisURL     string
	UserCacheTTL time.Duration

	// If true, /readyz returns 503 unless a database is configured and reachable.
	ReadinessRequireDB bool

	// RequireStrongSecret demands a signing secret of at least 32 bytes.
	// Production always requires it.
	RequireStrongSecret bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		Env: strings.ToLower(EnvString("Q2G_ENV", "development")),

		HTTPAddr:  EnvString("Q2G_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("Q2G_LOG_LEVEL", "info"),
		LogFormat: EnvString("Q2G_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("Q2G_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("Q2G_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("Q2G_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("Q2G_HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   EnvDuration("Q2G_HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),

		MaxHeaderBytes: EnvInt("Q2G_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("Q2G_DATABASE_URL", ""),
		DBSchema:    EnvString("Q2G_DB_SCHEMA", "quest2go"),
		DBMaxConns:  EnvInt32("Q2G_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("Q2G_DB_MIN_CONNS", 0),

		RedisURL:     EnvString("Q2G_REDIS_URL", ""),
		UserCacheTTL: EnvDuration("Q2G_USER_CACHE_TTL", 5*time.Minute),

		ReadinessRequireDB: EnvBool("Q2G_READINESS_REQUIRE_DB", false),

		RequireStrongSecret: EnvBool("Q2G_REQUIRE_STRONG_SECRET", false),
	}
}

// Production reports whether the server runs with production policy.
func (c Config) Production() bool {
	return c.Env == "production" || c.Env == "prod"
}
