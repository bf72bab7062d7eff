package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{
		"Q2G_ENV", "Q2G_HTTP_ADDR", "Q2G_LOG_FORMAT", "Q2G_DATABASE_URL",
		"Q2G_DB_SCHEMA", "Q2G_REDIS_URL", "Q2G_USER_CACHE_TTL", "Q2G_DB_MAX_CONNS",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	if cfg.HTTPAddr != "0.0.0.0:8080" || cfg.LogFormat != "json" || cfg.Env != "development" {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
	if cfg.DatabaseURL != "" || cfg.RedisURL != "" || cfg.DBSchema != "quest2go" {
		t.Fatalf("unexpected storage defaults: %#v", cfg)
	}
	if cfg.UserCacheTTL != 5*time.Minute || cfg.DBMaxConns != 10 {
		t.Fatalf("unexpected tuning defaults: %#v", cfg)
	}
	if cfg.Production() {
		t.Fatalf("development must not be production")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("Q2G_ENV", "Production")
	t.Setenv("Q2G_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("Q2G_USER_CACHE_TTL", "30s")
	t.Setenv("Q2G_DB_MAX_CONNS", "-3")
	t.Setenv("Q2G_READINESS_REQUIRE_DB", "true")

	cfg := LoadConfig()
	if !cfg.Production() {
		t.Fatalf("expected production")
	}
	if cfg.HTTPAddr != "127.0.0.1:9000" || cfg.UserCacheTTL != 30*time.Second || !cfg.ReadinessRequireDB {
		t.Fatalf("overrides not applied: %#v", cfg)
	}
	if cfg.DBMaxConns != 10 {
		t.Fatalf("negative max conns must fall back, got %d", cfg.DBMaxConns)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("Q2G_DOTENV_PROBE=from-file\nQ2G_DOTENV_KEEP=from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("Q2G_DOTENV_KEEP", "from-env")
	t.Setenv("Q2G_DOTENV_PROBE", "")
	if err := os.Unsetenv("Q2G_DOTENV_PROBE"); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("Q2G_DOTENV_PROBE"); got != "from-file" {
		t.Fatalf("expected file value, got %q", got)
	}
	if got := os.Getenv("Q2G_DOTENV_KEEP"); got != "from-env" {
		t.Fatalf("existing env must win, got %q", got)
	}
}
