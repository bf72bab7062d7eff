// Package app wires the quest2go server runtime: config, logging, storage,
// the auth API and operational endpoints.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"quest2go/cmd/account"
	authapi "quest2go/cmd/internal/auth/api"
	"quest2go/cmd/internal/auth/session"
	"quest2go/cmd/internal/cache"
	"quest2go/cmd/security/password"
)

// App is the server runtime. It owns the HTTP handler and the lifecycles of
// the database pool and Redis client.
type App struct {
	cfg Config
	log Logger

	dbPool *pgxpool.Pool
	rdb    *redis.Client

	handler http.Handler
}

// New constructs a fully wired App. Without Q2G_DATABASE_URL accounts live
// in memory and vanish on restart.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	a := &App{cfg: cfg, log: log}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	var users *cache.AccountCache
	if cfg.RedisURL != "" {
		rdb, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.rdb = rdb
		users, err = cache.NewAccountCache(rdb,
			cache.WithTTL(cfg.UserCacheTTL),
			cache.WithLogger(log),
		)
		if err != nil {
			a.Close()
			return nil, err
		}
		log.Info("cache.enabled.redis", "ttl", cfg.UserCacheTTL.String())
	}

	auth, reg, err := a.newAuthHandler(store, users)
	if err != nil {
		a.Close()
		return nil, err
	}

	httpm, err := newHTTPMetrics(reg)
	if err != nil {
		a.Close()
		return nil, err
	}

	deps := httpDeps{
		log:  log,
		cfg:  cfg,
		db:   a.dbPool,
		reg:  reg,
		auth: auth,
	}
	if users != nil {
		deps.cache = users
	}

	mux := http.NewServeMux()
	registerHTTP(mux, deps)

	a.handler = WithRequestID(WithRequestLogging(WithSecurityHeaders(mux), log, httpm, knownRoutes))
	return a, nil
}

func (a *App) openStore(ctx context.Context) (account.Store, error) {
	if a.cfg.DatabaseURL == "" {
		a.log.Info("db.disabled.inmemory_store")
		return account.NewMemoryStore(), nil
	}

	pool, err := NewDBPool(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	st, err := account.NewPostgresStore(pool, account.WithSchema(a.cfg.DBSchema))
	if err != nil {
		pool.Close()
		return nil, err
	}
	a.dbPool = pool
	a.log.Info("db.enabled.postgres_store", "schema", a.cfg.DBSchema)
	return st, nil
}

func (a *App) newAuthHandler(store account.Store, users *cache.AccountCache) (*authapi.Handler, *prometheus.Registry, error) {
	pwCfg, err := password.FromEnv()
	if err != nil {
		return nil, nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}
	codec, err := session.NewCodec(sessCfg)
	if err != nil {
		return nil, nil, err
	}

	authCfg := authapi.LoadConfigFromEnv()
	// The cookie must not outlive the token it carries.
	authCfg.SessionTTL = sessCfg.TTL
	if a.cfg.Production() {
		authCfg.CookieSecure = true
	}

	reg := newRegistry()
	metrics, err := authapi.NewMetrics(reg)
	if err != nil {
		return nil, nil, err
	}

	opts := []authapi.HandlerOption{authapi.WithMetrics(metrics)}
	if users != nil {
		opts = append(opts, authapi.WithUserCache(users))
	}

	h, err := authapi.NewHandler(a.log, store, pwCfg, codec, authCfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return h, reg, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Run starts the HTTP server and blocks until ctx is cancelled or the
// server fails.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

// Serve runs the server on ln and shuts down gracefully when ctx is done.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start",
		"addr", ln.Addr().String(),
		"db_enabled", a.dbPool != nil,
		"cache_enabled", a.rdb != nil,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		a.Close()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), nonZeroDuration(a.cfg.ShutdownTimeout, 10*time.Second))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		a.Close()
		return err
	}

	a.Close()
	a.log.Info("server.stopped")
	return nil
}

// Close releases the database pool and Redis client. It is safe to call more than once.
func (a *App) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Error("cache.close.fail", "err", err)
		}
		a.rdb = nil
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.dbPool = nil
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
