package app

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	authapi "quest2go/cmd/internal/auth/api"
)

// pinger is satisfied by the account cache.
type pinger interface {
	Ping(ctx context.Context) error
}

type httpDeps struct {
	log   Logger
	cfg   Config
	db    *pgxpool.Pool
	cache pinger
	reg   *prometheus.Registry
	auth  *authapi.Handler
}

// knownRoutes are the metric labels for every path the server serves.
var knownRoutes = newRouteSet(
	"/healthz",
	"/readyz",
	"/metrics",
	"/api/signup",
	"/api/login",
	"/api/logout",
	"/api/user",
)

func registerHTTP(mux *http.ServeMux, d httpDeps) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.cfg.ReadinessRequireDB && d.db == nil {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}

		if d.db != nil {
			if err := PingDB(r.Context(), d.db, 2*time.Second); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				d.log.Info("readyz.db.not_ready", "err", err)
				return
			}
		}

		// The cache is optional: a down Redis degrades /api/user to the
		// database, so it is reported but does not fail readiness.
		if d.cache != nil {
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			err := d.cache.Ping(ctx)
			cancel()
			if err != nil {
				d.log.Warn("readyz.cache.degraded", "err", err)
				w.Header().Set("X-Cache-Status", "degraded")
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	if d.reg != nil {
		mux.Handle("/metrics", metricsHandler(d.reg))
	}

	if d.auth != nil {
		d.auth.Register(mux)
	}
}
