package authapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// Audit lines are structured log records plus a counter increment. There
// is no audit table; sessions are stateless.

func (h *Handler) auditSignup(ctx context.Context, r *http.Request, accountID, role string) {
	h.audit(ctx, r, "auth.signup", "success", slog.String("account_id", accountID), slog.String("user_type", role))
}

func (h *Handler) auditSignupRejected(ctx context.Context, r *http.Request, reason string) {
	h.audit(ctx, r, "auth.signup", "rejected", slog.String("reason", reason))
}

func (h *Handler) auditLoginSuccess(ctx context.Context, r *http.Request, accountID string) {
	h.audit(ctx, r, "auth.login", "success", slog.String("account_id", accountID))
}

func (h *Handler) auditLoginFailed(ctx context.Context, r *http.Request, accountID, reason string) {
	attrs := []slog.Attr{slog.String("reason", reason)}
	if accountID != "" {
		attrs = append(attrs, slog.String("account_id", accountID))
	}
	h.audit(ctx, r, "auth.login", "failed", attrs...)
}

func (h *Handler) auditLogout(ctx context.Context, r *http.Request) {
	h.audit(ctx, r, "auth.logout", "success")
}

func (h *Handler) auditSessionRejected(ctx context.Context, r *http.Request, reason string) {
	h.audit(ctx, r, "auth.session", "rejected", slog.String("reason", reason))
}

func (h *Handler) audit(ctx context.Context, r *http.Request, event, outcome string, attrs ...slog.Attr) {
	if h == nil {
		return
	}
	h.metrics.observe(event, outcome)

	event = strings.TrimSpace(event)
	if event == "" || h.log == nil {
		return
	}

	all := make([]slog.Attr, 0, len(attrs)+4)
	all = append(all, slog.String("event", event), slog.String("outcome", outcome))
	if r != nil {
		if ip := clientIP(r, h.cfg.TrustProxy); ip != nil {
			all = append(all, slog.String("ip", ip.String()))
		}
		if ua := strings.TrimSpace(r.UserAgent()); ua != "" {
			all = append(all, slog.String("user_agent", ua))
		}
	}
	all = append(all, attrs...)

	level := slog.LevelInfo
	if outcome != "success" {
		level = slog.LevelWarn
	}
	h.log.LogAttrs(ctx, level, event+"."+outcome, all...)
}

func clientIP(r *http.Request, trustProxy bool) net.IP {
	if trustProxy {
		if ip := parseForwardedIP(r.Header.Get("X-Forwarded-For")); ip != nil {
			return ip
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
	}
	return nil
}

func parseForwardedIP(raw string) net.IP {
	for _, p := range strings.Split(raw, ",") {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			return ip
		}
	}
	return nil
}
