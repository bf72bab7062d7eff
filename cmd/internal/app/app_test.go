package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func testLogger() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("Q2G_JWT_SECRET", strings.Repeat("s", 32))
	t.Setenv("Q2G_BCRYPT_COST", "4")
	t.Setenv("Q2G_AUTH_SESSION_TTL", "")
	t.Setenv("Q2G_AUTH_COOKIE_SECURE", "")
	t.Setenv("Q2G_ENV", "")
}

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, *http.Client) {
	t.Helper()
	setTestEnv(t)

	a, err := New(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return srv, &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func postJSON(t *testing.T, c *http.Client, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := c.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func signupAndLogin(t *testing.T, srv *httptest.Server, c *http.Client) string {
	t.Helper()

	resp := postJSON(t, c, srv.URL+"/api/signup", map[string]string{
		"firstName":    "A",
		"lastName":     "B",
		"email":        "a@x.com",
		"password":     "p1",
		"userType":     "Researcher",
		"organization": "Org",
	})
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", resp.StatusCode, body)
	}
	var sr struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal([]byte(body), &sr); err != nil || sr.User.ID == "" {
		t.Fatalf("signup body %q: %v", body, err)
	}

	resp = postJSON(t, c, srv.URL+"/api/login", map[string]string{"email": "a@x.com", "password": "p1"})
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.StatusCode, body)
	}
	return sr.User.ID
}

func TestApp_AuthFlow_InMemory(t *testing.T) {
	srv, c := newTestServer(t, Config{Env: "development"})

	signupAndLogin(t, srv, c)

	resp, err := c.Get(srv.URL + "/api/user")
	if err != nil {
		t.Fatalf("GET /api/user: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"email":"a@x.com"`) {
		t.Fatalf("expected user, got %d: %s", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID on response")
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("missing security headers: %q", got)
	}

	resp = postJSON(t, c, srv.URL+"/api/logout", map[string]string{})
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: %d %s", resp.StatusCode, body)
	}

	resp, err = c.Get(srv.URL + "/api/user")
	if err != nil {
		t.Fatalf("GET /api/user: %v", err)
	}
	if body := readBody(t, resp); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d: %s", resp.StatusCode, body)
	}
}

func TestApp_OperationalEndpoints(t *testing.T) {
	srv, c := newTestServer(t, Config{Env: "development"})

	for path, want := range map[string]string{"/healthz": "ok", "/readyz": "ready"} {
		resp, err := c.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		body := readBody(t, resp)
		if resp.StatusCode != http.StatusOK || strings.TrimSpace(body) != want {
			t.Fatalf("%s: got %d %q", path, resp.StatusCode, body)
		}
	}

	signupAndLogin(t, srv, c)

	resp, err := c.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body := readBody(t, resp)
	for _, want := range []string{
		`quest2go_auth_events_total{event="auth.signup",outcome="success"} 1`,
		`quest2go_auth_events_total{event="auth.login",outcome="success"} 1`,
		`quest2go_http_requests_total{class="2xx",method="POST",route="/api/login"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}

func TestApp_ReadinessRequiresDB(t *testing.T) {
	srv, c := newTestServer(t, Config{Env: "development", ReadinessRequireDB: true})

	resp, err := c.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz: %v", err)
	}
	if body := readBody(t, resp); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", resp.StatusCode, body)
	}
}

func TestApp_UserCacheWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	srv, c := newTestServer(t, Config{
		Env:          "development",
		RedisURL:     "redis://" + mr.Addr(),
		UserCacheTTL: time.Minute,
	})

	id := signupAndLogin(t, srv, c)

	resp, err := c.Get(srv.URL + "/api/user")
	if err != nil {
		t.Fatalf("GET /api/user: %v", err)
	}
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	key := "q2g:account:summary:" + id
	if !mr.Exists(key) {
		t.Fatalf("expected %s to be cached; keys=%v", key, mr.Keys())
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	// A dead Redis degrades to the store instead of failing the request.
	mr.Close()
	resp, err = c.Get(srv.URL + "/api/user")
	if err != nil {
		t.Fatalf("GET /api/user: %v", err)
	}
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with redis down, got %d: %s", resp.StatusCode, body)
	}
}

func TestNew_BadRedisURL(t *testing.T) {
	setTestEnv(t)

	if _, err := New(context.Background(), Config{RedisURL: "not-a-url://"}, testLogger()); err == nil {
		t.Fatalf("expected error for bad redis url")
	}
}

func TestApp_ServeShutsDownOnCancel(t *testing.T) {
	setTestEnv(t)

	a, err := New(context.Background(), Config{Env: "development", ShutdownTimeout: 2 * time.Second}, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not come up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return after cancel")
	}
}
