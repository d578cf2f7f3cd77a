package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/album-catalog/internal/album"
	"github.com/nerrad567/album-catalog/internal/auth"
	"github.com/nerrad567/album-catalog/internal/events"
	"github.com/nerrad567/album-catalog/internal/infrastructure/config"
	"github.com/nerrad567/album-catalog/internal/infrastructure/database"
	"github.com/nerrad567/album-catalog/internal/infrastructure/logging"
	_ "github.com/nerrad567/album-catalog/migrations"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

var testHasher = auth.NewHasher(auth.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1})

// recorder captures published events and request metrics.
type recorder struct {
	mu       sync.Mutex
	events   []events.Event
	routes   []string
	statuses []int
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) WriteRequestMetric(_, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
	r.statuses = append(r.statuses, status)
}

func (r *recorder) eventTypes() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]events.Type, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

func (r *recorder) recorded() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

func (r *recorder) lastRoute() (string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return "", 0
	}
	return r.routes[len(r.routes)-1], r.statuses[len(r.statuses)-1]
}

type testEnv struct {
	srv    *Server
	router http.Handler
	db     *database.DB
	users  *auth.SQLiteUserRepository
	authn  *auth.Authenticator
	codec  *auth.TokenCodec
	rec    *recorder
}

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "discard"}, "test")
}

// newTestEnv builds a server over a migrated SQLite database in a temp dir.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "api-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}

	log := testLogger()
	codec, err := auth.NewTokenCodec(auth.TokenConfig{Secret: testSecret, TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}

	users := auth.NewUserRepository(db.DB)
	albums := album.NewSQLiteRepository(db.DB)
	rec := &recorder{}

	wsCfg := config.WebSocketConfig{Path: "/ws", MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}
	hub := NewHub(wsCfg, log)
	dispatcher := events.NewDispatcher()
	dispatcher.Add("websocket", hub)
	dispatcher.Add("recorder", rec)

	authn := auth.NewAuthenticator(users, testHasher, codec)

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host:     "127.0.0.1",
			Port:     0,
			Timeouts: config.APITimeoutConfig{Read: 5, Write: 5, Idle: 5},
		},
		WS:             wsCfg,
		Logger:         log,
		Authenticator:  authn,
		Resolver:       auth.NewSessionResolver(codec, users),
		Albums:         album.NewService(albums, users, dispatcher, log.Logger),
		Users:          auth.NewUserAdmin(users, dispatcher, log.Logger),
		DB:             db,
		AlbumCounter:   albums,
		UserCounter:    users,
		RequestMetrics: rec,
		Hub:            hub,
		Version:        "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	return &testEnv{
		srv:    srv,
		router: srv.Handler(),
		db:     db,
		users:  users,
		authn:  authn,
		codec:  codec,
		rec:    rec,
	}
}

// do sends a request through the router. body may be nil, a string, or a
// value to encode as JSON.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// seedUser creates a user directly in the store and returns a valid token.
func (e *testEnv) seedUser(t *testing.T, username string, role auth.Role) (*auth.User, string) {
	t.Helper()

	digest, err := testHasher.Hash("pw-" + username)
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	u := &auth.User{Username: username, PasswordHash: digest, Role: role, Enabled: true}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("creating %s: %v", username, err)
	}
	session, err := e.authn.IssueSession(u)
	if err != nil {
		t.Fatalf("issuing session: %v", err)
	}
	return u, session.Token
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, want, w.Body.String())
	}
}

func expectErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, w, status)
	resp := decodeBody[Error](t, w)
	if resp.Code != code {
		t.Errorf("error code = %q, want %q", resp.Code, code)
	}
	if resp.Status != status {
		t.Errorf("error status field = %d, want %d", resp.Status, status)
	}
}

// ─── Construction ──────────────────────────────────────────────────

func TestNew_RequiresDependencies(t *testing.T) {
	env := newTestEnv(t)
	full := Deps{
		Logger:        testLogger(),
		Authenticator: env.authn,
		Resolver:      auth.NewSessionResolver(env.codec, env.users),
		Albums:        album.NewService(album.NewSQLiteRepository(env.db.DB), env.users, nil, testLogger().Logger),
		Users:         auth.NewUserAdmin(env.users, nil, testLogger().Logger),
	}

	tests := []struct {
		name  string
		strip func(d *Deps)
	}{
		{"logger", func(d *Deps) { d.Logger = nil }},
		{"authenticator", func(d *Deps) { d.Authenticator = nil }},
		{"resolver", func(d *Deps) { d.Resolver = nil }},
		{"albums", func(d *Deps) { d.Albums = nil }},
		{"users", func(d *Deps) { d.Users = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := full
			tt.strip(&d)
			if _, err := New(d); err == nil {
				t.Errorf("New() without %s should fail", tt.name)
			}
		})
	}

	srv, err := New(full)
	if err != nil {
		t.Fatalf("New() with all deps: %v", err)
	}
	if srv.Hub() == nil {
		t.Error("server should create its own hub when none is injected")
	}
}

// ─── Health ────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/health", "", nil)
	expectStatus(t, w, http.StatusOK)

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	resp := decodeBody[map[string]any](t, w)
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v, want test", resp["version"])
	}
	if resp["database"] != "ok" {
		t.Errorf("database = %v, want ok", resp["database"])
	}
}

func TestHealth_DatabaseUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.db.Close()

	w := env.do(t, http.MethodGet, "/api/health", "", nil)
	expectStatus(t, w, http.StatusServiceUnavailable)

	resp := decodeBody[map[string]any](t, w)
	if resp["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", resp["status"])
	}
}

// ─── Middleware Tests ──────────────────────────────────────────────

func TestRequestID_Generated(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/health", "", nil)

	requestID := w.Header().Get("X-Request-ID")
	if _, err := uuid.Parse(requestID); err != nil {
		t.Errorf("X-Request-ID = %q, want a UUID: %v", requestID, err)
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestCORS_Preflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/albums", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("ACAO = %q, want %q", got, "http://localhost:3000")
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	env := newTestEnv(t)
	env.srv.cfg.CORS.AllowedOrigins = []string{"https://catalog.example"}
	router := env.srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("ACAO = %q, want empty for disallowed origin", got)
	}
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/nonexistent", "", nil)
	expectErrorCode(t, w, http.StatusNotFound, ErrCodeNotFound)
}

func TestRecovery_ReturnsInternalError(t *testing.T) {
	env := newTestEnv(t)
	h := env.srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	expectErrorCode(t, w, http.StatusInternalServerError, ErrCodeInternal)
}

func TestBodySizeLimit(t *testing.T) {
	env := newTestEnv(t)

	body := `{"username":"` + strings.Repeat("a", maxRequestBodySize) + `","password":"x"}`
	w := env.do(t, http.MethodPost, "/api/auth/register", "", body)

	expectErrorCode(t, w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge)
}

func TestRequestMetrics_UseRoutePattern(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, "carol", auth.RoleEditor)

	env.do(t, http.MethodGet, "/api/albums/42", token, nil)
	route, status := env.rec.lastRoute()
	if route != "/api/albums/{id}/" && route != "/api/albums/{id}" {
		t.Errorf("route = %q, want the {id} pattern", route)
	}
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}

	env.do(t, http.MethodGet, "/no/such/route", "", nil)
	if route, _ := env.rec.lastRoute(); route != unmatchedRoute {
		t.Errorf("route = %q, want %q", route, unmatchedRoute)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer ", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, ok := bearerToken(req)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

// ─── Lifecycle ─────────────────────────────────────────────────────

func TestServer_StartAndClose(t *testing.T) {
	env := newTestEnv(t)

	if err := env.srv.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck before Start should fail")
	}

	if err := env.srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	resp, err := http.Get("http://" + env.srv.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	if err := env.srv.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck after Start: %v", err)
	}
	if err := env.srv.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestServer_CloseWithoutStart(t *testing.T) {
	env := newTestEnv(t)
	if err := env.srv.Close(); err != nil {
		t.Errorf("Close() before Start = %v, want nil", err)
	}
}
