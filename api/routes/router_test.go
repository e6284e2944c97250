package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/osteovet/clinic-backend/internal/animals"
	"github.com/osteovet/clinic-backend/internal/appointments"
	"github.com/osteovet/clinic-backend/internal/auditlog"
	"github.com/osteovet/clinic-backend/internal/auth"
	"github.com/osteovet/clinic-backend/internal/blog"
	"github.com/osteovet/clinic-backend/internal/booking"
	"github.com/osteovet/clinic-backend/internal/catalog"
	"github.com/osteovet/clinic-backend/internal/reminders"
	"github.com/osteovet/clinic-backend/internal/todos"
	"github.com/osteovet/clinic-backend/internal/treatmentnotes"
	"github.com/osteovet/clinic-backend/internal/users"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/config"
	"github.com/osteovet/clinic-backend/pkg/db"
	"github.com/osteovet/clinic-backend/pkg/db/dbtest"
	"github.com/osteovet/clinic-backend/pkg/enums"
	"github.com/osteovet/clinic-backend/pkg/logger"
	"github.com/osteovet/clinic-backend/pkg/metrics"
)

type memoryRedis struct {
	mu     sync.Mutex
	values map[string]string
	counts map[string]int64
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: map[string]string{}, counts: map[string]int64{}}
}

func (m *memoryRedis) Ping(context.Context) error { return nil }

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	switch v := value.(type) {
	case string:
		m.values[key] = v
	case []byte:
		m.values[key] = string(v)
	}
	return true, nil
}

func (m *memoryRedis) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[scope]++
	return m.counts[scope] <= limit, m.counts[scope], nil
}

func (m *memoryRedis) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

func (stubSessions) Open(context.Context, uuid.UUID) (string, error) { return uuid.NewString(), nil }

func (stubSessions) Rotate(context.Context, string, uuid.UUID) (string, error) {
	return uuid.NewString(), nil
}

func (stubSessions) Revoke(context.Context, string) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:              "0123456789abcdef0123456789abcdef",
			Issuer:              "clinic-test",
			ExpirationMinutes:   15,
			RefreshTokenTTLDays: 7,
		},
		Password: config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32, MinLength: 8},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow: time.Minute, LoginEmailLimit: 5, LoginIPLimit: 20,
			RegisterWindow: time.Minute, RegisterEmailLimit: 3, RegisterIPLimit: 20,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, client *db.Client) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("build service: %v", err)
		}
	}
	userService, err := users.NewService(users.ServiceParams{DB: client})
	must(err)
	authService, err := auth.NewService(auth.ServiceParams{
		DB:             client,
		SessionManager: stubSessions{},
		Users:          userService,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	must(err)
	animalService, err := animals.NewService(client)
	must(err)
	noteService, err := treatmentnotes.NewService(client)
	must(err)
	catalogService, err := catalog.NewService(client)
	must(err)
	appointmentService, err := appointments.NewService(client)
	must(err)
	bookingService, err := booking.NewService(booking.ServiceParams{DB: client, BookingOffsets: []time.Duration{24 * time.Hour}})
	must(err)
	reminderService, err := reminders.NewService(reminders.ServiceParams{DB: client, BookingOffsets: []time.Duration{24 * time.Hour}})
	must(err)
	todoService, err := todos.NewService(client)
	must(err)
	blogService, err := blog.NewService(client)
	must(err)
	auditService, err := auditlog.NewService(auditlog.NewRepository(client.DB()))
	must(err)

	registry := prometheus.NewRegistry()
	return NewRouter(Params{
		Config:         cfg,
		Logger:         logg,
		DB:             client,
		Redis:          newMemoryRedis(),
		Sessions:       stubSessions{},
		Accounts:       users.NewRepository(client.DB()),
		Gatherer:       registry,
		Metrics:        metrics.NewHTTPMetrics(registry),
		Auth:           authService,
		Users:          userService,
		Animals:        animalService,
		TreatmentNotes: noteService,
		Catalog:        catalogService,
		Appointments:   appointmentService,
		Booking:        bookingService,
		Reminders:      reminderService,
		Todos:          todoService,
		Blog:           blogService,
		AuditLog:       auditService,
	})
}

func buildToken(t *testing.T, cfg *config.Config, userID uuid.UUID) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.TokenPayload{UserID: userID, SessionID: uuid.NewString()})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func do(router http.Handler, method, path, token string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "203.0.113.7:4444"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, dbtest.Open(t))

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		if resp := do(router, http.MethodGet, path, "", ""); resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, dbtest.Open(t))

	if resp := do(router, http.MethodGet, "/api/v1/services", "", ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for services got %d", resp.Code)
	}
	if resp := do(router, http.MethodGet, "/api/v1/blog", "", ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for blog got %d", resp.Code)
	}
	if resp := do(router, http.MethodGet, "/api/v1/blog/missing-post", "", ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown slug got %d", resp.Code)
	}
}

func TestProtectedRoutesRejectMissingJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, dbtest.Open(t))

	for _, path := range []string{"/api/v1/animals", "/api/v1/auth/me", "/api/v1/todos", "/api/v1/reminders"} {
		if resp := do(router, http.MethodGet, path, "", ""); resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, resp.Code)
		}
	}
}

func TestStaffRoutesRejectClients(t *testing.T) {
	cfg := testConfig()
	client := dbtest.Open(t)
	router := newTestRouter(t, cfg, client)
	owner := dbtest.SeedUser(t, client, enums.RoleClient, true)
	vet := dbtest.SeedUser(t, client, enums.RolePractitioner, true)

	clientToken := buildToken(t, cfg, owner.ID)
	vetToken := buildToken(t, cfg, vet.ID)

	if resp := do(router, http.MethodGet, "/api/v1/reminders", clientToken, ""); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for client got %d", resp.Code)
	}
	if resp := do(router, http.MethodGet, "/api/v1/reminders", vetToken, ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for practitioner got %d", resp.Code)
	}
	if resp := do(router, http.MethodGet, "/api/v1/users/clients", clientToken, ""); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for client listing got %d", resp.Code)
	}
	if resp := do(router, http.MethodGet, "/api/v1/animals", clientToken, ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for scoped animals got %d", resp.Code)
	}
}

func TestAdminRoutesRejectPractitioners(t *testing.T) {
	cfg := testConfig()
	client := dbtest.Open(t)
	router := newTestRouter(t, cfg, client)
	vet := dbtest.SeedUser(t, client, enums.RolePractitioner, true)
	admin := dbtest.SeedUser(t, client, enums.RoleAdmin, true)

	if resp := do(router, http.MethodGet, "/api/v1/audit-logs", buildToken(t, cfg, vet.ID), ""); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for practitioner got %d", resp.Code)
	}
	if resp := do(router, http.MethodGet, "/api/v1/audit-logs", buildToken(t, cfg, admin.ID), ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestPendingClientIsBlocked(t *testing.T) {
	cfg := testConfig()
	client := dbtest.Open(t)
	router := newTestRouter(t, cfg, client)
	pending := dbtest.SeedUser(t, client, enums.RoleClient, false)

	resp := do(router, http.MethodGet, "/api/v1/auth/me", buildToken(t, cfg, pending.ID), "")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "PENDING_VALIDATION") {
		t.Fatalf("expected pending validation code, got %s", resp.Body.String())
	}
}

func TestRegisterThenLoginIsPending(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, dbtest.Open(t))

	register := do(router, http.MethodPost, "/api/v1/auth/register", "",
		`{"first_name":"Ada","last_name":"Owner","email":"Ada@Example.com","password":"longenough"}`)
	if register.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", register.Code, register.Body.String())
	}

	login := do(router, http.MethodPost, "/api/v1/auth/login", "", `{"email":"ada@example.com","password":"longenough"}`)
	if login.Code != http.StatusForbidden {
		t.Fatalf("expected pending client login to be 403, got %d: %s", login.Code, login.Body.String())
	}
}
