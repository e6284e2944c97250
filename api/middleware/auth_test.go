package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/config"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", Issuer: "clinic-test", ExpirationMinutes: 15, RefreshTokenTTLDays: 7}

type stubSessions struct {
	ok  bool
	err error
}

func (s stubSessions) HasSession(context.Context, string) (bool, error) { return s.ok, s.err }

type stubUsers map[uuid.UUID]*models.User

func (s stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func mintAccess(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testJWT, time.Now(), pkgauth.TokenPayload{UserID: userID, SessionID: uuid.NewString()})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func runAuth(t *testing.T, sessions stubSessions, users stubUsers, header string) (*httptest.ResponseRecorder, context.Context) {
	t.Helper()
	var seen context.Context
	handler := Auth(testJWT, sessions, users, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context()
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp, seen
}

func TestAuthRejectsMissingOrInvalidToken(t *testing.T) {
	for _, header := range []string{"", "Bearer invalid", "Basic abc"} {
		resp, _ := runAuth(t, stubSessions{ok: true}, stubUsers{}, header)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 got %d", header, resp.Code)
		}
	}
}

func TestAuthRejectsRefreshToken(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: enums.RoleAdmin, Validated: true}
	refresh, err := pkgauth.MintRefreshToken(testJWT, time.Now(), pkgauth.TokenPayload{UserID: user.ID, SessionID: uuid.NewString()})
	if err != nil {
		t.Fatalf("mint refresh: %v", err)
	}
	resp, _ := runAuth(t, stubSessions{ok: true}, stubUsers{user.ID: user}, "Bearer "+refresh)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected refresh token to be refused, got %d", resp.Code)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: enums.RoleAdmin, Validated: true}
	resp, _ := runAuth(t, stubSessions{ok: false}, stubUsers{user.ID: user}, "Bearer "+mintAccess(t, user.ID))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	resp, _ = runAuth(t, stubSessions{err: errors.New("redis down")}, stubUsers{user.ID: user}, "Bearer "+mintAccess(t, user.ID))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when sessions are unavailable, got %d", resp.Code)
	}
}

func TestAuthRejectsUnknownAndPendingUsers(t *testing.T) {
	resp, _ := runAuth(t, stubSessions{ok: true}, stubUsers{}, "Bearer "+mintAccess(t, uuid.New()))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted user, got %d", resp.Code)
	}

	pending := &models.User{ID: uuid.New(), Role: enums.RoleClient, Validated: false}
	resp, _ = runAuth(t, stubSessions{ok: true}, stubUsers{pending.ID: pending}, "Bearer "+mintAccess(t, pending.ID))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for pending client, got %d", resp.Code)
	}
}

func TestAuthSeedsScope(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: enums.RolePractitioner, Validated: false}
	resp, ctx := runAuth(t, stubSessions{ok: true}, stubUsers{user.ID: user}, "bearer "+mintAccess(t, user.ID))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	scope, ok := ScopeFromContext(ctx)
	if !ok || scope.UserID != user.ID || scope.Role != enums.RolePractitioner {
		t.Fatalf("unexpected scope %+v ok=%v", scope, ok)
	}
	if SessionIDFromContext(ctx) == "" {
		t.Fatalf("expected session id in context")
	}
}

func TestRequireRoles(t *testing.T) {
	handler := RequireAdmin(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	cases := []struct {
		role enums.Role
		want int
	}{
		{enums.RoleAdmin, http.StatusNoContent},
		{enums.RolePractitioner, http.StatusForbidden},
		{enums.RoleClient, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithScope(req.Context(), pkgauth.Scope{UserID: uuid.New(), Role: tc.role}))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("%s: expected %d got %d", tc.role, tc.want, resp.Code)
		}
	}

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without scope, got %d", resp.Code)
	}
}
