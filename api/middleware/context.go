package middleware

import (
	"context"

	"github.com/google/uuid"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/enums"
)

type contextKey string

const (
	ctxScope     contextKey = "scope"
	ctxSessionID contextKey = "session_id"
)

// WithScope stores the authenticated caller on ctx.
func WithScope(ctx context.Context, scope pkgauth.Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxScope, scope)
}

// ScopeFromContext returns the caller set by Auth. ok is false on public routes.
func ScopeFromContext(ctx context.Context) (pkgauth.Scope, bool) {
	if ctx == nil {
		return pkgauth.Scope{}, false
	}
	scope, ok := ctx.Value(ctxScope).(pkgauth.Scope)
	return scope, ok && scope.UserID != uuid.Nil
}

func UserIDFromContext(ctx context.Context) string {
	if scope, ok := ScopeFromContext(ctx); ok {
		return scope.UserID.String()
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.Role {
	scope, _ := ScopeFromContext(ctx)
	return scope.Role
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}
