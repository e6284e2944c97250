package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/api/responses"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/auth/session"
	"github.com/osteovet/clinic-backend/pkg/config"
	"github.com/osteovet/clinic-backend/pkg/db"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/osteovet/clinic-backend/pkg/logger"
)

// UserFinder resolves the token subject to a stored user.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Auth validates the bearer access token, checks its session is still live and
// loads the user so role changes and de-validation apply immediately.
func Auth(cfg config.JWTConfig, sessions session.Checker, users UserFinder, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid or expired token"))
				return
			}
			userID, err := claims.UserID()
			if err != nil || claims.SessionID() == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			if sessions != nil {
				ok, err := sessions.HasSession(ctx, claims.SessionID())
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired"))
					return
				}
			}

			user, err := users.FindByID(ctx, userID)
			if err != nil {
				if db.IsNotFound(err) {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired token"))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user"))
				return
			}
			if user.Role == enums.RoleClient && !user.Validated {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodePendingValidation, "account pending validation"))
				return
			}

			ctx = WithScope(ctx, pkgauth.Scope{UserID: user.ID, Role: user.Role})
			ctx = WithSessionID(ctx, claims.SessionID())
			if logg != nil {
				ctx = logg.WithUserID(ctx, user.ID.String())
				ctx = logg.WithActorRole(ctx, string(user.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}
