package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/osteovet/clinic-backend/api/responses"
	"github.com/osteovet/clinic-backend/api/validators"
	"github.com/osteovet/clinic-backend/internal/users"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/logger"
	"github.com/osteovet/clinic-backend/pkg/pagination"
)

type userService interface {
	Get(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) (*users.UserDTO, error)
	Update(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, req users.UpdateUserRequest) (*users.UserDTO, error)
	Delete(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) error
	BulkValidate(ctx context.Context, actorID uuid.UUID, req users.BulkValidateRequest) (*users.BulkValidateResult, error)
	ListClients(ctx context.Context, f users.ClientFilter, params pagination.Params) (pagination.Page[users.UserDTO], error)
	Search(ctx context.Context, term string) ([]users.UserDTO, error)
}

func UserGet(svc userService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "userID")
		if !ok {
			return
		}
		user, err := svc.Get(r.Context(), scope, id)
		respond(w, r, logg, http.StatusOK, user, err)
	}
}

func UserUpdate(svc userService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "userID")
		if !ok {
			return
		}
		var body users.UpdateUserRequest
		if !decode(w, r, logg, &body) {
			return
		}
		user, err := svc.Update(r.Context(), scope, id, body)
		respond(w, r, logg, http.StatusOK, user, err)
	}
}

func UserDelete(svc userService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "userID")
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), scope, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// UsersListClients pages through CLIENT accounts, optionally by validation state.
func UsersListClients(svc userService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		validated, err := validators.ParseQueryBool(r, "validated")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListClients(r.Context(), users.ClientFilter{Validated: validated}, params)
		respond(w, r, logg, http.StatusOK, page, err)
	}
}

func UsersSearch(svc userService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		term := validators.SanitizeString(r.URL.Query().Get("q"), 100)
		found, err := svc.Search(r.Context(), term)
		respond(w, r, logg, http.StatusOK, found, err)
	}
}

func UsersBulkValidate(svc userService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		var body users.BulkValidateRequest
		if !decode(w, r, logg, &body) {
			return
		}
		result, err := svc.BulkValidate(r.Context(), scope.UserID, body)
		respond(w, r, logg, http.StatusOK, result, err)
	}
}
