package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/osteovet/clinic-backend/api/middleware"
	"github.com/osteovet/clinic-backend/api/responses"
	"github.com/osteovet/clinic-backend/api/validators"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/osteovet/clinic-backend/pkg/logger"
	"github.com/osteovet/clinic-backend/pkg/pagination"
)

// requireScope writes UNAUTHORIZED and returns false when Auth did not run.
func requireScope(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (pkgauth.Scope, bool) {
	scope, ok := middleware.ScopeFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return pkgauth.Scope{}, false
	}
	return scope, true
}

func pathID(w http.ResponseWriter, r *http.Request, logg *logger.Logger, param string) (uuid.UUID, bool) {
	id, err := validators.ParseUUID(chi.URLParam(r, param), param)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")}, nil
}

func decode(w http.ResponseWriter, r *http.Request, logg *logger.Logger, dest any) bool {
	if err := validators.DecodeJSONBody(r, dest); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return false
	}
	return true
}

// respond writes err when set, otherwise data with status.
func respond(w http.ResponseWriter, r *http.Request, logg *logger.Logger, status int, data any, err error) {
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, status, data)
}
