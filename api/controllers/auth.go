package controllers

import (
	"net/http"

	"github.com/osteovet/clinic-backend/api/middleware"
	"github.com/osteovet/clinic-backend/api/responses"
	"github.com/osteovet/clinic-backend/internal/auth"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/osteovet/clinic-backend/pkg/logger"
)

const registeredMessage = "account created; the clinic will validate it before you can sign in"

// AuthRegister creates a pending client account. No tokens are issued.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.RegisterRequest
		if !decode(w, r, logg, &body) {
			return
		}
		user, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, user, registeredMessage)
	}
}

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.LoginRequest
		if !decode(w, r, logg, &body) {
			return
		}
		result, err := svc.Login(r.Context(), body)
		respond(w, r, logg, http.StatusOK, result, err)
	}
}

func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.RefreshRequest
		if !decode(w, r, logg, &body) {
			return
		}
		result, err := svc.Refresh(r.Context(), body)
		respond(w, r, logg, http.StatusOK, result, err)
	}
}

func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}
		if err := svc.Logout(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func AuthMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		user, err := svc.Me(r.Context(), scope.UserID)
		respond(w, r, logg, http.StatusOK, user, err)
	}
}

func AuthPendingClients(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clients, err := svc.PendingClients(r.Context())
		respond(w, r, logg, http.StatusOK, clients, err)
	}
}

// AuthValidateClient serves both /auth/validate/{userID} and /users/{userID}/validate.
func AuthValidateClient(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		clientID, ok := pathID(w, r, logg, "userID")
		if !ok {
			return
		}
		user, err := svc.ValidateClient(r.Context(), scope.UserID, clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, user, "client validated")
	}
}
