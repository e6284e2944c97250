package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/osteovet/clinic-backend/api/responses"
	"github.com/osteovet/clinic-backend/api/validators"
	"github.com/osteovet/clinic-backend/internal/todos"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/logger"
)

type todoService interface {
	List(ctx context.Context, scope pkgauth.Scope, f todos.ListFilter) ([]todos.TodoDTO, error)
	Create(ctx context.Context, scope pkgauth.Scope, req todos.CreateTodoRequest) (*todos.TodoDTO, error)
	Update(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, req todos.UpdateTodoRequest) (*todos.TodoDTO, error)
	Toggle(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) (*todos.TodoDTO, error)
	Delete(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) error
}

func TodosList(svc todoService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		completed, err := validators.ParseQueryBool(r, "completed")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ownerID, err := validators.ParseQueryUUID(r, "owner_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), scope, todos.ListFilter{Completed: completed, OwnerID: ownerID})
		respond(w, r, logg, http.StatusOK, list, err)
	}
}

func TodoCreate(svc todoService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		var body todos.CreateTodoRequest
		if !decode(w, r, logg, &body) {
			return
		}
		todo, err := svc.Create(r.Context(), scope, body)
		respond(w, r, logg, http.StatusCreated, todo, err)
	}
}

func TodoUpdate(svc todoService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "todoID")
		if !ok {
			return
		}
		var body todos.UpdateTodoRequest
		if !decode(w, r, logg, &body) {
			return
		}
		todo, err := svc.Update(r.Context(), scope, id, body)
		respond(w, r, logg, http.StatusOK, todo, err)
	}
}

func TodoToggle(svc todoService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "todoID")
		if !ok {
			return
		}
		todo, err := svc.Toggle(r.Context(), scope, id)
		respond(w, r, logg, http.StatusOK, todo, err)
	}
}

func TodoDelete(svc todoService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "todoID")
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
