package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/osteovet/clinic-backend/api/responses"
	"github.com/osteovet/clinic-backend/internal/blog"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/osteovet/clinic-backend/pkg/logger"
	"github.com/osteovet/clinic-backend/pkg/pagination"
)

type blogService interface {
	ListPublished(ctx context.Context, params pagination.Params) (pagination.Page[blog.PostDTO], error)
	ListAll(ctx context.Context, params pagination.Params) (pagination.Page[blog.PostDTO], error)
	GetPublished(ctx context.Context, slug string) (*blog.PostDTO, error)
	Create(ctx context.Context, scope pkgauth.Scope, req blog.CreatePostRequest) (*blog.PostDTO, error)
	Update(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, req blog.UpdatePostRequest) (*blog.PostDTO, error)
	SetPublished(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, published bool) (*blog.PostDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

func BlogListPublished(svc blogService, logg *logger.Logger) http.HandlerFunc {
	return blogList(logg, svc.ListPublished)
}

func BlogListAll(svc blogService, logg *logger.Logger) http.HandlerFunc {
	return blogList(logg, svc.ListAll)
}

func blogList(logg *logger.Logger, list func(context.Context, pagination.Params) (pagination.Page[blog.PostDTO], error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := list(r.Context(), params)
		respond(w, r, logg, http.StatusOK, page, err)
	}
}

func BlogGetBySlug(svc blogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}
		post, err := svc.GetPublished(r.Context(), slug)
		respond(w, r, logg, http.StatusOK, post, err)
	}
}

func BlogCreate(svc blogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		var body blog.CreatePostRequest
		if !decode(w, r, logg, &body) {
			return
		}
		post, err := svc.Create(r.Context(), scope, body)
		respond(w, r, logg, http.StatusCreated, post, err)
	}
}

func BlogUpdate(svc blogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "postID")
		if !ok {
			return
		}
		var body blog.UpdatePostRequest
		if !decode(w, r, logg, &body) {
			return
		}
		post, err := svc.Update(r.Context(), scope, id, body)
		respond(w, r, logg, http.StatusOK, post, err)
	}
}

func BlogPublish(svc blogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "postID")
		if !ok {
			return
		}
		var body blog.PublishRequest
		if !decode(w, r, logg, &body) {
			return
		}
		post, err := svc.SetPublished(r.Context(), scope, id, *body.Published)
		respond(w, r, logg, http.StatusOK, post, err)
	}
}

func BlogDelete(svc blogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, logg, "postID")
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
