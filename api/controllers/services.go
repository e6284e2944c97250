package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/osteovet/clinic-backend/internal/catalog"
	"github.com/osteovet/clinic-backend/pkg/logger"
)

type catalogService interface {
	ListActive(ctx context.Context) ([]catalog.ServiceDTO, error)
	Create(ctx context.Context, req catalog.CreateServiceRequest) (*catalog.ServiceDTO, error)
	Update(ctx context.Context, id uuid.UUID, req catalog.UpdateServiceRequest) (*catalog.ServiceDTO, error)
}

func ServicesList(svc catalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListActive(r.Context())
		respond(w, r, logg, http.StatusOK, list, err)
	}
}

func ServiceCreate(svc catalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body catalog.CreateServiceRequest
		if !decode(w, r, logg, &body) {
			return
		}
		created, err := svc.Create(r.Context(), body)
		respond(w, r, logg, http.StatusCreated, created, err)
	}
}

func ServiceUpdate(svc catalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, logg, "serviceID")
		if !ok {
			return
		}
		var body catalog.UpdateServiceRequest
		if !decode(w, r, logg, &body) {
			return
		}
		updated, err := svc.Update(r.Context(), id, body)
		respond(w, r, logg, http.StatusOK, updated, err)
	}
}
