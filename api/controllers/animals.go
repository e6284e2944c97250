package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/osteovet/clinic-backend/api/responses"
	"github.com/osteovet/clinic-backend/api/validators"
	"github.com/osteovet/clinic-backend/internal/animals"
	"github.com/osteovet/clinic-backend/internal/treatmentnotes"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/logger"
)

type animalService interface {
	List(ctx context.Context, scope pkgauth.Scope, f animals.ListFilter) ([]animals.AnimalDTO, error)
	Get(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) (*animals.AnimalDTO, error)
	Create(ctx context.Context, scope pkgauth.Scope, req animals.CreateAnimalRequest) (*animals.AnimalDTO, error)
	Update(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, req animals.UpdateAnimalRequest) (*animals.AnimalDTO, error)
	Delete(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) error
}

type treatmentNoteService interface {
	List(ctx context.Context, scope pkgauth.Scope, animalID uuid.UUID) ([]treatmentnotes.NoteDTO, error)
	Create(ctx context.Context, scope pkgauth.Scope, animalID uuid.UUID, req treatmentnotes.CreateNoteRequest) (*treatmentnotes.NoteDTO, error)
}

func AnimalsList(svc animalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		ownerID, err := validators.ParseQueryUUID(r, "owner_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), scope, animals.ListFilter{OwnerID: ownerID})
		respond(w, r, logg, http.StatusOK, list, err)
	}
}

func AnimalGet(svc animalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "animalID")
		if !ok {
			return
		}
		animal, err := svc.Get(r.Context(), scope, id)
		respond(w, r, logg, http.StatusOK, animal, err)
	}
}

func AnimalCreate(svc animalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		var body animals.CreateAnimalRequest
		if !decode(w, r, logg, &body) {
			return
		}
		animal, err := svc.Create(r.Context(), scope, body)
		respond(w, r, logg, http.StatusCreated, animal, err)
	}
}

func AnimalUpdate(svc animalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "animalID")
		if !ok {
			return
		}
		var body animals.UpdateAnimalRequest
		if !decode(w, r, logg, &body) {
			return
		}
		animal, err := svc.Update(r.Context(), scope, id, body)
		respond(w, r, logg, http.StatusOK, animal, err)
	}
}

func AnimalDelete(svc animalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "animalID")
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

func TreatmentNotesList(svc treatmentNoteService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		animalID, ok := pathID(w, r, logg, "animalID")
		if !ok {
			return
		}
		notes, err := svc.List(r.Context(), scope, animalID)
		respond(w, r, logg, http.StatusOK, notes, err)
	}
}

func TreatmentNoteCreate(svc treatmentNoteService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		animalID, ok := pathID(w, r, logg, "animalID")
		if !ok {
			return
		}
		var body treatmentnotes.CreateNoteRequest
		if !decode(w, r, logg, &body) {
			return
		}
		note, err := svc.Create(r.Context(), scope, animalID, body)
		respond(w, r, logg, http.StatusCreated, note, err)
	}
}
