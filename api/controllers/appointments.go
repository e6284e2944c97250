package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/osteovet/clinic-backend/api/responses"
	"github.com/osteovet/clinic-backend/api/validators"
	"github.com/osteovet/clinic-backend/internal/appointments"
	"github.com/osteovet/clinic-backend/internal/booking"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/osteovet/clinic-backend/pkg/logger"
)

type appointmentService interface {
	List(ctx context.Context, scope pkgauth.Scope, f appointments.ListFilter) ([]appointments.AppointmentDTO, error)
	Get(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) (*appointments.AppointmentDTO, error)
	Create(ctx context.Context, scope pkgauth.Scope, req appointments.CreateAppointmentRequest) (*appointments.AppointmentDTO, error)
	Update(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, req appointments.UpdateAppointmentRequest) (*appointments.AppointmentDTO, error)
	Confirm(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) (*appointments.AppointmentDTO, error)
	Refuse(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, req appointments.ReasonRequest) (*appointments.AppointmentDTO, error)
	Cancel(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, req appointments.ReasonRequest) (*appointments.AppointmentDTO, error)
	Complete(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) (*appointments.AppointmentDTO, error)
	Delete(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) error
}

type bookingService interface {
	Book(ctx context.Context, scope pkgauth.Scope, req booking.BookingRequest) (*booking.BookingDTO, error)
}

func AppointmentsList(svc appointmentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		filter, err := appointmentFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), scope, filter)
		respond(w, r, logg, http.StatusOK, list, err)
	}
}

func appointmentFilter(r *http.Request) (appointments.ListFilter, error) {
	var filter appointments.ListFilter
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseAppointmentStatus(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
				WithDetails(map[string]string{"status": err.Error()})
		}
		filter.Status = &status
	}
	var err error
	if filter.From, err = validators.ParseQueryTime(r, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = validators.ParseQueryTime(r, "to"); err != nil {
		return filter, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from")
	}
	if filter.AnimalID, err = validators.ParseQueryUUID(r, "animal_id"); err != nil {
		return filter, err
	}
	return filter, nil
}

func AppointmentGet(svc appointmentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "appointmentID")
		if !ok {
			return
		}
		appt, err := svc.Get(r.Context(), scope, id)
		respond(w, r, logg, http.StatusOK, appt, err)
	}
}

func AppointmentCreate(svc appointmentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		var body appointments.CreateAppointmentRequest
		if !decode(w, r, logg, &body) {
			return
		}
		appt, err := svc.Create(r.Context(), scope, body)
		respond(w, r, logg, http.StatusCreated, appt, err)
	}
}

func AppointmentUpdate(svc appointmentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "appointmentID")
		if !ok {
			return
		}
		var body appointments.UpdateAppointmentRequest
		if !decode(w, r, logg, &body) {
			return
		}
		appt, err := svc.Update(r.Context(), scope, id, body)
		respond(w, r, logg, http.StatusOK, appt, err)
	}
}

func AppointmentConfirm(svc appointmentService, logg *logger.Logger) http.HandlerFunc {
	return appointmentAction(logg, svc.Confirm)
}

func AppointmentComplete(svc appointmentService, logg *logger.Logger) http.HandlerFunc {
	return appointmentAction(logg, svc.Complete)
}

func AppointmentRefuse(svc appointmentService, logg *logger.Logger) http.HandlerFunc {
	return appointmentReasonAction(logg, svc.Refuse)
}

func AppointmentCancel(svc appointmentService, logg *logger.Logger) http.HandlerFunc {
	return appointmentReasonAction(logg, svc.Cancel)
}

type appointmentActionFunc func(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) (*appointments.AppointmentDTO, error)

type appointmentReasonFunc func(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, req appointments.ReasonRequest) (*appointments.AppointmentDTO, error)

func appointmentAction(logg *logger.Logger, action appointmentActionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "appointmentID")
		if !ok {
			return
		}
		appt, err := action(r.Context(), scope, id)
		respond(w, r, logg, http.StatusOK, appt, err)
	}
}

// appointmentReasonAction accepts an empty body as "no reason".
func appointmentReasonAction(logg *logger.Logger, action appointmentReasonFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "appointmentID")
		if !ok {
			return
		}
		var body appointments.ReasonRequest
		if r.ContentLength != 0 && !decode(w, r, logg, &body) {
			return
		}
		appt, err := action(r.Context(), scope, id, body)
		respond(w, r, logg, http.StatusOK, appt, err)
	}
}

func AppointmentDelete(svc appointmentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "appointmentID")
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

func BookingCreate(svc bookingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		var body booking.BookingRequest
		if !decode(w, r, logg, &body) {
			return
		}
		result, err := svc.Book(r.Context(), scope, body)
		respond(w, r, logg, http.StatusCreated, result, err)
	}
}
