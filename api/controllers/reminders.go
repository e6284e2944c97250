package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/osteovet/clinic-backend/api/responses"
	"github.com/osteovet/clinic-backend/api/validators"
	"github.com/osteovet/clinic-backend/internal/reminders"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/osteovet/clinic-backend/pkg/logger"
)

type reminderService interface {
	List(ctx context.Context, f reminders.ListFilter) (*reminders.ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*reminders.ReminderDTO, error)
	Create(ctx context.Context, scope pkgauth.Scope, req reminders.CreateReminderRequest) (*reminders.ReminderDTO, error)
	Update(ctx context.Context, id uuid.UUID, req reminders.UpdateReminderRequest) (*reminders.ReminderDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID) (*reminders.ReminderDTO, error)
	Snooze(ctx context.Context, id uuid.UUID, minutes int) (*reminders.ReminderDTO, error)
	CreateForBooking(ctx context.Context, scope pkgauth.Scope, appointmentID uuid.UUID) ([]reminders.ReminderDTO, error)
}

func RemindersList(svc reminderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, ok := reminders.ParseStatus(r.URL.Query().Get("status"))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
				WithDetails(map[string]string{"status": "must be one of active, completed, all"}))
			return
		}
		appointmentID, err := validators.ParseQueryUUID(r, "appointment_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), reminders.ListFilter{Status: status, AppointmentID: appointmentID})
		respond(w, r, logg, http.StatusOK, result, err)
	}
}

func ReminderGet(svc reminderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, logg, "reminderID")
		if !ok {
			return
		}
		reminder, err := svc.Get(r.Context(), id)
		respond(w, r, logg, http.StatusOK, reminder, err)
	}
}

func ReminderCreate(svc reminderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		var body reminders.CreateReminderRequest
		if !decode(w, r, logg, &body) {
			return
		}
		reminder, err := svc.Create(r.Context(), scope, body)
		respond(w, r, logg, http.StatusCreated, reminder, err)
	}
}

func ReminderUpdate(svc reminderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, logg, "reminderID")
		if !ok {
			return
		}
		var body reminders.UpdateReminderRequest
		if !decode(w, r, logg, &body) {
			return
		}
		reminder, err := svc.Update(r.Context(), id, body)
		respond(w, r, logg, http.StatusOK, reminder, err)
	}
}

func ReminderDelete(svc reminderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, logg, "reminderID")
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

func ReminderComplete(svc reminderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, logg, "reminderID")
		if !ok {
			return
		}
		reminder, err := svc.Complete(r.Context(), id)
		respond(w, r, logg, http.StatusOK, reminder, err)
	}
}

func ReminderSnooze(svc reminderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, logg, "reminderID")
		if !ok {
			return
		}
		var body reminders.SnoozeRequest
		if !decode(w, r, logg, &body) {
			return
		}
		reminder, err := svc.Snooze(r.Context(), id, body.Minutes)
		respond(w, r, logg, http.StatusOK, reminder, err)
	}
}

func RemindersForBooking(svc reminderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := requireScope(w, r, logg)
		if !ok {
			return
		}
		var body reminders.BookingRemindersRequest
		if !decode(w, r, logg, &body) {
			return
		}
		created, err := svc.CreateForBooking(r.Context(), scope, body.AppointmentID)
		respond(w, r, logg, http.StatusCreated, created, err)
	}
}
