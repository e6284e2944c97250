package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/internal/animals"
	"github.com/osteovet/clinic-backend/internal/appointments"
	"github.com/osteovet/clinic-backend/internal/reminders"
)

// BookingRequest books an appointment for an existing animal (AnimalID) or
// registers a new one (Animal) in the same call. Staff name the client with
// ClientID when registering a new animal.
type BookingRequest struct {
	AnimalID      *uuid.UUID                   `json:"animal_id,omitempty"`
	Animal        *animals.CreateAnimalRequest `json:"animal,omitempty"`
	ClientID      *uuid.UUID                   `json:"client_id,omitempty"`
	ServiceID     *uuid.UUID                   `json:"service_id,omitempty"`
	StartTime     time.Time                    `json:"start_time" validate:"required"`
	EndTime       *time.Time                   `json:"end_time,omitempty"`
	Notes         *string                      `json:"notes,omitempty" validate:"omitempty,max=4000"`
	WithReminders bool                         `json:"with_reminders"`
}

// BookingDTO is everything a booking created.
type BookingDTO struct {
	Appointment *appointments.AppointmentDTO `json:"appointment"`
	Animal      *animals.AnimalDTO           `json:"animal"`
	AnimalIsNew bool                         `json:"animal_created"`
	Reminders   []reminders.ReminderDTO      `json:"reminders"`
}
