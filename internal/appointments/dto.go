package appointments

import (
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	"github.com/osteovet/clinic-backend/pkg/types"
)

// AppointmentDTO is the API shape of an appointment.
type AppointmentDTO struct {
	ID                 uuid.UUID               `json:"id"`
	ClientID           uuid.UUID               `json:"client_id"`
	AnimalID           uuid.UUID               `json:"animal_id"`
	ServiceID          *uuid.UUID              `json:"service_id,omitempty"`
	StartTime          time.Time               `json:"start_time"`
	EndTime            time.Time               `json:"end_time"`
	Status             enums.AppointmentStatus `json:"status"`
	CancellationKind   *enums.CancellationKind `json:"cancellation_kind,omitempty"`
	CancellationReason *string                 `json:"cancellation_reason,omitempty"`
	Notes              *string                 `json:"notes,omitempty"`
	DecidedBy          *uuid.UUID              `json:"decided_by,omitempty"`
	DecidedAt          *time.Time              `json:"decided_at,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

type CreateAppointmentRequest struct {
	AnimalID  uuid.UUID  `json:"animal_id" validate:"required"`
	ServiceID *uuid.UUID `json:"service_id,omitempty"`
	StartTime time.Time  `json:"start_time" validate:"required"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Notes     *string    `json:"notes,omitempty" validate:"omitempty,max=4000"`
}

// UpdateAppointmentRequest changes the slot or the notes of a live appointment.
type UpdateAppointmentRequest struct {
	StartTime *time.Time           `json:"start_time"`
	EndTime   *time.Time           `json:"end_time"`
	Notes     types.NullableString `json:"notes"`
}

// ReasonRequest is the optional body of refuse and cancel.
type ReasonRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=2000"`
}

type ListFilter struct {
	Status   *enums.AppointmentStatus
	From     *time.Time
	To       *time.Time
	AnimalID *uuid.UUID
}

func FromModel(a *models.Appointment) *AppointmentDTO {
	if a == nil {
		return nil
	}
	return &AppointmentDTO{
		ID:                 a.ID,
		ClientID:           a.ClientID,
		AnimalID:           a.AnimalID,
		ServiceID:          a.ServiceID,
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		Status:             a.Status,
		CancellationKind:   a.CancellationKind,
		CancellationReason: a.CancellationReason,
		Notes:              a.Notes,
		DecidedBy:          a.DecidedBy,
		DecidedAt:          a.DecidedAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}
