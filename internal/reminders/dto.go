package reminders

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	"github.com/osteovet/clinic-backend/pkg/types"
)

// DefaultDisplayType is stored when the caller gives no type.
const DefaultDisplayType = "general"

// ReminderDTO is the API shape of a reminder. Type is the label exactly as the
// user entered it; Category is the closed classification.
type ReminderDTO struct {
	ID            uuid.UUID              `json:"id"`
	Message       string                 `json:"message"`
	Type          string                 `json:"type"`
	Category      enums.ReminderCategory `json:"category"`
	RemindAt      time.Time              `json:"remind_at"`
	Sent          bool                   `json:"sent"`
	SentAt        *time.Time             `json:"sent_at,omitempty"`
	Completed     bool                   `json:"completed"`
	CompletedAt   *time.Time             `json:"completed_at,omitempty"`
	AppointmentID *uuid.UUID             `json:"appointment_id,omitempty"`
	CreatedBy     uuid.UUID              `json:"created_by"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

type CreateReminderRequest struct {
	Message       string     `json:"message" validate:"required,max=2000"`
	Type          string     `json:"type" validate:"max=64"`
	Category      *string    `json:"category,omitempty"`
	RemindAt      *time.Time `json:"remind_at" validate:"required"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
}

type UpdateReminderRequest struct {
	Message       *string            `json:"message" validate:"omitempty,min=1,max=2000"`
	Type          *string            `json:"type" validate:"omitempty,max=64"`
	Category      *string            `json:"category"`
	RemindAt      *time.Time         `json:"remind_at"`
	AppointmentID types.NullableUUID `json:"appointment_id"`
	Sent          *bool              `json:"sent"`
}

type SnoozeRequest struct {
	Minutes int `json:"minutes" validate:"required,min=1,max=10080"`
}

type BookingRemindersRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" validate:"required"`
}

// Status selects which reminders List returns.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAll       Status = "all"
)

// ParseStatus defaults to StatusActive.
func ParseStatus(v string) (Status, bool) {
	switch s := Status(strings.ToLower(strings.TrimSpace(v))); s {
	case "":
		return StatusActive, true
	case StatusActive, StatusCompleted, StatusAll:
		return s, true
	default:
		return "", false
	}
}

type ListFilter struct {
	Status        Status
	AppointmentID *uuid.UUID
}

// ListResult carries the selected items plus counts over both states.
type ListResult struct {
	Items          []ReminderDTO `json:"items"`
	ActiveCount    int64         `json:"active_count"`
	CompletedCount int64         `json:"completed_count"`
}

func FromModel(r models.Reminder) ReminderDTO {
	return ReminderDTO{
		ID:            r.ID,
		Message:       r.Message,
		Type:          r.DisplayType,
		Category:      r.Category,
		RemindAt:      r.RemindAt,
		Sent:          r.Sent,
		SentAt:        r.SentAt,
		Completed:     r.Completed,
		CompletedAt:   r.CompletedAt,
		AppointmentID: r.AppointmentID,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func FromModels(rows []models.Reminder) []ReminderDTO {
	out := make([]ReminderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}
