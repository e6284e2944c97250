package treatmentnotes

import (
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/db/models"
)

// NoteDTO is the API shape of a treatment note.
type NoteDTO struct {
	ID            uuid.UUID  `json:"id"`
	AnimalID      uuid.UUID  `json:"animal_id"`
	AuthorID      uuid.UUID  `json:"author_id"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	Content       string     `json:"content"`
	CreatedAt     time.Time  `json:"created_at"`
}

type CreateNoteRequest struct {
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	Content       string     `json:"content" validate:"required,max=20000"`
}

func FromModel(n models.TreatmentNote) NoteDTO {
	return NoteDTO{
		ID:            n.ID,
		AnimalID:      n.AnimalID,
		AuthorID:      n.AuthorID,
		AppointmentID: n.AppointmentID,
		Content:       n.Content,
		CreatedAt:     n.CreatedAt,
	}
}
