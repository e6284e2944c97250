package treatmentnotes

import (
	"context"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/internal/repo"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"gorm.io/gorm"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, n *models.TreatmentNote) error {
	return r.DB(ctx).Create(n).Error
}

// ListByAnimal returns notes newest first.
func (r *Repository) ListByAnimal(ctx context.Context, animalID uuid.UUID) ([]models.TreatmentNote, error) {
	var rows []models.TreatmentNote
	err := r.DB(ctx).
		Where("animal_id = ?", animalID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// AppointmentAnimal returns the animal an appointment was booked for.
func (r *Repository) AppointmentAnimal(ctx context.Context, appointmentID uuid.UUID) (uuid.UUID, error) {
	var appt models.Appointment
	if err := r.DB(ctx).Select("id", "animal_id").First(&appt, "id = ?", appointmentID).Error; err != nil {
		return uuid.Nil, err
	}
	return appt.AnimalID, nil
}
