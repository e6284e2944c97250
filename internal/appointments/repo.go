package appointments

import (
	"context"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/internal/repo"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	"gorm.io/gorm"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, a *models.Appointment) error {
	return r.DB(ctx).Create(a).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.DB(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns appointments by start time; a nil clientID means every client.
func (r *Repository) List(ctx context.Context, clientID *uuid.UUID, f ListFilter) ([]models.Appointment, error) {
	q := r.DB(ctx).Model(&models.Appointment{})
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.AnimalID != nil {
		q = q.Where("animal_id = ?", *f.AnimalID)
	}
	if f.From != nil {
		q = q.Where("start_time >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("start_time < ?", f.To.UTC())
	}
	var rows []models.Appointment
	err := q.Order("start_time ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

// UpdateIfStatus applies fields only while the row is still in one of from.
// It reports whether a row was changed.
func (r *Repository) UpdateIfStatus(ctx context.Context, id uuid.UUID, from []enums.AppointmentStatus, fields map[string]any) (bool, error) {
	res := r.DB(ctx).Model(&models.Appointment{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Delete removes the appointment, its reminders and the links from treatment notes.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	db := r.DB(ctx)
	res := db.Where("appointment_id = ?", id).Delete(&models.Reminder{})
	if res.Error != nil {
		return 0, res.Error
	}
	if err := db.Model(&models.TreatmentNote{}).Where("appointment_id = ?", id).Update("appointment_id", nil).Error; err != nil {
		return 0, err
	}
	if err := db.Delete(&models.Appointment{}, "id = ?", id).Error; err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}
