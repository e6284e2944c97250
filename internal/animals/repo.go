package animals

import (
	"context"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/internal/repo"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists animals.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, a *models.Animal) error {
	return r.DB(ctx).Create(a).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Animal, error) {
	var a models.Animal
	if err := r.DB(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns animals ordered by name; a nil owner means every animal.
func (r *Repository) List(ctx context.Context, ownerID *uuid.UUID) ([]models.Animal, error) {
	q := r.DB(ctx).Model(&models.Animal{})
	if ownerID != nil {
		q = q.Where("owner_id = ?", *ownerID)
	}
	var rows []models.Animal
	err := q.Order("name ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.DB(ctx).Model(&models.Animal{}).Where("id = ?", id).Updates(fields).Error
}

// Dependents counts appointments and treatment notes referencing the animal.
func (r *Repository) Dependents(ctx context.Context, id uuid.UUID) (appointments, notes int64, err error) {
	if appointments, err = r.Count(ctx, &models.Appointment{}, "animal_id = ?", id); err != nil {
		return 0, 0, err
	}
	if notes, err = r.Count(ctx, &models.TreatmentNote{}, "animal_id = ?", id); err != nil {
		return 0, 0, err
	}
	return appointments, notes, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Delete(&models.Animal{}, "id = ?", id).Error
}
