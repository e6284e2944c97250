package catalog

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

// ListActive returns active services ordered by name.
func (r *Repository) ListActive(ctx context.Context) ([]models.ClinicService, error) {
	var rows []models.ClinicService
	err := r.DB(ctx).Where("active = ?", true).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ClinicService, error) {
	var svc models.ClinicService
	if err := r.DB(ctx).First(&svc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

// NameTaken reports whether another service already uses name, ignoring case.
func (r *Repository) NameTaken(ctx context.Context, name string, except *uuid.UUID) (bool, error) {
	q := r.DB(ctx).Model(&models.ClinicService{}).Where("LOWER(name) = LOWER(?)", name)
	if except != nil {
		q = q.Where("id <> ?", *except)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repository) Create(ctx context.Context, svc *models.ClinicService) error {
	return r.DB(ctx).Create(svc).Error
}

func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.DB(ctx).Model(&models.ClinicService{}).Where("id = ?", id).Updates(fields).Error
}
