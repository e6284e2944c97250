package todos

import (
	"context"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/internal/repo"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"gorm.io/gorm"
)

// priorityRank sorts HIGH before MEDIUM before LOW.
const priorityRank = "CASE priority WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 ELSE 2 END"

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, t *models.Todo) error {
	return r.DB(ctx).Create(t).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Todo, error) {
	var t models.Todo
	if err := r.DB(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// List puts open todos first, then sorts by due date (undated last) and priority.
func (r *Repository) List(ctx context.Context, ownerID *uuid.UUID, completed *bool) ([]models.Todo, error) {
	q := r.DB(ctx).Model(&models.Todo{})
	if ownerID != nil {
		q = q.Where("owner_id = ?", *ownerID)
	}
	if completed != nil {
		q = q.Where("completed = ?", *completed)
	}
	var rows []models.Todo
	err := q.
		Order("completed ASC").
		Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END").
		Order("due_date ASC").
		Order(priorityRank).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.DB(ctx).Model(&models.Todo{}).Where("id = ?", id).Updates(fields).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Delete(&models.Todo{}, "id = ?", id).Error
}
