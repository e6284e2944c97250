package blog

import (
	"context"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/internal/repo"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/pagination"
	"gorm.io/gorm"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, p *models.BlogPost) error {
	return r.DB(ctx).Create(p).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	var p models.BlogPost
	if err := r.DB(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) FindPublishedBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var p models.BlogPost
	if err := r.DB(ctx).First(&p, "slug = ? AND published = ?", slug, true).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SlugTaken reports whether another post already uses slug.
func (r *Repository) SlugTaken(ctx context.Context, slug string, except *uuid.UUID) (bool, error) {
	q := r.DB(ctx).Model(&models.BlogPost{}).Where("slug = ?", slug)
	if except != nil {
		q = q.Where("id <> ?", *except)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// List pages newest first; publishedOnly hides drafts.
func (r *Repository) List(ctx context.Context, publishedOnly bool, params pagination.Params) ([]models.BlogPost, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	q := r.DB(ctx).Model(&models.BlogPost{})
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	var rows []models.BlogPost
	err = repo.KeysetDesc(q, "blog_posts", cursor).Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error
	return rows, err
}

func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.DB(ctx).Model(&models.BlogPost{}).Where("id = ?", id).Updates(fields).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Delete(&models.BlogPost{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
