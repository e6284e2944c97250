package blog

import (
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/types"
)

// PostDTO is the API shape of a blog post in both languages.
type PostDTO struct {
	ID          uuid.UUID  `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	TitleFR     string     `json:"title_fr"`
	Content     string     `json:"content"`
	ContentFR   string     `json:"content_fr"`
	Excerpt     *string    `json:"excerpt,omitempty"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	AuthorID    uuid.UUID  `json:"author_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CreatePostRequest struct {
	Slug      string  `json:"slug" validate:"omitempty,max=200"`
	Title     string  `json:"title" validate:"required,max=300"`
	TitleFR   string  `json:"title_fr" validate:"max=300"`
	Content   string  `json:"content" validate:"required"`
	ContentFR string  `json:"content_fr"`
	Excerpt   *string `json:"excerpt,omitempty" validate:"omitempty,max=1000"`
	Published bool    `json:"published"`
}

type UpdatePostRequest struct {
	Slug      *string              `json:"slug" validate:"omitempty,max=200"`
	Title     *string              `json:"title" validate:"omitempty,min=1,max=300"`
	TitleFR   *string              `json:"title_fr" validate:"omitempty,max=300"`
	Content   *string              `json:"content" validate:"omitempty,min=1"`
	ContentFR *string              `json:"content_fr"`
	Excerpt   types.NullableString `json:"excerpt"`
}

type PublishRequest struct {
	Published *bool `json:"published" validate:"required"`
}

func FromModel(p models.BlogPost) PostDTO {
	return PostDTO{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		TitleFR:     p.TitleFR,
		Content:     p.Content,
		ContentFR:   p.ContentFR,
		Excerpt:     p.Excerpt,
		Published:   p.Published,
		PublishedAt: p.PublishedAt,
		AuthorID:    p.AuthorID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
