package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlogPost carries English content plus French variants.
type BlogPost struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Slug        string    `gorm:"type:varchar(200);not null;uniqueIndex"`
	Title       string    `gorm:"type:text;not null"`
	TitleFR     string    `gorm:"column:title_fr;type:text;not null;default:''"`
	Content     string    `gorm:"type:text;not null"`
	ContentFR   string    `gorm:"column:content_fr;type:text;not null;default:''"`
	Excerpt     *string   `gorm:"type:text"`
	Published   bool      `gorm:"not null;default:false;index"`
	PublishedAt *time.Time
	AuthorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (p *BlogPost) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
