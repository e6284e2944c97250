package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/enums"
	"gorm.io/gorm"
)

type Todo struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	Task        string             `gorm:"type:text;not null"`
	Priority    enums.TodoPriority `gorm:"type:varchar(8);not null"`
	DueDate     *time.Time
	Completed   bool `gorm:"not null;default:false"`
	CompletedAt *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (t *Todo) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
