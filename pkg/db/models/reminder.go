package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/enums"
	"gorm.io/gorm"
)

// Reminder is a persisted reminder. AppointmentID is nil for manual reminders.
type Reminder struct {
	ID            uuid.UUID              `gorm:"type:uuid;primaryKey"`
	Message       string                 `gorm:"type:text;not null"`
	DisplayType   string                 `gorm:"type:varchar(64);not null"`
	Category      enums.ReminderCategory `gorm:"type:varchar(32);not null"`
	RemindAt      time.Time              `gorm:"not null;index"`
	Sent          bool                   `gorm:"not null;default:false"`
	SentAt        *time.Time
	Completed     bool `gorm:"not null;default:false"`
	CompletedAt   *time.Time
	AppointmentID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedBy     uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
}

func (r *Reminder) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
