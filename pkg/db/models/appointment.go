package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/enums"
	"gorm.io/gorm"
)

// Appointment is a booked slot for one animal.
type Appointment struct {
	ID                 uuid.UUID               `gorm:"type:uuid;primaryKey"`
	ClientID           uuid.UUID               `gorm:"type:uuid;not null;index"`
	AnimalID           uuid.UUID               `gorm:"type:uuid;not null;index"`
	ServiceID          *uuid.UUID              `gorm:"type:uuid"`
	StartTime          time.Time               `gorm:"not null;index"`
	EndTime            time.Time               `gorm:"not null"`
	Status             enums.AppointmentStatus `gorm:"type:varchar(16);not null;index"`
	CancellationKind   *enums.CancellationKind `gorm:"type:varchar(16)"`
	CancellationReason *string                 `gorm:"type:text"`
	Notes              *string                 `gorm:"type:text"`
	DecidedBy          *uuid.UUID              `gorm:"type:uuid"`
	DecidedAt          *time.Time
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

func (a *Appointment) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
