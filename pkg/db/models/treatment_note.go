package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TreatmentNote is a practitioner's clinical note on an animal.
type TreatmentNote struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AnimalID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	AuthorID      uuid.UUID  `gorm:"type:uuid;not null"`
	AppointmentID *uuid.UUID `gorm:"type:uuid;index"`
	Content       string     `gorm:"type:text;not null"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
}

func (n *TreatmentNote) BeforeCreate(*gorm.DB) error {
	ensureID(&n.ID)
	return nil
}
