package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Animal is a patient owned by a client.
type Animal struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	Name      string             `gorm:"type:varchar(120);not null"`
	Species   string             `gorm:"type:varchar(60);not null;default:''"`
	Breed     string             `gorm:"type:varchar(120);not null"`
	Age       int                `gorm:"not null"`
	WeightKg  *decimal.Decimal   `gorm:"column:weight_kg;type:numeric(6,2)"`
	Gender    enums.AnimalGender `gorm:"type:varchar(16);not null"`
	Notes     *string            `gorm:"type:text"`
	CreatedAt time.Time          `gorm:"autoCreateTime"`
	UpdatedAt time.Time          `gorm:"autoUpdateTime"`
}

func (a *Animal) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
