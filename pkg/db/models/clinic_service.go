package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClinicService is a bookable treatment from the clinic's catalog.
type ClinicService struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name            string          `gorm:"type:varchar(120);not null;uniqueIndex"`
	Description     string          `gorm:"type:text;not null;default:''"`
	DurationMinutes int             `gorm:"not null"`
	Price           decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Active          bool            `gorm:"not null"`
	CreatedAt       time.Time       `gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime"`
}

func (ClinicService) TableName() string {
	return "clinic_services"
}

func (s *ClinicService) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
