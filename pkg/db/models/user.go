package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/enums"
	"gorm.io/gorm"
)

// User is the single identity table for staff and clients.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email        string     `gorm:"type:varchar(320);not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	FirstName    string     `gorm:"column:first_name;not null"`
	LastName     string     `gorm:"column:last_name;not null"`
	Phone        *string    `gorm:"column:phone"`
	Role         enums.Role `gorm:"type:varchar(32);not null;index"`
	Validated    bool       `gorm:"column:validated;not null;default:false"`
	ValidatedAt  *time.Time `gorm:"column:validated_at"`
	ValidatedBy  *uuid.UUID `gorm:"type:uuid;column:validated_by"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// CanAuthenticate reports whether the validation gate lets this account hold a session.
func (u *User) CanAuthenticate() bool {
	return !u.Role.RequiresValidation() || u.Validated
}
