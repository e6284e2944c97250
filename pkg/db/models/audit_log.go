package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/enums"
	"github.com/osteovet/clinic-backend/pkg/types"
	"gorm.io/gorm"
)

// AuditLog is append-only. Meta holds a JSON object.
type AuditLog struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	UserID    *uuid.UUID        `gorm:"type:uuid;index"`
	Action    enums.AuditAction `gorm:"type:varchar(64);not null;index"`
	Entity    *string           `gorm:"type:varchar(64)"`
	EntityID  *uuid.UUID        `gorm:"type:uuid"`
	Meta      types.JSONMap     `gorm:"type:text;not null;default:'{}'"`
	CreatedAt time.Time         `gorm:"autoCreateTime;index"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
