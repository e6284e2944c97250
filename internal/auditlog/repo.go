package auditlog

import (
	"context"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/internal/repo"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	"github.com/osteovet/clinic-backend/pkg/pagination"
	"github.com/osteovet/clinic-backend/pkg/types"
	"gorm.io/gorm"
)

// Entry is one audit record to append.
type Entry struct {
	UserID   *uuid.UUID
	Action   enums.AuditAction
	Entity   string
	EntityID *uuid.UUID
	Meta     map[string]any
}

// Filter narrows the audit listing.
type Filter struct {
	UserID *uuid.UUID
	Action *enums.AuditAction
}

// Repository writes and reads the audit log. There is no update or delete.
type Repository struct {
	repo.Base
}

// NewRepository binds to a connection; pass the tx handle so entries commit
// with the change they describe.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Append inserts a single entry.
func (r *Repository) Append(ctx context.Context, e Entry) (*models.AuditLog, error) {
	row := &models.AuditLog{
		UserID:   e.UserID,
		Action:   e.Action,
		EntityID: e.EntityID,
		Meta:     types.JSONMap(e.Meta),
	}
	if e.Entity != "" {
		entity := e.Entity
		row.Entity = &entity
	}
	if row.Meta == nil {
		row.Meta = types.JSONMap{}
	}
	if err := r.DB(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// List returns up to limit+1 entries newest first so callers can detect a next page.
func (r *Repository) List(ctx context.Context, f Filter, params pagination.Params) ([]models.AuditLog, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	q := r.DB(ctx).Model(&models.AuditLog{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Action != nil {
		q = q.Where("action = ?", *f.Action)
	}

	var rows []models.AuditLog
	if err := repo.KeysetDesc(q, "audit_logs", cursor).Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
