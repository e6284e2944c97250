package auditlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/osteovet/clinic-backend/pkg/pagination"
	"github.com/osteovet/clinic-backend/pkg/types"
)

// EntryDTO is the API shape of an audit entry.
type EntryDTO struct {
	ID        uuid.UUID         `json:"id"`
	UserID    *uuid.UUID        `json:"user_id,omitempty"`
	Action    enums.AuditAction `json:"action"`
	Entity    *string           `json:"entity,omitempty"`
	EntityID  *uuid.UUID        `json:"entity_id,omitempty"`
	Meta      types.JSONMap     `json:"meta"`
	CreatedAt time.Time         `json:"created_at"`
}

func FromModel(m models.AuditLog) EntryDTO {
	return EntryDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		Action:    m.Action,
		Entity:    m.Entity,
		EntityID:  m.EntityID,
		Meta:      m.Meta,
		CreatedAt: m.CreatedAt,
	}
}

type lister interface {
	List(ctx context.Context, f Filter, params pagination.Params) ([]models.AuditLog, error)
}

// Service exposes the read side of the audit log.
type Service struct {
	repo lister
}

func NewService(r lister) (*Service, error) {
	if r == nil {
		return nil, fmt.Errorf("audit log repository is required")
	}
	return &Service{repo: r}, nil
}

// List pages through entries newest first.
func (s *Service) List(ctx context.Context, f Filter, params pagination.Params) (pagination.Page[EntryDTO], error) {
	rows, err := s.repo.List(ctx, f, params)
	if err != nil {
		if _, cerr := pagination.ParseCursor(params.Cursor); cerr != nil {
			return pagination.Page[EntryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, cerr, "invalid cursor")
		}
		return pagination.Page[EntryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list audit logs")
	}
	dtos := make([]EntryDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row))
	}
	return pagination.Paginate(dtos, params.Limit, func(e EntryDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: e.CreatedAt, ID: e.ID}
	}), nil
}
