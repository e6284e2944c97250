package treatmentnotes

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/internal/animals"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/db"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"gorm.io/gorm"
)

type dbClient interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service struct {
	db dbClient
}

func NewService(client dbClient) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("database client required")
	}
	return &Service{db: client}, nil
}

// List returns the notes on an animal the caller can see.
func (s *Service) List(ctx context.Context, scope pkgauth.Scope, animalID uuid.UUID) ([]NoteDTO, error) {
	conn := s.db.DB()
	if _, err := animals.FindVisible(ctx, conn, scope, animalID); err != nil {
		return nil, err
	}
	rows, err := NewRepository(conn).ListByAnimal(ctx, animalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list treatment notes")
	}
	out := make([]NoteDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

// Create adds a staff-authored note. A linked appointment must be for the same animal.
func (s *Service) Create(ctx context.Context, scope pkgauth.Scope, animalID uuid.UUID, req CreateNoteRequest) (*NoteDTO, error) {
	if !scope.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff can write treatment notes")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}

	var out NoteDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := animals.FindVisible(ctx, tx, scope, animalID); err != nil {
			return err
		}
		r := NewRepository(tx)
		if req.AppointmentID != nil {
			owner, err := r.AppointmentAnimal(ctx, *req.AppointmentID)
			if err != nil {
				if db.IsNotFound(err) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load appointment")
			}
			if owner != animalID {
				return pkgerrors.New(pkgerrors.CodeValidation, "appointment belongs to another animal")
			}
		}
		note := models.TreatmentNote{
			AnimalID:      animalID,
			AuthorID:      scope.UserID,
			AppointmentID: req.AppointmentID,
			Content:       content,
		}
		if err := r.Create(ctx, &note); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create treatment note")
		}
		out = FromModel(note)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
