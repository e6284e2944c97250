package animals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/internal/auditlog"
	"github.com/osteovet/clinic-backend/internal/users"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/db"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"gorm.io/gorm"
)

const notFoundMessage = "animal not found"

type dbClient interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service applies ownership scoping to animal CRUD.
type Service struct {
	db  dbClient
	now func() time.Time
}

func NewService(client dbClient) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("database client required")
	}
	return &Service{db: client, now: func() time.Time { return time.Now().UTC() }}, nil
}

// FindVisible loads an animal through conn and hides it from callers who do not own it.
func FindVisible(ctx context.Context, conn *gorm.DB, scope pkgauth.Scope, id uuid.UUID) (*models.Animal, error) {
	animal, err := NewRepository(conn).FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load animal")
	}
	if !scope.Owns(animal.OwnerID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return animal, nil
}

// ResolveOwner decides who owns a new animal. Clients always own what they
// create; staff must name an existing CLIENT.
func ResolveOwner(ctx context.Context, conn *gorm.DB, scope pkgauth.Scope, requested *uuid.UUID) (uuid.UUID, error) {
	if !scope.IsStaff() {
		if requested != nil && *requested != scope.UserID {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "clients can only register their own animals")
		}
		return scope.UserID, nil
	}
	if requested == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "owner_id is required")
	}
	owner, err := users.NewRepository(conn).FindByID(ctx, *requested)
	if err != nil {
		if db.IsNotFound(err) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "owner not found")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load owner")
	}
	if owner.Role != enums.RoleClient {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "owner must be a client")
	}
	return owner.ID, nil
}

func (s *Service) List(ctx context.Context, scope pkgauth.Scope, f ListFilter) ([]AnimalDTO, error) {
	ownerID := f.OwnerID
	if !scope.IsStaff() {
		ownerID = &scope.UserID
	}
	rows, err := NewRepository(s.db.DB()).List(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list animals")
	}
	out := make([]AnimalDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) (*AnimalDTO, error) {
	animal, err := FindVisible(ctx, s.db.DB(), scope, id)
	if err != nil {
		return nil, err
	}
	return FromModel(animal), nil
}

func (s *Service) Create(ctx context.Context, scope pkgauth.Scope, req CreateAnimalRequest) (*AnimalDTO, error) {
	var out *AnimalDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		ownerID, err := ResolveOwner(ctx, tx, scope, req.OwnerID)
		if err != nil {
			return err
		}
		animal, err := req.ToModel(ownerID)
		if err != nil {
			return err
		}
		if err := NewRepository(tx).Create(ctx, animal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create animal")
		}
		out = FromModel(animal)
		return nil
	})
	return out, err
}

func (s *Service) Update(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, req UpdateAnimalRequest) (*AnimalDTO, error) {
	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		fields["name"] = name
	}
	if req.Species != nil {
		fields["species"] = strings.TrimSpace(*req.Species)
	}
	if req.Breed != nil {
		breed := strings.TrimSpace(*req.Breed)
		if breed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "breed must not be empty")
		}
		fields["breed"] = breed
	}
	if req.Age != nil {
		if *req.Age < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "age must be zero or more")
		}
		fields["age"] = *req.Age
	}
	if req.WeightKg.Set {
		if err := checkWeight(req.WeightKg.Value); err != nil {
			return nil, err
		}
		fields["weight_kg"] = req.WeightKg.Value
	}
	if req.Gender != nil {
		gender, err := enums.ParseAnimalGender(*req.Gender)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "gender must be male or female")
		}
		fields["gender"] = gender
	}
	if req.Notes.Set {
		fields["notes"] = req.Notes.Value
	}

	var out *AnimalDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := FindVisible(ctx, tx, scope, id); err != nil {
			return err
		}
		r := NewRepository(tx)
		if len(fields) > 0 {
			fields["updated_at"] = s.now()
			if err := r.UpdateFields(ctx, id, fields); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update animal")
			}
		}
		updated, err := r.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload animal")
		}
		out = FromModel(updated)
		return nil
	})
	return out, err
}

// Delete removes an animal with no appointments and no treatment notes. The
// dependency count and the delete share one transaction.
func (s *Service) Delete(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		animal, err := FindVisible(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		r := NewRepository(tx)
		appointments, notes, err := r.Dependents(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count animal dependents")
		}
		if appointments > 0 || notes > 0 {
			return pkgerrors.New(pkgerrors.CodeDependencyBlocked, "animal has appointments or treatment notes").
				WithDetails(map[string]int64{"appointments": appointments, "treatment_notes": notes})
		}
		if err := r.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete animal")
		}
		if _, err := auditlog.NewRepository(tx).Append(ctx, auditlog.Entry{
			UserID:   &scope.UserID,
			Action:   enums.AuditActionAnimalDeleted,
			Entity:   "animal",
			EntityID: &id,
			Meta:     map[string]any{"name": animal.Name, "owner_id": animal.OwnerID.String()},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append audit log")
		}
		return nil
	})
}
