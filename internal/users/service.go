package users

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/internal/auditlog"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/db"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/osteovet/clinic-backend/pkg/pagination"
	"gorm.io/gorm"
)

const (
	maxSearchResults = 50
	maxBulkValidate  = 100

	skipNotFound         = "not found"
	skipNotClient        = "not a client"
	skipAlreadyValidated = "already validated"
)

type dbClient interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies of the users service.
type ServiceParams struct {
	DB  dbClient
	Now func() time.Time
}

// Service covers profile management and client validation.
type Service struct {
	db  dbClient
	now func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{db: params.DB, now: now}, nil
}

func (s *Service) read(fn func(r *Repository) error) error {
	return fn(NewRepository(s.db.DB()))
}

// Get returns a user visible to the caller. Clients only see themselves;
// anyone else is reported missing.
func (s *Service) Get(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) (*UserDTO, error) {
	if !scope.Owns(id) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	var out *UserDTO
	err := s.read(func(r *Repository) error {
		user, err := r.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "user not found", "load user")
		}
		out = FromModel(user)
		return nil
	})
	return out, err
}

// Update changes profile fields. Only the user or an ADMIN may update, and only
// an ADMIN may change a role.
func (s *Service) Update(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, req UpdateUserRequest) (*UserDTO, error) {
	if scope.UserID != id && !scope.IsAdmin() {
		if scope.IsStaff() {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only administrators can edit other users")
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if req.Role != nil && !scope.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only administrators can change roles")
	}

	fields := map[string]any{}
	if req.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Phone.Set {
		fields["phone"] = req.Phone.Value
	}
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		fields["role"] = *req.Role
	}
	var email string
	if req.Email != nil {
		email = normalizeEmail(*req.Email)
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
		}
		fields["email"] = email
	}

	var out *UserDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		r := NewRepository(tx)
		user, err := r.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "user not found", "load user")
		}
		if email != "" && email != user.Email {
			if _, err := r.FindByEmail(ctx, email); err == nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			} else if !db.IsNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
			}
		}
		if len(fields) > 0 {
			fields["updated_at"] = s.now()
			if _, err := r.UpdateFields(ctx, id, fields); err != nil {
				if db.IsUniqueViolation(err, "") {
					return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
			}
			if _, err := auditlog.NewRepository(tx).Append(ctx, auditlog.Entry{
				UserID:   &scope.UserID,
				Action:   enums.AuditActionUserUpdated,
				Entity:   "user",
				EntityID: &id,
				Meta:     map[string]any{"fields": fieldNames(fields)},
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append audit log")
			}
		}
		updated, err := r.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload user")
		}
		out = FromModel(updated)
		return nil
	})
	return out, err
}

// Delete removes a user that nothing depends on. Their todos go with them.
func (s *Service) Delete(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) error {
	if scope.UserID == id {
		return pkgerrors.New(pkgerrors.CodeValidation, "you cannot delete your own account")
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		r := NewRepository(tx)
		user, err := r.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "user not found", "load user")
		}
		deps, err := r.Dependencies(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count user dependencies")
		}
		if len(deps) > 0 {
			return pkgerrors.New(pkgerrors.CodeDependencyBlocked, "user still has related records").WithDetails(deps)
		}
		if err := r.DeleteTodos(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user todos")
		}
		if _, err := r.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
		}
		if _, err := auditlog.NewRepository(tx).Append(ctx, auditlog.Entry{
			UserID:   &scope.UserID,
			Action:   enums.AuditActionUserDeleted,
			Entity:   "user",
			EntityID: &id,
			Meta:     map[string]any{"email": user.Email, "role": user.Role},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append audit log")
		}
		return nil
	})
}

// ValidateClient lets a CLIENT log in. Missing targets are NOT_FOUND, non-clients
// are rejected, and validating twice is a CONFLICT. Validation is never undone.
func (s *Service) ValidateClient(ctx context.Context, actorID, clientID uuid.UUID) (*UserDTO, error) {
	var out *UserDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		user, reason, err := s.validateOne(ctx, tx, actorID, clientID)
		if err != nil {
			return err
		}
		switch reason {
		case skipNotFound:
			return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		case skipNotClient:
			return pkgerrors.New(pkgerrors.CodeValidation, "only client accounts require validation")
		case skipAlreadyValidated:
			return pkgerrors.New(pkgerrors.CodeConflict, "client already validated")
		}
		out = user
		return nil
	})
	return out, err
}

// BulkValidate validates every pending client among ids in a single transaction.
func (s *Service) BulkValidate(ctx context.Context, actorID uuid.UUID, req BulkValidateRequest) (*BulkValidateResult, error) {
	if len(req.IDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ids must not be empty")
	}
	if len(req.IDs) > maxBulkValidate {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d ids per request", maxBulkValidate))
	}

	result := &BulkValidateResult{Validated: []uuid.UUID{}, Skipped: []SkippedID{}}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		seen := make(map[uuid.UUID]struct{}, len(req.IDs))
		for _, id := range req.IDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			_, reason, err := s.validateOne(ctx, tx, actorID, id)
			if err != nil {
				return err
			}
			if reason != "" {
				result.Skipped = append(result.Skipped, SkippedID{ID: id, Reason: reason})
				continue
			}
			result.Validated = append(result.Validated, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// validateOne returns a skip reason for expected refusals and an error only for
// failures that must abort the transaction.
func (s *Service) validateOne(ctx context.Context, tx *gorm.DB, actorID, id uuid.UUID) (*UserDTO, string, error) {
	r := NewRepository(tx)
	user, err := r.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, skipNotFound, nil
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load client")
	}
	if user.Role != enums.RoleClient {
		return nil, skipNotClient, nil
	}
	if user.Validated {
		return nil, skipAlreadyValidated, nil
	}

	now := s.now()
	ok, err := r.MarkValidated(ctx, id, actorID, now)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate client")
	}
	if !ok {
		return nil, skipAlreadyValidated, nil
	}
	if _, err := auditlog.NewRepository(tx).Append(ctx, auditlog.Entry{
		UserID:   &actorID,
		Action:   enums.AuditActionClientValidated,
		Entity:   "user",
		EntityID: &id,
		Meta:     map[string]any{"email": user.Email},
	}); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append audit log")
	}

	user.Validated = true
	user.ValidatedAt = &now
	user.ValidatedBy = &actorID
	user.UpdatedAt = now
	return FromModel(user), "", nil
}

// PendingClients lists clients awaiting validation, oldest first.
func (s *Service) PendingClients(ctx context.Context) ([]UserDTO, error) {
	var out []UserDTO
	err := s.read(func(r *Repository) error {
		rows, err := r.PendingClients(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending clients")
		}
		out = FromModels(rows)
		return nil
	})
	return out, err
}

// ListClients pages through client accounts.
func (s *Service) ListClients(ctx context.Context, f ClientFilter, params pagination.Params) (pagination.Page[UserDTO], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return pagination.Page[UserDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	var page pagination.Page[UserDTO]
	err := s.read(func(r *Repository) error {
		rows, err := r.ListClients(ctx, f, params)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list clients")
		}
		page = pagination.Paginate(FromModels(rows), params.Limit, func(u UserDTO) pagination.Cursor {
			return pagination.Cursor{CreatedAt: u.CreatedAt, ID: u.ID}
		})
		return nil
	})
	return page, err
}

// Search finds users by name, email or phone.
func (s *Service) Search(ctx context.Context, term string) ([]UserDTO, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "q is required")
	}
	var out []UserDTO
	err := s.read(func(r *Repository) error {
		rows, err := r.Search(ctx, term, maxSearchResults)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search users")
		}
		out = FromModels(rows)
		return nil
	})
	return out, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func notFoundOr(err error, notFoundMsg, op string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}

func fieldNames(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		if k != "updated_at" {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}
