package todos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/db"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"gorm.io/gorm"
)

const notFoundMessage = "todo not found"

type dbClient interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

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

func (s *Service) List(ctx context.Context, scope pkgauth.Scope, f ListFilter) ([]TodoDTO, error) {
	ownerID := f.OwnerID
	if !scope.IsStaff() {
		ownerID = &scope.UserID
	}
	rows, err := NewRepository(s.db.DB()).List(ctx, ownerID, f.Completed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list todos")
	}
	out := make([]TodoDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, scope pkgauth.Scope, req CreateTodoRequest) (*TodoDTO, error) {
	task := strings.TrimSpace(req.Task)
	if task == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "task is required")
	}
	priority, err := parsePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	row := models.Todo{
		OwnerID:  scope.UserID,
		Task:     task,
		Priority: priority,
		DueDate:  utcPtr(req.DueDate),
	}
	if err := NewRepository(s.db.DB()).Create(ctx, &row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create todo")
	}
	dto := FromModel(row)
	return &dto, nil
}

func (s *Service) Update(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, req UpdateTodoRequest) (*TodoDTO, error) {
	fields := map[string]any{}
	if req.Task != nil {
		task := strings.TrimSpace(*req.Task)
		if task == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "task must not be empty")
		}
		fields["task"] = task
	}
	if req.Priority != nil {
		priority, err := parsePriority(*req.Priority)
		if err != nil {
			return nil, err
		}
		fields["priority"] = priority
	}
	if req.DueDate.Set {
		fields["due_date"] = utcPtr(req.DueDate.Value)
	}
	return s.mutate(ctx, scope, id, func(current *models.Todo) map[string]any {
		if req.Completed != nil && *req.Completed != current.Completed {
			s.setCompletion(fields, *req.Completed)
		}
		return fields
	})
}

// Toggle flips the completion flag.
func (s *Service) Toggle(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) (*TodoDTO, error) {
	return s.mutate(ctx, scope, id, func(current *models.Todo) map[string]any {
		fields := map[string]any{}
		s.setCompletion(fields, !current.Completed)
		return fields
	})
}

func (s *Service) Delete(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		r := NewRepository(tx)
		if _, err := findVisible(ctx, r, scope, id); err != nil {
			return err
		}
		if err := r.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete todo")
		}
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, change func(*models.Todo) map[string]any) (*TodoDTO, error) {
	var out TodoDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		r := NewRepository(tx)
		current, err := findVisible(ctx, r, scope, id)
		if err != nil {
			return err
		}
		if fields := change(current); len(fields) > 0 {
			fields["updated_at"] = s.now()
			if err := r.UpdateFields(ctx, id, fields); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update todo")
			}
			if current, err = r.FindByID(ctx, id); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload todo")
			}
		}
		out = FromModel(*current)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) setCompletion(fields map[string]any, completed bool) {
	fields["completed"] = completed
	if completed {
		fields["completed_at"] = s.now()
	} else {
		fields["completed_at"] = nil
	}
}

func findVisible(ctx context.Context, r *Repository, scope pkgauth.Scope, id uuid.UUID) (*models.Todo, error) {
	row, err := r.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load todo")
	}
	if !scope.Owns(row.OwnerID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return row, nil
}

func parsePriority(raw string) (enums.TodoPriority, error) {
	if strings.TrimSpace(raw) == "" {
		return enums.TodoPriorityMedium, nil
	}
	p, err := enums.ParseTodoPriority(raw)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "priority must be HIGH, MEDIUM or LOW")
	}
	return p, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
